// Package gemini wraps the Google generative AI SDK for JSON answers.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rotisserie/eris"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultModel is used when NewClient is given no model.
const DefaultModel = "gemini-1.5-pro"

// Client generates JSON answers.
type Client interface {
	GenerateJSON(ctx context.Context, req Request) (*Response, error)
	Close() error
}

// Request is a system instruction plus one user prompt.
type Request struct {
	System      string
	User        string
	Temperature float32
}

// Response is the model's answer.
type Response struct {
	Text             string
	FinishReason     string
	PromptTokens     int32
	CandidatesTokens int32
}

// StatusError carries the HTTP status of a failed API call.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini: status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

type sdkClient struct {
	client *genai.Client
	model  string
}

// NewClient creates a client. Extra options, such as option.WithEndpoint,
// are passed to the SDK.
func NewClient(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	if model == "" {
		model = DefaultModel
	}
	return &sdkClient{client: client, model: model}, nil
}

func (c *sdkClient) GenerateJSON(ctx context.Context, req Request) (*Response, error) {
	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(req.Temperature)
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return nil, wrapError(err)
	}
	return fromResponse(resp)
}

func (c *sdkClient) Close() error {
	return c.client.Close()
}

func fromResponse(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, eris.New("gemini: response has no candidates")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return nil, eris.Errorf("gemini: empty candidate (finish reason %s)", cand.FinishReason)
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return nil, eris.New("gemini: candidate has no text")
	}

	out := &Response{
		Text:         b.String(),
		FinishReason: cand.FinishReason.String(),
	}
	if resp.UsageMetadata != nil {
		out.PromptTokens = resp.UsageMetadata.PromptTokenCount
		out.CandidatesTokens = resp.UsageMetadata.CandidatesTokenCount
	}
	return out, nil
}

func wrapError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &StatusError{StatusCode: gErr.Code, Err: err}
	}
	return eris.Wrap(err, "gemini: generate content")
}
