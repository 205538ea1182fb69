package adapters

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gimiv/stayfull-research/internal/model"
	"github.com/gimiv/stayfull-research/internal/research"
	"github.com/gimiv/stayfull-research/internal/resilience"
	"github.com/gimiv/stayfull-research/pkg/anthropic"
	"github.com/gimiv/stayfull-research/pkg/gemini"
	"github.com/gimiv/stayfull-research/pkg/openai"
	"github.com/gimiv/stayfull-research/pkg/perplexity"
)

const answer = `{"name": "Seaside Inn", "phone": "+1 305-555-0100", "amenities": ["Pool"], "confidence": 0.9}`

func testQuery() model.Query {
	return model.NewQuery("Seaside Inn", "Miami", "FL")
}

// testGuard retries transient errors once without waiting.
func testGuard(name string) *resilience.Guard {
	return resilience.NewGuard(name, resilience.GuardConfig{
		Retry:   resilience.RetryConfig{MaxAttempts: 2},
		Breaker: resilience.DefaultBreakerConfig(),
	})
}

type fakePerplexity struct {
	calls []perplexity.ChatCompletionRequest
	errs  []error
	text  string
}

func (f *fakePerplexity) ChatCompletion(_ context.Context, req perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	f.calls = append(f.calls, req)
	if n := len(f.calls); n <= len(f.errs) && f.errs[n-1] != nil {
		return nil, f.errs[n-1]
	}
	return &perplexity.ChatCompletionResponse{
		Choices: []perplexity.Choice{{Message: perplexity.Message{Role: "assistant", Content: f.text}}},
	}, nil
}

type fakeOpenAI struct {
	calls []openai.Request
	err   error
	text  string
}

func (f *fakeOpenAI) CompleteJSON(_ context.Context, req openai.Request) (*openai.Response, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &openai.Response{Content: f.text}, nil
}

type fakeAnthropic struct {
	calls []anthropic.MessageRequest
	resp  *anthropic.MessageResponse
}

func (f *fakeAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls = append(f.calls, req)
	return f.resp, nil
}

type fakeGemini struct {
	calls []gemini.Request
	text  string
}

func (f *fakeGemini) GenerateJSON(_ context.Context, req gemini.Request) (*gemini.Response, error) {
	f.calls = append(f.calls, req)
	return &gemini.Response{Text: f.text}, nil
}

func (f *fakeGemini) Close() error { return nil }

func TestPerplexity_Fetch(t *testing.T) {
	client := &fakePerplexity{text: "```json\n" + answer + "\n```"}
	a := NewPerplexity(client, testGuard("perplexity"))

	assert.Equal(t, research.SourcePerplexity, a.ID())

	res, err := a.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	require.NotNil(t, res.Fields.Name)
	assert.Equal(t, "Seaside Inn", *res.Fields.Name)
	assert.Equal(t, []string{"Pool"}, res.Fields.Amenities)
	require.NotNil(t, res.Confidence)
	assert.InDelta(t, 0.9, *res.Confidence, 1e-9)

	require.Len(t, client.calls, 1)
	req := client.calls[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, `"Seaside Inn" in Miami, FL`)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, "json_schema", req.ResponseFormat.Type)
	require.NotNil(t, req.WebSearchOptions)
	assert.Equal(t, "high", req.WebSearchOptions.SearchContextSize)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.1, *req.Temperature, 1e-9)
}

func TestPerplexity_RetriesTransient(t *testing.T) {
	client := &fakePerplexity{
		text: answer,
		errs: []error{&perplexity.StatusError{StatusCode: http.StatusServiceUnavailable}},
	}
	a := NewPerplexity(client, testGuard("perplexity"))

	res, err := a.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Len(t, client.calls, 2)
	assert.Equal(t, "Seaside Inn", *res.Fields.Name)
}

func TestPerplexity_PermanentError(t *testing.T) {
	client := &fakePerplexity{
		errs: []error{&perplexity.StatusError{StatusCode: http.StatusUnauthorized}},
	}
	a := NewPerplexity(client, testGuard("perplexity"))

	_, err := a.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "perplexity: research")
	assert.Len(t, client.calls, 1)
}

func TestOpenAI_Fetch(t *testing.T) {
	client := &fakeOpenAI{text: answer}
	a := NewOpenAI(client, testGuard("openai"))

	assert.Equal(t, research.SourceOpenAI, a.ID())

	res, err := a.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, "+1 305-555-0100", *res.Fields.Phone)

	require.Len(t, client.calls, 1)
	assert.Equal(t, researchSystemPrompt, client.calls[0].System)
	assert.Equal(t, researchMaxTokens, client.calls[0].MaxTokens)
}

func TestOpenAI_UnparseableAnswer(t *testing.T) {
	client := &fakeOpenAI{text: "I could not find that hotel."}
	a := NewOpenAI(client, testGuard("openai"))

	_, err := a.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai: parse answer")
}

func TestOpenAI_Error(t *testing.T) {
	client := &fakeOpenAI{err: errors.New("boom")}
	a := NewOpenAI(client, testGuard("openai"))

	_, err := a.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestAnthropic_Fetch(t *testing.T) {
	client := &fakeAnthropic{resp: &anthropic.MessageResponse{
		Model:      anthropic.DefaultModel,
		Content:    []anthropic.ContentBlock{{Type: "text", Text: answer}},
		StopReason: "end_turn",
		Usage:      anthropic.TokenUsage{InputTokens: 500, OutputTokens: 200},
	}}
	a := NewAnthropic(client, "claude-test", testGuard("anthropic"))

	assert.Equal(t, research.SourceAnthropic, a.ID())

	res, err := a.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, "Seaside Inn", *res.Fields.Name)

	require.Len(t, client.calls, 1)
	req := client.calls[0]
	assert.Equal(t, "claude-test", req.Model)
	require.Len(t, req.System, 1)
	assert.NotNil(t, req.System[0].CacheControl)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
}

func TestAnthropic_Truncated(t *testing.T) {
	client := &fakeAnthropic{resp: &anthropic.MessageResponse{
		Content:    []anthropic.ContentBlock{{Type: "text", Text: `{"name": "Seaside`}},
		StopReason: "max_tokens",
	}}
	a := NewAnthropic(client, "claude-test", testGuard("anthropic"))

	_, err := a.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
	assert.Len(t, client.calls, 1, "truncation is not retried")
}

func TestGemini_Fetch(t *testing.T) {
	client := &fakeGemini{text: answer}
	a := NewGemini(client, testGuard("gemini"))

	assert.Equal(t, research.SourceGemini, a.ID())

	res, err := a.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, "Seaside Inn", *res.Fields.Name)
	require.Len(t, client.calls, 1)
	assert.Contains(t, client.calls[0].User, "Seaside Inn")
}

func TestLLM_OpenCircuit(t *testing.T) {
	guard := resilience.NewGuard("openai", resilience.GuardConfig{
		Retry:   resilience.RetryConfig{MaxAttempts: 1},
		Breaker: resilience.BreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute},
	})
	client := &fakeOpenAI{err: &openai.StatusError{StatusCode: http.StatusBadGateway}}
	a := NewOpenAI(client, guard)

	_, err := a.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.Equal(t, resilience.CircuitOpen, guard.Breaker().State())

	_, err = a.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Len(t, client.calls, 1)
}
