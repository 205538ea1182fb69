package adapters

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gimiv/stayfull-research/internal/research"
	"github.com/gimiv/stayfull-research/internal/resilience"
	"github.com/gimiv/stayfull-research/pkg/anthropic"
	"github.com/gimiv/stayfull-research/pkg/gemini"
	"github.com/gimiv/stayfull-research/pkg/openai"
	"github.com/gimiv/stayfull-research/pkg/perplexity"
)

const (
	researchTemperature = 0.1
	researchMaxTokens   = 2000
)

// NewPerplexity creates the web-grounded search adapter. Perplexity is the
// only provider asked for a strict JSON schema.
func NewPerplexity(client perplexity.Client, guard *resilience.Guard) *LLM {
	temp := researchTemperature
	maxTokens := researchMaxTokens
	return &LLM{
		id:    research.SourcePerplexity,
		guard: guard,
		complete: func(ctx context.Context, system, user string) (string, error) {
			resp, err := client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
				Messages: []perplexity.Message{
					{Role: "system", Content: system},
					{Role: "user", Content: user},
				},
				Temperature: &temp,
				MaxTokens:   &maxTokens,
				ResponseFormat: &perplexity.ResponseFormat{
					Type:       "json_schema",
					JSONSchema: &perplexity.JSONSchema{Schema: hotelSchema},
				},
				WebSearchOptions: &perplexity.WebSearchOptions{SearchContextSize: "high"},
			})
			if err != nil {
				return "", err
			}
			return resp.Content(), nil
		},
	}
}

// NewOpenAI creates the GPT research adapter.
func NewOpenAI(client openai.Client, guard *resilience.Guard) *LLM {
	return &LLM{
		id:    research.SourceOpenAI,
		guard: guard,
		complete: func(ctx context.Context, system, user string) (string, error) {
			resp, err := client.CompleteJSON(ctx, openai.Request{
				System:      system,
				User:        user,
				Temperature: researchTemperature,
				MaxTokens:   researchMaxTokens,
			})
			if err != nil {
				return "", err
			}
			return resp.Content, nil
		},
	}
}

// NewAnthropic creates the Claude research adapter. The system prompt is
// identical across runs, so it is marked for caching.
func NewAnthropic(client anthropic.Client, model string, guard *resilience.Guard) *LLM {
	temp := researchTemperature
	return &LLM{
		id:    research.SourceAnthropic,
		guard: guard,
		complete: func(ctx context.Context, system, user string) (string, error) {
			resp, err := client.CreateMessage(ctx, anthropic.MessageRequest{
				Model:     model,
				MaxTokens: researchMaxTokens,
				System: []anthropic.SystemBlock{
					{Text: system, CacheControl: &anthropic.CacheControl{}},
				},
				Messages:    []anthropic.Message{{Role: "user", Content: user}},
				Temperature: &temp,
			})
			if err != nil {
				return "", err
			}
			resp.Usage.LogCost(resp.Model, "research")
			if resp.StopReason == "max_tokens" {
				return "", eris.New("anthropic: answer truncated at max_tokens")
			}
			return resp.Text(), nil
		},
	}
}

// NewGemini creates the Gemini research adapter.
func NewGemini(client gemini.Client, guard *resilience.Guard) *LLM {
	return &LLM{
		id:    research.SourceGemini,
		guard: guard,
		complete: func(ctx context.Context, system, user string) (string, error) {
			resp, err := client.GenerateJSON(ctx, gemini.Request{
				System:      system,
				User:        user,
				Temperature: researchTemperature,
			})
			if err != nil {
				return "", err
			}
			return resp.Text, nil
		},
	}
}
