package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-2024-08-06",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"phone\": \"+1 305 555 0100\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 200, "completion_tokens": 30, "total_tokens": 230}
		}`))
	}))
	defer srv.Close()

	client := NewClient("sk-test", "", srv.URL)
	resp, err := client.CompleteJSON(context.Background(), Request{
		System:    "Return JSON.",
		User:      "Seaside Inn, Miami FL",
		MaxTokens: 1500,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"phone": "+1 305 555 0100"}`, resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 200, resp.PromptTokens)

	assert.Equal(t, DefaultModel, got["model"])
	assert.Equal(t, "json_object", got["response_format"].(map[string]any)["type"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestCompleteJSON_NoSystemMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{}"}}]}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", "gpt-4o-mini", srv.URL).CompleteJSON(context.Background(), Request{User: "u"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.Len(t, got["messages"].([]any), 1)
}

func TestCompleteJSON_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantErr    string
	}{
		{
			name:       "rate_limited",
			status:     http.StatusTooManyRequests,
			body:       `{"error": {"message": "Rate limit reached", "type": "requests"}}`,
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"error": {"message": "Incorrect API key", "type": "invalid_request_error"}}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "no_choices",
			status:  http.StatusOK,
			body:    `{"choices": []}`,
			wantErr: "no choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient("k", "", srv.URL).CompleteJSON(context.Background(), Request{User: "u"})
			require.Error(t, err)
			if tt.wantStatus != 0 {
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantStatus, se.HTTPStatus())
			}
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
