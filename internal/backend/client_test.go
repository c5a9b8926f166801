package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewClient("test-key", logger, tracenoop.NewTracerProvider().Tracer("test"), noop.NewMeterProvider().Meter("test"))
	c.url = server.URL
	return c
}

func TestCreateChatCompletion(t *testing.T) {
	var gotAuth string
	var gotReq ChatRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hello"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3}
		}`)
	})

	req := ChatRequest{
		Model:       "gpt-4o",
		Messages:    []ChatMessage{{Role: "user", Content: "hi"}},
		Temperature: 0.7,
		MaxTokens:   200,
	}

	resp, err := client.CreateChatCompletion(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o", gotReq.Model)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "hello", resp.Choices[0].Message.Content)
}

func TestCreateChatCompletionAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := client.CreateChatCompletion(context.Background(), ChatRequest{Model: "gpt-4o"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error")
}

func TestCreateChatCompletionEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id": "chatcmpl-2", "choices": []}`)
	})

	_, err := client.CreateChatCompletion(context.Background(), ChatRequest{Model: "gpt-4o"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestToolCallsRoundTripWireFormat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"id": "chatcmpl-3",
			"choices": [{"index": 0, "message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{"id": "call_1", "type": "function", "function": {"name": "get_doctor_details", "arguments": "{\"specialty\": \"Nutritionist\"}"}}]
			}, "finish_reason": "tool_calls"}]
		}`)
	})

	resp, err := client.CreateChatCompletion(context.Background(), ChatRequest{Model: "gpt-4o"})
	require.NoError(t, err)

	calls := resp.Choices[0].Message.ToolCalls
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, "get_doctor_details", calls[0].Function.Name)
	assert.JSONEq(t, `{"specialty": "Nutritionist"}`, calls[0].Function.Arguments)
}
