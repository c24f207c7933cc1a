package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL + "/v1", Model: "test-model", Timeout: 5 * time.Second})
	c.retryConfig.InitialDelay = time.Millisecond
	c.retryConfig.MaxDelay = time.Millisecond
	return c
}

func completionBody(content string) string {
	return fmt.Sprintf(`{"id":"1","object":"chat.completion","model":"test-model",
"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}],
"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`, content)
}

func TestGenerateAnswer(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody("O Sul vendeu 2 cadeiras."))
	})

	answer, err := c.GenerateAnswer(context.Background(), "contexto\n---\nPergunta: quanto?", "quanto?")
	require.NoError(t, err)
	assert.Equal(t, "O Sul vendeu 2 cadeiras.", answer)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "contexto\n---\nPergunta: quanto?", got.Messages[1].Content)
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":{"message":"busy","type":"server_error"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody("ok"))
	})

	resp, err := c.Complete(context.Background(), CompletionRequest{UserPrompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.EqualValues(t, 3, calls.Load())
}

func TestComplete_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad model","type":"invalid_request_error"}}`)
	})

	_, err := c.Complete(context.Background(), CompletionRequest{UserPrompt: "x"})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestStreamAnswer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"O Sul ", "vendeu ", "2 cadeiras."} {
			fmt.Fprintf(w, "data: {\"id\":\"1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var parts []string
	full, err := c.StreamAnswer(context.Background(), "ctx", "q", func(delta string) error {
		parts = append(parts, delta)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "O Sul vendeu 2 cadeiras.", full)
	assert.Equal(t, "O Sul vendeu 2 cadeiras.", strings.Join(parts, ""))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&openai.APIError{HTTPStatusCode: 500}))
	assert.True(t, isRetryable(&openai.APIError{HTTPStatusCode: 429}))
	assert.False(t, isRetryable(&openai.APIError{HTTPStatusCode: 401}))
	assert.False(t, isRetryable(&openai.RequestError{HTTPStatusCode: 404}))
	assert.True(t, isRetryable(fmt.Errorf("dial tcp: connection refused")))
}
