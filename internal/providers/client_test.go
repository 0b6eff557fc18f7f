package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	baseBackoff = time.Millisecond
}

func newTestClient(t *testing.T, provider Provider, model string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(Settings{
		Provider: provider,
		APIKey:   "test-key",
		Model:    model,
		BaseURL:  server.URL + "/v1",
	})
	require.NoError(t, err)
	return c
}

func writeChoice(w http.ResponseWriter, content string) {
	json.NewEncoder(w).Encode(chatResponse{
		Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: content}}},
		Usage:   chatUsage{TotalTokens: 50},
	})
}

func TestClient_Complete(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, DeepSeek, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeChoice(w, "merged text")
	})

	resp, err := c.Complete(context.Background(), Request{
		SystemPrompt: "system",
		UserPrompt:   "user",
		MaxTokens:    4000,
		Temperature:  0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, "merged text", resp.Content)
	assert.Equal(t, 50, resp.TokensUsed)

	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, 4000, got.MaxTokens)
	assert.Zero(t, got.MaxCompletionTokens)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.1, *got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Content)
}

func TestClient_ReasoningModelParameters(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, OpenAI, "o3", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeChoice(w, "ok")
	})

	_, err := c.Complete(context.Background(), Request{UserPrompt: "u", MaxTokens: 100, Temperature: 0.1})
	require.NoError(t, err)

	assert.EqualValues(t, 100, got["max_completion_tokens"])
	assert.NotContains(t, got, "max_tokens")
	assert.NotContains(t, got, "temperature")
}

func TestClient_NonReasoningOpenAIModelKeepsTemperature(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, OpenAI, "gpt-4.1", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeChoice(w, "ok")
	})

	_, err := c.Complete(context.Background(), Request{UserPrompt: "u", Temperature: 0.1})
	require.NoError(t, err)
	assert.Contains(t, got, "temperature")
	assert.EqualValues(t, 4096, got["max_completion_tokens"])
}

func TestClient_RateLimit(t *testing.T) {
	attempts := 0
	c := newTestClient(t, DeepSeek, "", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limited"}`))
			return
		}
		writeChoice(w, "ok")
	})

	resp, err := c.Complete(context.Background(), Request{UserPrompt: "u"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, attempts, "expected 2 retries")
}

func TestClient_ServerError(t *testing.T) {
	attempts := 0
	c := newTestClient(t, DeepSeek, "", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"service unavailable"}`))
			return
		}
		writeChoice(w, "ok")
	})

	_, err := c.Complete(context.Background(), Request{UserPrompt: "u"})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestClient_AuthError(t *testing.T) {
	attempts := 0
	c := newTestClient(t, OpenAI, "o3", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized"}`))
	})

	_, err := c.Complete(context.Background(), Request{UserPrompt: "u"})
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Equal(t, 1, attempts, "auth errors are not retried")
}

func TestClient_BadRequest(t *testing.T) {
	c := newTestClient(t, DeepSeek, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad model"}`))
	})

	_, err := c.Complete(context.Background(), Request{UserPrompt: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestClient_EmptyContent(t *testing.T) {
	c := newTestClient(t, DeepSeek, "", func(w http.ResponseWriter, r *http.Request) {
		writeChoice(w, "")
	})

	_, err := c.Complete(context.Background(), Request{UserPrompt: "u"})
	assert.Error(t, err)
}

func TestClient_NoChoices(t *testing.T) {
	c := newTestClient(t, DeepSeek, "", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{Choices: []chatChoice{}})
	})

	_, err := c.Complete(context.Background(), Request{UserPrompt: "u"})
	assert.Error(t, err)
}

func TestClient_MalformedJSON(t *testing.T) {
	c := newTestClient(t, DeepSeek, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [`))
	})

	_, err := c.Complete(context.Background(), Request{UserPrompt: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing response")
}
