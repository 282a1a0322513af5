package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/edurag/pkg/llm"
)

const testAPIKey = "test-key"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbedModel)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, 120*time.Second, cfg.Timeout)
}

func TestNewProvider(t *testing.T) {
	_, err := llm.NewProvider(ProviderName, map[string]any{})
	assert.Error(t, err)

	p, err := llm.NewProvider(ProviderName, map[string]any{
		"api_key":     testAPIKey,
		"chat_model":  "gpt-4o",
		"timeout":     5 * time.Second,
		"temperature": 0.3,
		"max_tokens":  4096,
	})
	require.NoError(t, err)
	assert.Equal(t, ProviderName, p.Name())

	cfg := p.(*Provider).config
	assert.Equal(t, "gpt-4o", cfg.ChatModel)
	assert.Equal(t, 0.3, cfg.Temperature)
	assert.Equal(t, 4096, cfg.MaxTokens)
}

func TestEmbedOrdersByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"a", "b"}, req.Input)

		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}],"model":"m"}`))
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{BaseURL: server.URL, APIKey: testAPIKey, EmbedModel: "m", Timeout: time.Second})
	vecs, err := p.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestEmbedMissingVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1,0]}]}`))
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{BaseURL: server.URL, APIKey: testAPIKey, Timeout: time.Second})
	_, err := p.Embed(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Paris"},"finish_reason":"length"}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{BaseURL: server.URL, APIKey: testAPIKey, ChatModel: "m", Timeout: time.Second})
	resp, err := p.Generate(context.Background(), "capital of France?", "be brief")
	require.NoError(t, err)
	assert.Equal(t, "Paris", resp.Content)
	assert.True(t, resp.Truncated())
	assert.Equal(t, 4, resp.TokenUsage.TotalTokens)
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{BaseURL: server.URL, APIKey: testAPIKey, Timeout: time.Second})
	_, err := p.Generate(context.Background(), "q", "")
	assert.Error(t, err)
}
