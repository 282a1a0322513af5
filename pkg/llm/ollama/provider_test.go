package ollama

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

func TestNewProviderDefaults(t *testing.T) {
	p, err := llm.NewProvider(ProviderName, map[string]any{"chat_model": "mistral"})
	require.NoError(t, err)

	cfg := p.(*Provider).config
	assert.Equal(t, "mistral", cfg.ChatModel)
	assert.Equal(t, "nomic-embed-text", cfg.EmbedModel)
	assert.Equal(t, 0.3, cfg.Temperature)
	assert.Equal(t, 4096, cfg.MaxTokens)
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)

		out := embedResponse{Model: req.Model}
		for range req.Input {
			out.Embeddings = append(out.Embeddings, []float32{0.5, 0.5})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	p := NewProviderWithConfig(cfg)

	vecs, err := p.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vecs, 3)

	vec, err := p.EmbedSingle(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
}

func TestEmbedCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[1,2]]}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	_, err := NewProviderWithConfig(cfg).Embed(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestChatOptionsAndDoneReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, 0.3, req.Options.Temperature)
		assert.Equal(t, 4096, req.Options.NumPredict)

		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"## Notes"},"done":true,"done_reason":"length","prompt_eval_count":10,"eval_count":5}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.Timeout = time.Second

	resp, err := NewProviderWithConfig(cfg).Generate(context.Background(), "summarise", "you are a teacher")
	require.NoError(t, err)
	assert.Equal(t, "## Notes", resp.Content)
	assert.True(t, resp.Truncated())
	assert.Equal(t, 15, resp.TokenUsage.TotalTokens)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	assert.Error(t, NewProviderWithConfig(cfg).Ping(context.Background()))
}
