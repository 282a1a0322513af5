package llm

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	mockProvider
	calls int32
	texts int32
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt32(&c.calls, 1)
	atomic.AddInt32(&c.texts, int32(len(texts)))
	return c.mockProvider.Embed(ctx, texts)
}

func newTestRedis(t *testing.T) *goredis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCachedEmbeddingDisabledPassesThrough(t *testing.T) {
	inner := &countingEmbedder{mockProvider: mockProvider{name: "mock"}}
	cached := NewCachedEmbeddingProvider(inner, nil, nil)

	_, err := cached.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	_, err = cached.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
	assert.Equal(t, "mock-cached", cached.Name())
}

func TestCachedEmbeddingHitsRedis(t *testing.T) {
	client := newTestRedis(t)
	inner := &countingEmbedder{mockProvider: mockProvider{name: "mock"}}
	cfg := DefaultEmbeddingCacheConfig()
	cfg.Namespace = "test-" + t.Name()
	cached := NewCachedEmbeddingProvider(inner, client, cfg)
	ctx := context.Background()

	first, err := cached.Embed(ctx, []string{"photosynthesis", "mitosis"})
	require.NoError(t, err)

	second, err := cached.Embed(ctx, []string{"mitosis", "photosynthesis", "osmosis"})
	require.NoError(t, err)

	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[1])
	assert.Equal(t, int32(3), atomic.LoadInt32(&inner.texts))

	single, err := cached.EmbedSingle(ctx, "osmosis")
	require.NoError(t, err)
	assert.Equal(t, second[2], single)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}
