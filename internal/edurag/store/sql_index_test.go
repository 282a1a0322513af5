package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

func TestSQLIndex_QueryOrdering(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	idx := NewSQLIndex(f)

	// c0 and c2 tie; c0 was inserted first.
	seedChunks(t, f, "s1", "d1",
		model.Vector{1, 0},
		model.Vector{0, 1},
		model.Vector{2, 0},
		model.Vector{1, 1},
	)
	seedChunks(t, f, "s2", "d2", model.Vector{1, 0})

	hits, err := idx.Query(ctx, "s1", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "d1-c0", hits[0].ChunkID)
	assert.Equal(t, "d1-c2", hits[1].ChunkID)
	assert.Equal(t, "d1-c3", hits[2].ChunkID)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Similarity, hits[i].Similarity)
	}
	for _, h := range hits {
		assert.Equal(t, "d1", h.DocumentID)
	}
}

func TestSQLIndex_ClampsAndLimits(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	idx := NewSQLIndex(f)
	seedChunks(t, f, "s1", "d1", model.Vector{-1, 0})

	hits, err := idx.Query(ctx, "s1", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0.0, hits[0].Similarity)

	hits, err = idx.Query(ctx, "s1", []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Query(ctx, "empty", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSQLIndex_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	idx := NewSQLIndex(f)
	seedChunks(t, f, "s1", "d1", model.Vector{1, 0, 0, 0, 0, 0, 0, 0})

	hits, err := idx.Query(ctx, "s1", []float32{1, 0, 0}, 5)
	assert.ErrorIs(t, err, errors.ErrDimensionMismatch)
	assert.Nil(t, hits)
}

func TestSortScored(t *testing.T) {
	hits := sortScored([]ScoredChunk{
		{ChunkID: "a", Seq: 3, Similarity: 0.5},
		{ChunkID: "b", Seq: 1, Similarity: 0.5},
		{ChunkID: "c", Seq: 2, Similarity: 0.9},
	}, 10)
	assert.Equal(t, []string{"c", "b", "a"}, []string{hits[0].ChunkID, hits[1].ChunkID, hits[2].ChunkID})
}
