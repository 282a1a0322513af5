package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/component/milvus"
)

// fakeMilvus records calls and answers searches from a fixed result set.
type fakeMilvus struct {
	exists  bool
	created []*milvus.CollectionSchema
	inserts []*milvus.InsertData
	results []milvus.SearchResult
	err     error

	searchFilter string
	searchFields []string
	searchTopK   int
	deleted      []string
}

func (f *fakeMilvus) HasCollection(context.Context, string) (bool, error) {
	return f.exists, f.err
}

func (f *fakeMilvus) CreateCollection(_ context.Context, schema *milvus.CollectionSchema) error {
	f.created = append(f.created, schema)
	f.exists = true
	return nil
}

func (f *fakeMilvus) Insert(_ context.Context, _ string, data *milvus.InsertData) error {
	if f.err != nil {
		return f.err
	}
	f.inserts = append(f.inserts, data)
	return nil
}

func (f *fakeMilvus) Search(_ context.Context, _ string, _ []float32, topK int, filter string, fields []string) ([]milvus.SearchResult, error) {
	f.searchTopK, f.searchFilter, f.searchFields = topK, filter, fields
	return f.results, f.err
}

func (f *fakeMilvus) DeleteByFilter(_ context.Context, _ string, expr string) error {
	f.deleted = append(f.deleted, expr)
	return f.err
}

func TestMilvusIndex_UpsertCreatesCollectionOnce(t *testing.T) {
	ctx := context.Background()
	fake := &fakeMilvus{}
	idx := NewMilvusIndex(fake, "chunks")

	chunks := []*model.Chunk{
		{ID: "c1", DocumentID: "d1", PageNumber: 2, Seq: 7, Content: "light", Embedding: model.Vector{1, 0, 0}},
		{ID: "c2", DocumentID: "d1", PageNumber: 3, Seq: 8, Content: "sugar", Embedding: model.Vector{0, 1, 0}},
	}
	require.NoError(t, idx.Upsert(ctx, "s1", chunks))
	require.NoError(t, idx.Upsert(ctx, "s1", chunks[:1]))
	require.NoError(t, idx.Upsert(ctx, "s1", nil))

	require.Len(t, fake.created, 1)
	assert.Equal(t, 3, fake.created[0].Dimension)
	require.Len(t, fake.inserts, 2)

	data := fake.inserts[0]
	assert.Equal(t, []string{"c1", "c2"}, data.IDs)
	assert.Equal(t, []any{"s1", "s1"}, data.Metadata[fieldSubjectID])
	assert.Equal(t, []any{int64(2), int64(3)}, data.Metadata[fieldPageNumber])
	assert.Equal(t, []any{int64(7), int64(8)}, data.Metadata[fieldSeq])
	assert.Equal(t, []any{"light", "sugar"}, data.Metadata[fieldContent])
}

func TestMilvusIndex_QueryMapsAndSorts(t *testing.T) {
	ctx := context.Background()
	fake := &fakeMilvus{
		exists: true,
		results: []milvus.SearchResult{
			{ID: "late", Score: 0.5, Metadata: map[string]any{fieldDocumentID: "d1", fieldPageNumber: int64(4), fieldSeq: int64(9), fieldContent: "b"}},
			{ID: "best", Score: 1.2, Metadata: map[string]any{fieldDocumentID: "d2", fieldPageNumber: int64(1), fieldSeq: int64(5), fieldContent: "a"}},
			{ID: "early", Score: 0.5, Metadata: map[string]any{fieldDocumentID: "d1", fieldPageNumber: int64(2), fieldSeq: int64(3), fieldContent: "c"}},
			{ID: "opposite", Score: -0.3, Metadata: map[string]any{}},
		},
	}
	idx := NewMilvusIndex(fake, "chunks")

	hits, err := idx.Query(ctx, "s1", []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, `subject_id == "s1"`, fake.searchFilter)
	assert.Equal(t, 3, fake.searchTopK)
	assert.Equal(t, milvusOutputFields, fake.searchFields)

	require.Len(t, hits, 3)
	assert.Equal(t, []string{"best", "early", "late"}, []string{hits[0].ChunkID, hits[1].ChunkID, hits[2].ChunkID})
	assert.Equal(t, 1.0, hits[0].Similarity)
	assert.Equal(t, "d2", hits[0].DocumentID)
	assert.Equal(t, 1, hits[0].PageNumber)
	assert.Equal(t, int64(5), hits[0].Seq)
	assert.Equal(t, "a", hits[0].Content)

	hits, err = idx.Query(ctx, "s1", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 4)
	assert.Equal(t, 0.0, hits[3].Similarity)
	assert.Zero(t, hits[3].PageNumber)
}

func TestMilvusIndex_EmptyCollection(t *testing.T) {
	ctx := context.Background()
	fake := &fakeMilvus{}
	idx := NewMilvusIndex(fake, "chunks")

	hits, err := idx.Query(ctx, "s1", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)

	hits, err = idx.Query(ctx, "s1", []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, idx.DeleteSubject(ctx, "s1"))
	assert.Empty(t, fake.deleted)
}

func TestMilvusIndex_Delete(t *testing.T) {
	ctx := context.Background()
	fake := &fakeMilvus{exists: true}
	idx := NewMilvusIndex(fake, "chunks")

	require.NoError(t, idx.DeleteDocument(ctx, "d1"))
	require.NoError(t, idx.DeleteSubject(ctx, `s"1`))
	assert.Equal(t, []string{`document_id == "d1"`, `subject_id == "s\"1"`}, fake.deleted)

	fake.err = fmt.Errorf("milvus: connection refused")
	assert.Error(t, idx.DeleteDocument(ctx, "d1"))
	_, err := idx.Query(ctx, "s1", []float32{1}, 5)
	assert.Error(t, err)
}
