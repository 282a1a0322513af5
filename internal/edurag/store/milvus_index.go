package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/kart-io/logger"
	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/internal/pkg/textutil"
	"github.com/kart-io/edurag/pkg/component/milvus"
)

// VectorBackendMilvus 名称。
const VectorBackendMilvus = "milvus"

// Milvus 集合字段。
const (
	fieldSubjectID  = "subject_id"
	fieldDocumentID = "document_id"
	fieldPageNumber = "page_number"
	fieldSeq        = "seq"
	fieldContent    = "content"
)

var milvusOutputFields = []string{fieldSubjectID, fieldDocumentID, fieldPageNumber, fieldSeq, fieldContent}

// MilvusClient 是 milvusIndex 用到的 Milvus 操作，由 *milvus.Client 实现。
type MilvusClient interface {
	HasCollection(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, schema *milvus.CollectionSchema) error
	Insert(ctx context.Context, collectionName string, data *milvus.InsertData) error
	Search(ctx context.Context, collectionName string, vector []float32, topK int, filter string, outputFields []string) ([]milvus.SearchResult, error)
	DeleteByFilter(ctx context.Context, collectionName, expr string) error
}

var _ MilvusClient = (*milvus.Client)(nil)

// milvusIndex 将分块向量镜像到 Milvus。集合在首次写入时按向量维度创建。
type milvusIndex struct {
	client     MilvusClient
	collection string

	mu    sync.Mutex
	ready bool
}

// NewMilvusIndex 创建基于 Milvus 的向量索引。
func NewMilvusIndex(client MilvusClient, collection string) VectorIndex {
	return &milvusIndex{client: client, collection: collection}
}

func (m *milvusIndex) Name() string { return VectorBackendMilvus }

func (m *milvusIndex) ensureCollection(ctx context.Context, dim int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		return nil
	}

	err := m.client.CreateCollection(ctx, &milvus.CollectionSchema{
		Name:        m.collection,
		Description: "EduRAG document chunks",
		Dimension:   dim,
		Metric:      entity.COSINE,
		MetaFields: []milvus.MetaField{
			{Name: fieldSubjectID, DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: fieldDocumentID, DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: fieldPageNumber, DataType: entity.FieldTypeInt64},
			{Name: fieldSeq, DataType: entity.FieldTypeInt64},
			{Name: fieldContent, DataType: entity.FieldTypeVarChar, MaxLen: 65535},
		},
	})
	if err != nil {
		return err
	}
	m.ready = true
	return nil
}

// Upsert inserts the chunk vectors.
func (m *milvusIndex) Upsert(ctx context.Context, subjectID string, chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := m.ensureCollection(ctx, len(chunks[0].Embedding)); err != nil {
		return err
	}

	data := &milvus.InsertData{
		IDs:        make([]string, len(chunks)),
		Embeddings: make([][]float32, len(chunks)),
		Metadata: map[string][]any{
			fieldSubjectID:  make([]any, len(chunks)),
			fieldDocumentID: make([]any, len(chunks)),
			fieldPageNumber: make([]any, len(chunks)),
			fieldSeq:        make([]any, len(chunks)),
			fieldContent:    make([]any, len(chunks)),
		},
	}
	for i, c := range chunks {
		data.IDs[i] = c.ID
		data.Embeddings[i] = c.Embedding
		data.Metadata[fieldSubjectID][i] = subjectID
		data.Metadata[fieldDocumentID][i] = c.DocumentID
		data.Metadata[fieldPageNumber][i] = int64(c.PageNumber)
		data.Metadata[fieldSeq][i] = c.Seq
		data.Metadata[fieldContent][i] = c.Content
	}

	if err := m.client.Insert(ctx, m.collection, data); err != nil {
		return err
	}
	logger.Debugw("chunks upserted to milvus", "subject_id", subjectID, "count", len(chunks))
	return nil
}

// Query searches within one subject.
func (m *milvusIndex) Query(ctx context.Context, subjectID string, vector []float32, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		return []ScoredChunk{}, nil
	}
	exists, err := m.client.HasCollection(ctx, m.collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []ScoredChunk{}, nil
	}

	filter := fmt.Sprintf("%s == %s", fieldSubjectID, milvus.QuoteString(subjectID))
	results, err := m.client.Search(ctx, m.collection, vector, k, filter, milvusOutputFields)
	if err != nil {
		return nil, err
	}

	hits := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		hit := ScoredChunk{
			ChunkID:    r.ID,
			Similarity: textutil.Clamp01(float64(r.Score)),
		}
		if v, ok := r.Metadata[fieldDocumentID].(string); ok {
			hit.DocumentID = v
		}
		if v, ok := r.Metadata[fieldPageNumber].(int64); ok {
			hit.PageNumber = int(v)
		}
		if v, ok := r.Metadata[fieldSeq].(int64); ok {
			hit.Seq = v
		}
		if v, ok := r.Metadata[fieldContent].(string); ok {
			hit.Content = v
		}
		hits = append(hits, hit)
	}
	return sortScored(hits, k), nil
}

// DeleteDocument removes the vectors of one document.
func (m *milvusIndex) DeleteDocument(ctx context.Context, documentID string) error {
	return m.deleteWhere(ctx, fmt.Sprintf("%s == %s", fieldDocumentID, milvus.QuoteString(documentID)))
}

// DeleteSubject removes the vectors of one subject.
func (m *milvusIndex) DeleteSubject(ctx context.Context, subjectID string) error {
	return m.deleteWhere(ctx, fmt.Sprintf("%s == %s", fieldSubjectID, milvus.QuoteString(subjectID)))
}

func (m *milvusIndex) deleteWhere(ctx context.Context, expr string) error {
	exists, err := m.client.HasCollection(ctx, m.collection)
	if err != nil || !exists {
		return err
	}
	return m.client.DeleteByFilter(ctx, m.collection, expr)
}
