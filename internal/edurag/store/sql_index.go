package store

import (
	"context"

	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/internal/pkg/textutil"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

// VectorBackendSQL 名称。
const VectorBackendSQL = "sql"

// sqlIndex 直接读取关系库中的分块向量并在进程内计算余弦相似度。
// 分块的写入与删除由 Factory 在事务中完成，因此写接口都是空操作。
type sqlIndex struct {
	chunks ChunkStore
}

// NewSQLIndex 创建基于关系库的向量索引。
func NewSQLIndex(factory Factory) VectorIndex {
	return &sqlIndex{chunks: factory.Chunks()}
}

func (s *sqlIndex) Name() string { return VectorBackendSQL }

func (s *sqlIndex) Upsert(context.Context, string, []*model.Chunk) error { return nil }

func (s *sqlIndex) DeleteDocument(context.Context, string) error { return nil }

func (s *sqlIndex) DeleteSubject(context.Context, string) error { return nil }

// Query scores every chunk of the subject. A query vector whose length
// differs from the stored embeddings is rejected rather than matching nothing.
func (s *sqlIndex) Query(ctx context.Context, subjectID string, vector []float32, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		return []ScoredChunk{}, nil
	}

	list, err := s.chunks.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	hits := make([]ScoredChunk, 0, len(list))
	for _, c := range list {
		if c.Dimension != len(vector) {
			return nil, errors.ErrDimensionMismatch.WithMessagef(
				"subject %s is indexed with %d-dimensional embeddings, query has %d",
				subjectID, c.Dimension, len(vector))
		}
		hits = append(hits, ScoredChunk{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			PageNumber: c.PageNumber,
			Content:    c.Content,
			Seq:        c.Seq,
			Similarity: textutil.Clamp01(textutil.CosineSimilarity(c.Embedding, vector)),
		})
	}
	return sortScored(hits, k), nil
}
