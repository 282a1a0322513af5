package store

import (
	"context"
	"slices"

	"github.com/kart-io/edurag/internal/model"
)

// ScoredChunk 表示一次相似度检索命中的分块。
type ScoredChunk struct {
	ChunkID    string
	DocumentID string
	PageNumber int
	Content    string
	Seq        int64
	// Similarity 余弦相似度，已限制在 [0, 1]。
	Similarity float64
}

// VectorIndex 定义向量索引接口。检索结果按相似度降序，
// 相似度相同时按写入顺序（Seq）升序，保证结果稳定。
type VectorIndex interface {
	// Name 返回后端名称。
	Name() string
	// Upsert 写入分块向量。分块的 Seq 必须已经分配。
	Upsert(ctx context.Context, subjectID string, chunks []*model.Chunk) error
	// Query 返回科目内与 vector 最相似的至多 k 个分块。
	Query(ctx context.Context, subjectID string, vector []float32, k int) ([]ScoredChunk, error)
	// DeleteDocument 删除文档的全部向量。
	DeleteDocument(ctx context.Context, documentID string) error
	// DeleteSubject 删除科目的全部向量。
	DeleteSubject(ctx context.Context, subjectID string) error
}

// sortScored 按相似度降序、Seq 升序排序并截取前 k 个。
func sortScored(hits []ScoredChunk, k int) []ScoredChunk {
	slices.SortStableFunc(hits, func(a, b ScoredChunk) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
