package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/edurag/internal/edurag/metrics"
	"github.com/kart-io/edurag/internal/edurag/store"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/internal/pkg/textutil"
	"github.com/kart-io/edurag/pkg/infra/tracing"
	"github.com/kart-io/edurag/pkg/llm"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

// RetrieverConfig 检索器配置。
type RetrieverConfig struct {
	// MaxEmbedChars 问题送入 embedding 模型前的截断长度。
	MaxEmbedChars int
	// EmbedTimeout 问题向量化超时。
	EmbedTimeout time.Duration
	// QueryTimeout 向量检索超时。
	QueryTimeout time.Duration
}

// Retriever 负责科目内的相似度检索。
type Retriever struct {
	index    store.VectorIndex
	embedder llm.EmbeddingProvider
	metrics  *metrics.Metrics
	config   *RetrieverConfig
}

// NewRetriever 创建检索器实例。embedder 必须与摄取时使用同一模型。
func NewRetriever(index store.VectorIndex, embedder llm.EmbeddingProvider, m *metrics.Metrics, config *RetrieverConfig) *Retriever {
	return &Retriever{
		index:    index,
		embedder: embedder,
		metrics:  m,
		config:   config,
	}
}

// Retrieve 返回至多 k 个相关分块，按相似度降序。科目为空时返回空切片。
func (r *Retriever) Retrieve(ctx context.Context, subjectID, question string, k int) (sources []model.RetrievedSource, err error) {
	ctx, span := tracing.Start(ctx, "biz.Retrieve",
		attribute.String("subject.id", subjectID),
		attribute.Int("retrieval.k", k),
		attribute.String("retrieval.backend", r.index.Name()),
	)
	start := time.Now()
	defer func() {
		if r.metrics != nil {
			r.metrics.RecordRetrieval(r.index.Name(), len(sources), time.Since(start), err)
		}
		span.SetAttributes(attribute.Int("retrieval.hits", len(sources)))
		tracing.End(span, err)
	}()

	// 1. 问题向量化
	vector, err := r.embed(ctx, question)
	if err != nil {
		logger.Warnw("question embedding failed", "subject_id", subjectID, "error", err.Error())
		return nil, errors.ErrEmbeddingUnavailable.WithCause(err)
	}

	// 2. 向量检索
	queryCtx := ctx
	if r.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, r.config.QueryTimeout)
		defer cancel()
	}
	hits, err := r.index.Query(queryCtx, subjectID, vector, k)
	if err != nil {
		return nil, asErrno(err, errors.ErrVectorIndex)
	}

	sources = make([]model.RetrievedSource, len(hits))
	for n, h := range hits {
		sources[n] = model.RetrievedSource{
			ChunkID:    h.ChunkID,
			PageNumber: h.PageNumber,
			Similarity: h.Similarity,
			Content:    h.Content,
		}
	}

	logger.Debugw("retrieval completed",
		"subject_id", subjectID,
		"k", k,
		"hits", len(sources),
		"backend", r.index.Name(),
	)
	return sources, nil
}

func (r *Retriever) embed(ctx context.Context, text string) ([]float32, error) {
	if r.config.EmbedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.EmbedTimeout)
		defer cancel()
	}
	return r.embedder.EmbedSingle(ctx, textutil.TruncateString(text, r.config.MaxEmbedChars))
}
