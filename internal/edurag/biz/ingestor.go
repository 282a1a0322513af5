package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/edurag/internal/edurag/metrics"
	"github.com/kart-io/edurag/internal/edurag/store"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/internal/pkg/textutil"
	"github.com/kart-io/edurag/pkg/infra/pool"
	"github.com/kart-io/edurag/pkg/infra/tracing"
	"github.com/kart-io/edurag/pkg/llm"
	"github.com/kart-io/edurag/pkg/utils/errors"
	"github.com/kart-io/edurag/pkg/utils/id"
)

// IngestorConfig 摄取配置。
type IngestorConfig struct {
	// BatchSize 每次 embedding 请求的分块数。
	BatchSize int
	// MaxEmbedChars 送入 embedding 模型的最大字符数。
	MaxEmbedChars int
	// EmbedTimeout 整个文档向量化的超时时间。
	EmbedTimeout time.Duration
}

// Ingestor 负责把上传的 PDF 变成可检索的分块。
// 要么文档与全部分块一起可见，要么什么都不写入。
type Ingestor struct {
	store     store.Factory
	index     store.VectorIndex
	extractor Extractor
	chunker   *Chunker
	embedder  llm.EmbeddingProvider
	pool      *pool.Pool
	cache     *AnswerCache
	metrics   *metrics.Metrics
	config    *IngestorConfig
}

// NewIngestor 创建摄取器实例。
func NewIngestor(
	factory store.Factory,
	index store.VectorIndex,
	extractor Extractor,
	chunker *Chunker,
	embedder llm.EmbeddingProvider,
	embedPool *pool.Pool,
	cache *AnswerCache,
	m *metrics.Metrics,
	config *IngestorConfig,
) *Ingestor {
	if config.BatchSize <= 0 {
		config.BatchSize = 16
	}
	return &Ingestor{
		store:     factory,
		index:     index,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		pool:      embedPool,
		cache:     cache,
		metrics:   m,
		config:    config,
	}
}

// Ingest 解析、切分、向量化并持久化一个文档。
func (i *Ingestor) Ingest(ctx context.Context, subject *model.Subject, filename string, data []byte) (doc *model.Document, err error) {
	ctx, span := tracing.Start(ctx, "biz.Ingest",
		attribute.String("subject.id", subject.ID),
		attribute.String("document.filename", filename),
		attribute.Int("document.bytes", len(data)),
	)
	start := time.Now()
	chunkCount := 0
	defer func() {
		if i.metrics != nil {
			i.metrics.RecordIngestion(chunkCount, time.Since(start), err)
		}
		span.SetAttributes(attribute.Int("document.chunks", chunkCount))
		tracing.End(span, err)
	}()

	// 1. 提取逐页文本
	pages, err := i.extractor.Extract(data)
	if err != nil {
		return nil, asErrno(err, errors.ErrInvalidDocument)
	}

	// 2. 切分
	pieces := i.chunker.SplitPages(pages)
	logger.Infow("document parsed",
		"subject_id", subject.ID,
		"filename", filename,
		"pages", len(pages),
		"chunks", len(pieces),
	)

	// 3. 向量化，任何一批失败则整体失败
	vectors, err := i.embedAll(ctx, pieces)
	if err != nil {
		return nil, err
	}
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}

	doc = &model.Document{
		ID:         id.NewULID(),
		SubjectID:  subject.ID,
		TeacherID:  subject.TeacherID,
		Filename:   filename,
		PageCount:  len(pages),
		ChunkCount: len(pieces),
	}
	chunks := make([]*model.Chunk, len(pieces))
	for n, p := range pieces {
		chunks[n] = &model.Chunk{
			ID:         id.NewULID(),
			DocumentID: doc.ID,
			SubjectID:  subject.ID,
			PageNumber: p.PageNumber,
			Ordinal:    p.Ordinal,
			Content:    p.Content,
			Embedding:  vectors[n],
			Dimension:  dim,
		}
	}

	// 4. 文档与分块在同一事务中写入
	err = i.store.Transaction(ctx, func(ctx context.Context, tx store.Factory) error {
		if dim > 0 {
			if err := tx.Subjects().ClaimDimension(ctx, subject.ID, dim); err != nil {
				return err
			}
		}
		if err := tx.Documents().Create(ctx, doc); err != nil {
			return err
		}
		return tx.Chunks().CreateBatch(ctx, chunks)
	})
	if err != nil {
		return nil, errors.FromError(err)
	}

	// 5. 外部向量索引写入失败时补偿删除
	if err := i.index.Upsert(ctx, subject.ID, chunks); err != nil {
		logger.Errorw("vector index upsert failed, rolling back document",
			"document_id", doc.ID,
			"backend", i.index.Name(),
			"error", err.Error(),
		)
		if delErr := i.store.Documents().Delete(context.WithoutCancel(ctx), subject.TeacherID, doc.ID); delErr != nil {
			logger.Errorw("failed to roll back document", "document_id", doc.ID, "error", delErr.Error())
		}
		if delErr := i.index.DeleteDocument(context.WithoutCancel(ctx), doc.ID); delErr != nil {
			logger.Errorw("failed to remove partially written vectors",
				"document_id", doc.ID,
				"backend", i.index.Name(),
				"error", delErr.Error(),
			)
		}
		return nil, errors.ErrVectorIndex.WithCause(err)
	}

	i.cache.BumpVersion(ctx, subject.ID)
	chunkCount = len(chunks)

	logger.Infow("document ingested",
		"subject_id", subject.ID,
		"document_id", doc.ID,
		"chunks", chunkCount,
		"dimension", dim,
		"duration", time.Since(start).String(),
	)
	return doc, nil
}

// embedAll 在 embedding 池上分批并发计算向量，结果与输入一一对应。
func (i *Ingestor) embedAll(ctx context.Context, pieces []PageChunk) ([][]float32, error) {
	if len(pieces) == 0 {
		return nil, nil
	}

	if i.config.EmbedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.config.EmbedTimeout)
		defer cancel()
	}

	vectors := make([][]float32, len(pieces))
	var tasks []func(ctx context.Context) error
	for start := 0; start < len(pieces); start += i.config.BatchSize {
		end := min(start+i.config.BatchSize, len(pieces))
		tasks = append(tasks, i.embedBatch(pieces, vectors, start, end))
	}

	var err error
	if i.pool != nil {
		err = i.pool.Group(ctx, tasks)
	} else {
		for _, task := range tasks {
			if err = task(ctx); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, errors.ErrEmbeddingUnavailable.WithCause(err)
	}

	dim := len(vectors[0])
	for n, v := range vectors {
		if len(v) == 0 || len(v) != dim {
			return nil, errors.ErrEmbeddingUnavailable.WithCause(
				fmt.Errorf("inconsistent embedding dimension at chunk %d: %d != %d", n, len(v), dim))
		}
	}
	return vectors, nil
}

func (i *Ingestor) embedBatch(pieces []PageChunk, out [][]float32, start, end int) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		texts := make([]string, end-start)
		for n := start; n < end; n++ {
			texts[n-start] = textutil.TruncateString(pieces[n].Content, i.config.MaxEmbedChars)
		}
		embeddings, err := i.embedder.Embed(ctx, texts)
		if err != nil {
			return err
		}
		if len(embeddings) != len(texts) {
			return fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(texts))
		}
		copy(out[start:end], embeddings)
		return nil
	}
}
