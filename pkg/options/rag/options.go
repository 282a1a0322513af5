// Package rag provides retrieval and generation configuration options.
package rag

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/edurag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Vector backends.
const (
	VectorBackendSQL    = "sql"
	VectorBackendMilvus = "milvus"
)

// Options contains retrieval, chunking and generation configuration.
type Options struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the number of characters shared by adjacent chunks.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// AnswerTopK is the number of sources retrieved for a question.
	AnswerTopK int `json:"answer-top-k" mapstructure:"answer-top-k"`

	// GenerateTopK is the number of sources retrieved for quiz and notes generation.
	GenerateTopK int `json:"generate-top-k" mapstructure:"generate-top-k"`

	// MaxEmbedChars truncates text sent to the embedding model.
	MaxEmbedChars int `json:"max-embed-chars" mapstructure:"max-embed-chars"`

	// EmbedBatchSize is the number of chunks per embedding request.
	EmbedBatchSize int `json:"embed-batch-size" mapstructure:"embed-batch-size"`

	// EmbedConcurrency bounds concurrent embedding requests during ingestion.
	EmbedConcurrency int `json:"embed-concurrency" mapstructure:"embed-concurrency"`

	// VectorBackend is sql or milvus.
	VectorBackend string `json:"vector-backend" mapstructure:"vector-backend"`

	EmbedTimeout    time.Duration `json:"embed-timeout" mapstructure:"embed-timeout"`
	GenerateTimeout time.Duration `json:"generate-timeout" mapstructure:"generate-timeout"`
	QueryTimeout    time.Duration `json:"query-timeout" mapstructure:"query-timeout"`

	// TrashRetention is how long trashed quizzes and notes are kept.
	TrashRetention time.Duration `json:"trash-retention" mapstructure:"trash-retention"`

	// PurgeInterval is the period of the trash purge loop.
	PurgeInterval time.Duration `json:"purge-interval" mapstructure:"purge-interval"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:        800,
		ChunkOverlap:     120,
		AnswerTopK:       5,
		GenerateTopK:     10,
		MaxEmbedChars:    2000,
		EmbedBatchSize:   16,
		EmbedConcurrency: 4,
		VectorBackend:    VectorBackendSQL,
		EmbedTimeout:     60 * time.Second,
		GenerateTimeout:  120 * time.Second,
		QueryTimeout:     10 * time.Second,
		TrashRetention:   30 * 24 * time.Hour,
		PurgeInterval:    time.Hour,
	}
}

// AddFlags adds flags for RAG options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.IntVar(&o.ChunkSize, p+"rag.chunk-size", o.ChunkSize, "Maximum chunk length in characters.")
	fs.IntVar(&o.ChunkOverlap, p+"rag.chunk-overlap", o.ChunkOverlap, "Characters shared by adjacent chunks.")
	fs.IntVar(&o.AnswerTopK, p+"rag.answer-top-k", o.AnswerTopK, "Sources retrieved per question.")
	fs.IntVar(&o.GenerateTopK, p+"rag.generate-top-k", o.GenerateTopK, "Sources retrieved for quiz and notes generation.")
	fs.IntVar(&o.MaxEmbedChars, p+"rag.max-embed-chars", o.MaxEmbedChars, "Text sent to the embedder is truncated to this many characters.")
	fs.IntVar(&o.EmbedBatchSize, p+"rag.embed-batch-size", o.EmbedBatchSize, "Chunks per embedding request.")
	fs.IntVar(&o.EmbedConcurrency, p+"rag.embed-concurrency", o.EmbedConcurrency, "Concurrent embedding requests during ingestion.")
	fs.StringVar(&o.VectorBackend, p+"rag.vector-backend", o.VectorBackend, "Vector index backend: sql or milvus.")
	fs.DurationVar(&o.EmbedTimeout, p+"rag.embed-timeout", o.EmbedTimeout, "Timeout of an embedding call.")
	fs.DurationVar(&o.GenerateTimeout, p+"rag.generate-timeout", o.GenerateTimeout, "Timeout of a generation call.")
	fs.DurationVar(&o.QueryTimeout, p+"rag.query-timeout", o.QueryTimeout, "Timeout of a vector query.")
	fs.DurationVar(&o.TrashRetention, p+"rag.trash-retention", o.TrashRetention, "Retention of trashed quizzes and notes.")
	fs.DurationVar(&o.PurgeInterval, p+"rag.purge-interval", o.PurgeInterval, "Interval of the trash purge loop.")
}

// Validate validates the RAG options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("rag.chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("rag.chunk-overlap must be within [0, chunk-size)"))
	}
	if o.AnswerTopK <= 0 || o.GenerateTopK <= 0 {
		errs = append(errs, fmt.Errorf("rag top-k values must be positive"))
	}
	if o.EmbedBatchSize <= 0 || o.EmbedConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("rag.embed-batch-size and rag.embed-concurrency must be positive"))
	}
	if o.VectorBackend != VectorBackendSQL && o.VectorBackend != VectorBackendMilvus {
		errs = append(errs, fmt.Errorf("unsupported rag.vector-backend %q", o.VectorBackend))
	}
	if o.EmbedTimeout <= 0 || o.GenerateTimeout <= 0 || o.QueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("rag timeouts must be positive"))
	}
	return errs
}

// Complete completes the RAG options with defaults.
func (o *Options) Complete() error {
	if o.MaxEmbedChars <= 0 {
		o.MaxEmbedChars = 2000
	}
	if o.TrashRetention <= 0 {
		o.TrashRetention = 30 * 24 * time.Hour
	}
	if o.PurgeInterval <= 0 {
		o.PurgeInterval = time.Hour
	}
	return nil
}
