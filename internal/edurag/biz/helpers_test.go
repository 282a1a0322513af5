package biz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/edurag/internal/edurag/store"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/llm"
)

const testTeacher = "teacher-1"

func newTestFactory(t *testing.T) store.Factory {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	f := store.NewFactory(db)
	require.NoError(t, f.AutoMigrate())
	return f
}

func seedSubject(t *testing.T, f store.Factory, id string) *model.Subject {
	t.Helper()
	s := &model.Subject{ID: id, TeacherID: testTeacher, Name: "Science " + id}
	require.NoError(t, f.Subjects().Create(context.Background(), s))
	return s
}

// vocab gives the fake embedder one dimension per keyword plus a bias
// dimension, so texts sharing keywords are close.
var vocab = []string{"photosynthesis", "light", "plant", "gravity", "force", "cell", "mitosis"}

type fakeEmbedder struct {
	dim    int   // overrides the vector length when set
	failOn int32 // Embed call number that fails, 0 never
	err    error // returned by EmbedSingle when set
	block  bool  // EmbedSingle waits for ctx to end
	calls  atomic.Int32
}

func (e *fakeEmbedder) vector(text string) []float32 {
	if e.dim > 0 {
		v := make([]float32, e.dim)
		v[0] = 1
		return v
	}
	lower := strings.ToLower(text)
	v := make([]float32, len(vocab)+1)
	for i, w := range vocab {
		v[i] = float32(strings.Count(lower, w))
	}
	v[len(vocab)] = 0.1
	return v
}

func (e *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	n := e.calls.Add(1)
	if e.failOn > 0 && n >= e.failOn {
		return nil, fmt.Errorf("embedding service unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if e.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *fakeEmbedder) Name() string { return "fake" }

type fakeChat struct {
	mu      sync.Mutex
	content string
	finish  string
	err     error
	block   bool   // Generate waits for ctx to end
	during  func() // runs inside Generate before it returns
	prompts []string
}

func (c *fakeChat) Generate(ctx context.Context, prompt, _ string) (*llm.GenerateResponse, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	block, during := c.block, c.during
	c.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if during != nil {
		during()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return &llm.GenerateResponse{Content: c.content, FinishReason: c.finish}, nil
}

func (c *fakeChat) Chat(ctx context.Context, msgs []llm.Message) (*llm.GenerateResponse, error) {
	return c.Generate(ctx, msgs[len(msgs)-1].Content, "")
}

func (c *fakeChat) Name() string { return "fake" }

func (c *fakeChat) lastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return ""
	}
	return c.prompts[len(c.prompts)-1]
}

func (c *fakeChat) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

type fakeExtractor struct {
	pages []Page
	err   error
}

func (f fakeExtractor) Extract([]byte) ([]Page, error) {
	return f.pages, f.err
}

// testEngine wires the ingestion and retrieval path on an in-memory store.
type testEngine struct {
	store     store.Factory
	index     store.VectorIndex
	embedder  *fakeEmbedder
	chat      *fakeChat
	ingestor  *Ingestor
	retriever *Retriever
}

func newTestEngine(t *testing.T, pages []Page) *testEngine {
	t.Helper()
	f := newTestFactory(t)
	idx := store.NewSQLIndex(f)
	emb := &fakeEmbedder{}
	e := &testEngine{
		store:    f,
		index:    idx,
		embedder: emb,
		chat:     &fakeChat{},
	}
	e.ingestor = NewIngestor(f, idx, fakeExtractor{pages: pages}, NewChunker(60, 10), emb, nil, nil, nil,
		&IngestorConfig{BatchSize: 2, MaxEmbedChars: 2000})
	e.retriever = NewRetriever(idx, emb, nil, &RetrieverConfig{MaxEmbedChars: 2000})
	return e
}

var threePages = []Page{
	{Number: 1, Text: "   "},
	{Number: 2, Text: "Photosynthesis uses light energy. A plant turns light into sugar during photosynthesis. " +
		"The chlorophyll in each plant cell absorbs light."},
	{Number: 3, Text: ""},
}
