package handler_test

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/edurag/internal/edurag/biz"
	"github.com/kart-io/edurag/internal/edurag/handler"
	"github.com/kart-io/edurag/internal/edurag/metrics"
	"github.com/kart-io/edurag/internal/edurag/router"
	"github.com/kart-io/edurag/internal/edurag/store"
	"github.com/kart-io/edurag/pkg/llm"
	"github.com/kart-io/edurag/pkg/security/auth"
	"github.com/kart-io/edurag/pkg/utils/errors"
	"github.com/kart-io/edurag/pkg/utils/json"
)

// tokens maps bearer tokens to teacher ids.
var tokens = map[string]string{
	"alice-token": "alice",
	"bob-token":   "bob",
}

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (*auth.Claims, error) {
	if sub, ok := tokens[token]; ok {
		return &auth.Claims{Subject: sub}, nil
	}
	return nil, errors.ErrInvalidToken
}

type keywordEmbedder struct{}

var keywords = []string{"photosynthesis", "light", "plant", "gravity"}

func (keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(keywords)+1)
	for i, w := range keywords {
		v[i] = float32(strings.Count(lower, w))
	}
	v[len(keywords)] = 0.1
	return v
}

func (e keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e keywordEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (keywordEmbedder) Name() string { return "keyword" }

type scriptedChat struct {
	mu      sync.Mutex
	content string
	prompts []string
}

func (c *scriptedChat) Generate(_ context.Context, prompt, _ string) (*llm.GenerateResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return &llm.GenerateResponse{Content: c.content, FinishReason: "stop"}, nil
}

func (c *scriptedChat) Chat(ctx context.Context, msgs []llm.Message) (*llm.GenerateResponse, error) {
	return c.Generate(ctx, msgs[len(msgs)-1].Content, "")
}

func (c *scriptedChat) Name() string { return "scripted" }

func (c *scriptedChat) reply(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = content
}

type staticExtractor struct {
	pages []biz.Page
}

func (e staticExtractor) Extract([]byte) ([]biz.Page, error) {
	return e.pages, nil
}

var biologyPages = []biz.Page{
	{Number: 1, Text: ""},
	{Number: 2, Text: "Photosynthesis lets a plant turn light into sugar. Light is absorbed by chlorophyll."},
}

type testServer struct {
	engine *gin.Engine
	chat   *scriptedChat
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	factory := store.NewFactory(db)
	require.NoError(t, factory.AutoMigrate())

	index := store.NewSQLIndex(factory)
	cache := biz.NewAnswerCache(nil, nil)
	chat := &scriptedChat{content: "Plants use light."}
	embedder := keywordEmbedder{}

	retriever := biz.NewRetriever(index, embedder, nil, &biz.RetrieverConfig{MaxEmbedChars: 2000})
	ingestor := biz.NewIngestor(factory, index, staticExtractor{pages: biologyPages}, biz.NewChunker(60, 10),
		embedder, nil, cache, nil, &biz.IngestorConfig{BatchSize: 4, MaxEmbedChars: 2000})
	synthesizer := biz.NewSynthesizer(retriever, chat, cache, nil, &biz.SynthesizerConfig{TopK: 3})
	genConfig := &biz.GeneratorConfig{TopK: 5}
	subjects := biz.NewSubjectService(factory, index, cache)

	engine := gin.New()
	router.Register(engine, router.Config{
		Verifier: stubVerifier{},
		Metrics:  metrics.New(prometheus.NewRegistry()),
	}, router.Handlers{
		Subject:  handler.NewSubjectHandler(subjects),
		Document: handler.NewDocumentHandler(subjects, biz.NewDocumentService(factory, index, cache), ingestor, 1<<20),
		Ask: handler.NewAskHandler(subjects, synthesizer,
			biz.NewQuizGenerator(factory, retriever, chat, nil, genConfig),
			biz.NewNotesGenerator(factory, retriever, chat, nil, genConfig)),
		Chat:    handler.NewChatHandler(biz.NewChatService(factory)),
		Library: handler.NewLibraryHandler(biz.NewLibrary(factory, nil)),
	})

	return &testServer{engine: engine, chat: chat}
}

// do sends a JSON request as the owner of token and returns the recorder.
func (s *testServer) do(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf.Write(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// upload posts a multipart upload as the owner of token.
func (s *testServer) upload(t *testing.T, token, subjectID, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if subjectID != "" {
		require.NoError(t, mw.WriteField("subject_id", subjectID))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (s *testServer) createSubject(t *testing.T, token, name string) string {
	t.Helper()
	w := s.do(t, token, http.MethodPost, "/subjects", handler.CreateSubjectRequest{Name: name})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["id"].(string)
}
