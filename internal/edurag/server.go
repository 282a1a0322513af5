// Package edurag provides the EduRAG server implementation.
package edurag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/edurag/internal/edurag/biz"
	"github.com/kart-io/edurag/internal/edurag/handler"
	"github.com/kart-io/edurag/internal/edurag/metrics"
	"github.com/kart-io/edurag/internal/edurag/router"
	"github.com/kart-io/edurag/internal/edurag/store"
	"github.com/kart-io/edurag/pkg/component/database"
	"github.com/kart-io/edurag/pkg/component/milvus"
	"github.com/kart-io/edurag/pkg/component/redis"
	"github.com/kart-io/edurag/pkg/infra/app"
	"github.com/kart-io/edurag/pkg/infra/pool"
	"github.com/kart-io/edurag/pkg/infra/tracing"
	"github.com/kart-io/edurag/pkg/llm"
	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/edurag/pkg/llm/ollama"
	_ "github.com/kart-io/edurag/pkg/llm/openai"
	cacheopts "github.com/kart-io/edurag/pkg/options/cache"
	corsopts "github.com/kart-io/edurag/pkg/options/cors"
	dbopts "github.com/kart-io/edurag/pkg/options/database"
	jwtopts "github.com/kart-io/edurag/pkg/options/jwt"
	llmopts "github.com/kart-io/edurag/pkg/options/llm"
	logopts "github.com/kart-io/edurag/pkg/options/logger"
	milvusopts "github.com/kart-io/edurag/pkg/options/milvus"
	ragopts "github.com/kart-io/edurag/pkg/options/rag"
	httpopts "github.com/kart-io/edurag/pkg/options/server/http"
	tracingopts "github.com/kart-io/edurag/pkg/options/tracing"
	"github.com/kart-io/edurag/pkg/security/auth/jwt"
)

// Name is the name of the application.
const Name = "edurag"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions     *httpopts.Options
	LogOptions      *logopts.Options
	DatabaseOptions *dbopts.Options
	MilvusOptions   *milvusopts.Options
	LLMOptions      *llmopts.Options
	RAGOptions      *ragopts.Options
	CacheOptions    *cacheopts.Options
	JWTOptions      *jwtopts.Options
	CORSOptions     *corsopts.Options
	TracingOptions  *tracingopts.Options
}

// Server represents the EduRAG server.
type Server struct {
	srv       *http.Server
	library   *biz.Library
	bgPool    *pool.Pool
	embedPool *pool.Pool
	retention time.Duration
	interval  time.Duration
	shutdown  time.Duration
	closers   []func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	printBanner(cfg)

	s := &Server{
		retention: cfg.RAGOptions.TrashRetention,
		interval:  cfg.RAGOptions.PurgeInterval,
		shutdown:  cfg.HTTPOptions.ShutdownTimeout,
	}
	ok := false
	defer func() {
		if !ok {
			s.close()
		}
	}()

	// 1. 初始化日志
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Infow("Starting EduRAG service...", "version", app.GetVersion())

	// 2. 初始化链路追踪
	tp, err := tracing.NewProvider(ctx, cfg.TracingOptions, app.GetVersion())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	s.closers = append(s.closers, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("tracing shutdown failed", "error", err.Error())
		}
	})
	if tp.Enabled() {
		logger.Infow("Tracing initialized",
			"exporter", cfg.TracingOptions.ExporterType,
			"endpoint", cfg.TracingOptions.Endpoint,
		)
	}

	// 3. 初始化数据库
	dbClient, err := database.NewWithContext(ctx, cfg.DatabaseOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	s.closers = append(s.closers, func() { _ = dbClient.Close() })

	factory := store.NewFactory(dbClient.DB())
	if cfg.DatabaseOptions.AutoMigrate {
		if err := factory.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	logger.Infow("Database initialized",
		"driver", cfg.DatabaseOptions.Driver,
		"auto_migrate", cfg.DatabaseOptions.AutoMigrate,
	)

	// 4. 初始化向量索引
	var index store.VectorIndex
	switch cfg.RAGOptions.VectorBackend {
	case ragopts.VectorBackendMilvus:
		milvusClient, err := milvus.New(cfg.MilvusOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize milvus: %w", err)
		}
		s.closers = append(s.closers, func() { _ = milvusClient.Close(context.Background()) })
		index = store.NewMilvusIndex(milvusClient, cfg.MilvusOptions.Collection)
	default:
		index = store.NewSQLIndex(factory)
	}
	logger.Infow("Vector index initialized", "backend", index.Name())

	// 5. 初始化 Redis 客户端（用于缓存）
	var redisClient *redis.Client
	if cfg.CacheOptions.Enabled {
		redisClient, err = redis.NewWithContext(ctx, cfg.CacheOptions.Redis)
		if err != nil {
			logger.Warnw("failed to connect to redis, cache will be disabled", "error", err.Error())
			redisClient = nil
		} else {
			s.closers = append(s.closers, func() { _ = redisClient.Close() })
			logger.Infow("Redis cache initialized",
				"addr", cfg.CacheOptions.Redis.Addr(),
				"ttl", cfg.CacheOptions.TTL,
			)
		}
	} else {
		logger.Info("Cache is disabled")
	}

	// 6. 初始化 LLM 供应商
	embedOpts, chatOpts := cfg.LLMOptions.Embedding, cfg.LLMOptions.Chat
	embedProvider, err := llm.NewEmbeddingProvider(embedOpts.Provider, embedOpts.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	logger.Infow("Embedding provider initialized",
		"provider", embedOpts.Provider,
		"model", embedOpts.Model,
	)

	chatProvider, err := llm.NewChatProvider(chatOpts.Provider, chatOpts.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("Chat provider initialized",
		"provider", chatOpts.Provider,
		"model", chatOpts.Model,
	)

	// 问题向量走缓存，文档分块直接调用供应商
	queryEmbedder := llm.EmbeddingProvider(embedProvider)
	var answerCache *biz.AnswerCache
	if redisClient != nil {
		queryEmbedder = llm.NewCachedEmbeddingProvider(embedProvider, redisClient.Client(), &llm.EmbeddingCacheConfig{
			Enabled:   true,
			TTL:       cfg.CacheOptions.EmbeddingTTL,
			KeyPrefix: cfg.CacheOptions.KeyPrefix + "emb:",
			Namespace: embedOpts.Provider + ":" + embedOpts.Model,
		})
		answerCache = biz.NewAnswerCache(redisClient.Client(), &biz.AnswerCacheConfig{
			Enabled:   true,
			TTL:       cfg.CacheOptions.TTL,
			KeyPrefix: cfg.CacheOptions.KeyPrefix,
		})
	} else {
		answerCache = biz.NewAnswerCache(nil, nil)
	}

	// 7. 初始化协程池
	s.embedPool, err = pool.NewPool("embedding", pool.EmbeddingPool, pool.EmbeddingPoolConfig(cfg.RAGOptions.EmbedConcurrency))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding pool: %w", err)
	}
	s.bgPool, err = pool.NewPool("background", pool.BackgroundPool, pool.BackgroundPoolConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize background pool: %w", err)
	}
	logger.Infow("Worker pools initialized", "embed_concurrency", cfg.RAGOptions.EmbedConcurrency)

	// 8. 初始化 Biz 层
	m := metrics.GetMetrics()
	for _, p := range []*pool.Pool{s.embedPool, s.bgPool} {
		if err := m.RegisterPool(p); err != nil {
			logger.Warnw("failed to register pool metrics", "pool", p.Name(), "error", err.Error())
		}
	}
	rag := cfg.RAGOptions
	retriever := biz.NewRetriever(index, queryEmbedder, m, &biz.RetrieverConfig{
		MaxEmbedChars: rag.MaxEmbedChars,
		EmbedTimeout:  rag.EmbedTimeout,
		QueryTimeout:  rag.QueryTimeout,
	})
	ingestor := biz.NewIngestor(
		factory,
		index,
		biz.PDFExtractor{},
		biz.NewChunker(rag.ChunkSize, rag.ChunkOverlap),
		embedProvider,
		s.embedPool,
		answerCache,
		m,
		&biz.IngestorConfig{
			BatchSize:     rag.EmbedBatchSize,
			MaxEmbedChars: rag.MaxEmbedChars,
			EmbedTimeout:  rag.EmbedTimeout,
		},
	)
	synthesizer := biz.NewSynthesizer(retriever, chatProvider, answerCache, m, &biz.SynthesizerConfig{
		TopK:            rag.AnswerTopK,
		GenerateTimeout: rag.GenerateTimeout,
	})
	genConfig := &biz.GeneratorConfig{
		TopK:            rag.GenerateTopK,
		GenerateTimeout: rag.GenerateTimeout,
	}
	quizzes := biz.NewQuizGenerator(factory, retriever, chatProvider, m, genConfig)
	notes := biz.NewNotesGenerator(factory, retriever, chatProvider, m, genConfig)
	subjects := biz.NewSubjectService(factory, index, answerCache)
	documents := biz.NewDocumentService(factory, index, answerCache)
	chats := biz.NewChatService(factory)
	s.library = biz.NewLibrary(factory, m)
	logger.Infow("EduRAG service initialized",
		"chunk_size", rag.ChunkSize,
		"chunk_overlap", rag.ChunkOverlap,
		"answer_top_k", rag.AnswerTopK,
		"cache.enabled", redisClient != nil,
	)

	// 9. 初始化认证
	verifier, err := jwt.New(cfg.JWTOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jwt verifier: %w", err)
	}

	// 10. 初始化 Handler 层
	handlers := router.Handlers{
		Subject:  handler.NewSubjectHandler(subjects),
		Document: handler.NewDocumentHandler(subjects, documents, ingestor, cfg.HTTPOptions.MaxUploadSize),
		Ask:      handler.NewAskHandler(subjects, synthesizer, quizzes, notes),
		Chat:     handler.NewChatHandler(chats),
		Library:  handler.NewLibraryHandler(s.library),
	}
	logger.Info("Handler layer initialized")

	// 11. 初始化服务器并注册路由
	gin.SetMode(cfg.HTTPOptions.Mode)
	engine := gin.New()
	engine.MaxMultipartMemory = cfg.HTTPOptions.MaxUploadSize
	router.Register(engine, router.Config{
		Verifier: verifier,
		CORS:     cfg.CORSOptions,
		Metrics:  m,
	}, handlers)

	s.srv = &http.Server{
		Addr:         cfg.HTTPOptions.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
		WriteTimeout: cfg.HTTPOptions.WriteTimeout,
		IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
	}

	logger.Info("EduRAG service is ready")
	ok = true
	return s, nil
}

// Run starts the server and blocks until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	defer s.close()

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go s.purgeLoop(purgeCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, open := <-errCh:
		if open && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down EduRAG service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.Info("EduRAG service stopped")
	return nil
}

// purgeLoop 启动时以及每个 interval 清理一次超过保留期的回收站内容。
func (s *Server) purgeLoop(ctx context.Context) {
	if s.retention <= 0 || s.interval <= 0 {
		logger.Info("Trash purge is disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.bgPool.SubmitWithContext(ctx, func() { s.purge(ctx) }); err != nil {
			logger.Warnw("failed to schedule trash purge", "error", err.Error())
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) purge(ctx context.Context) {
	quizzes, notes, err := s.library.PurgeExpired(ctx, s.retention)
	if err != nil {
		logger.Global().WithCtx(ctx).Warnw("trash purge failed", "error", err.Error())
		return
	}
	if quizzes > 0 || notes > 0 {
		logger.Infow("trash purged", "quizzes", quizzes, "notes", notes)
	}
}

func (s *Server) close() {
	if s.bgPool != nil {
		if err := s.bgPool.ReleaseTimeout(5 * time.Second); err != nil {
			logger.Warnw("background pool release timed out", "error", err.Error())
		}
	}
	if s.embedPool != nil {
		s.embedPool.Release()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  Database: %s\n", cfg.DatabaseOptions.Driver)
	fmt.Printf("  Vector backend: %s\n", cfg.RAGOptions.VectorBackend)
	fmt.Printf("  Embedding: %s (%s)\n", cfg.LLMOptions.Embedding.Provider, cfg.LLMOptions.Embedding.Model)
	fmt.Printf("  Chat: %s (%s)\n", cfg.LLMOptions.Chat.Provider, cfg.LLMOptions.Chat.Model)
}
