// Package router provides EduRAG service routing.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/edurag/internal/edurag/handler"
	"github.com/kart-io/edurag/internal/edurag/metrics"
	"github.com/kart-io/edurag/internal/pkg/httputils"
	"github.com/kart-io/edurag/pkg/infra/app"
	"github.com/kart-io/edurag/pkg/infra/middleware"
	corsopts "github.com/kart-io/edurag/pkg/options/cors"
	"github.com/kart-io/edurag/pkg/security/auth"
	authmw "github.com/kart-io/edurag/pkg/security/auth/middleware"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

const (
	healthPath  = "/health"
	metricsPath = "/metrics"
	versionPath = "/version"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Subject  *handler.SubjectHandler
	Document *handler.DocumentHandler
	Ask      *handler.AskHandler
	Chat     *handler.ChatHandler
	Library  *handler.LibraryHandler
}

// Config configures the router.
type Config struct {
	Verifier auth.Verifier
	CORS     *corsopts.Options
	Metrics  *metrics.Metrics
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// VersionResponse represents the version endpoint response.
type VersionResponse struct {
	GitVersion string `json:"git_version"`
	GitCommit  string `json:"git_commit,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
	GoVersion  string `json:"go_version,omitempty"`
	Platform   string `json:"platform,omitempty"`
}

// Register installs the middleware chain and every route on engine.
func Register(engine *gin.Engine, cfg Config, h Handlers) {
	logger.Info("Registering EduRAG routes...")

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Logger(),
	)
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics.Middleware())
	}
	if cfg.CORS != nil {
		engine.Use(middleware.CORS(cfg.CORS))
	}
	engine.Use(authmw.Authenticate(authmw.AuthConfig{
		Verifier:  cfg.Verifier,
		SkipPaths: []string{healthPath, metricsPath, versionPath},
	}))

	engine.GET(healthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: app.GetVersion()})
	})
	engine.GET(versionPath, func(c *gin.Context) {
		info := app.GetVersionInfo()
		c.JSON(http.StatusOK, VersionResponse{
			GitVersion: info.GitVersion,
			GitCommit:  info.GitCommit,
			BuildDate:  info.BuildDate,
			GoVersion:  info.GoVersion,
			Platform:   info.Platform,
		})
	})
	if cfg.Metrics != nil {
		engine.GET(metricsPath, gin.WrapH(cfg.Metrics.Handler()))
	}
	engine.NoRoute(func(c *gin.Context) {
		httputils.WriteError(c, errors.ErrRouteNotFound)
	})

	// 科目
	engine.GET("/subjects", h.Subject.List)
	engine.POST("/subjects", h.Subject.Create)
	engine.PUT("/subjects/:id", h.Subject.Update)
	engine.DELETE("/subjects/:id", h.Subject.Delete)

	// 文档
	engine.POST("/documents/upload", h.Document.Upload)
	engine.GET("/documents/:subject_id", h.Document.List)
	engine.DELETE("/documents/:id", h.Document.Delete)

	// 问答与生成
	engine.POST("/ask", h.Ask.Ask)
	engine.POST("/generate-quiz", h.Ask.GenerateQuiz)
	engine.POST("/generate-notes", h.Ask.GenerateNotes)

	// 聊天记录
	engine.GET("/chats/:subject_id", h.Chat.List)
	engine.POST("/chats", h.Chat.Append)
	engine.DELETE("/chats/:subject_id", h.Chat.Clear)

	// 测验
	engine.POST("/save-quiz", h.Library.SaveQuiz)
	engine.PUT("/update-quiz", h.Library.UpdateQuiz)
	engine.GET("/quizzes/:subject_id", h.Library.ListQuizzes)
	engine.GET("/quiz/:id", h.Library.GetQuiz)
	engine.DELETE("/quiz/:id", h.Library.DeleteQuiz)
	engine.POST("/quiz/:id/restore", h.Library.RestoreQuiz)
	engine.GET("/deleted/quizzes", h.Library.ListTrashedQuizzes)

	// 笔记
	engine.POST("/save-notes", h.Library.SaveNote)
	engine.PUT("/update-note", h.Library.UpdateNote)
	engine.GET("/notes/:subject_id", h.Library.ListNotes)
	engine.GET("/note/:id", h.Library.GetNote)
	engine.DELETE("/note/:id", h.Library.DeleteNote)
	engine.POST("/note/:id/restore", h.Library.RestoreNote)
	engine.GET("/deleted/notes", h.Library.ListTrashedNotes)

	logger.Info("HTTP routes registered")
}
