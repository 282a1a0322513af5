package biz

import (
	"context"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/edurag/internal/edurag/metrics"
	"github.com/kart-io/edurag/internal/edurag/store"
	"github.com/kart-io/edurag/pkg/llm"
)

// NotesGenerator 基于科目资料生成 Markdown 学习笔记。
type NotesGenerator struct {
	store     store.Factory
	retriever *Retriever
	chat      llm.ChatProvider
	metrics   *metrics.Metrics
	config    *GeneratorConfig
}

// NewNotesGenerator 创建笔记生成器实例。
func NewNotesGenerator(factory store.Factory, retriever *Retriever, chat llm.ChatProvider, m *metrics.Metrics, config *GeneratorConfig) *NotesGenerator {
	return &NotesGenerator{
		store:     factory,
		retriever: retriever,
		chat:      chat,
		metrics:   m,
		config:    config,
	}
}

// Generate 生成笔记。输出因长度上限被截断时追加 TruncationMarker。
func (g *NotesGenerator) Generate(ctx context.Context, subjectID, topic string) (string, error) {
	sources, err := retrieveForGeneration(ctx, g.store, g.retriever, subjectID, notesQuery(topic), g.config.TopK)
	if err != nil {
		return "", err
	}

	resp, err := generate(ctx, g.chat, g.metrics, "notes", g.config.GenerateTimeout,
		notesPrompt(FormatContext(sources), strings.TrimSpace(topic)), notesSystemPrompt)
	if err != nil {
		return "", err
	}

	notes := strings.TrimSpace(resp.Content)
	if resp.Truncated() {
		logger.Warnw("notes truncated by output limit", "subject_id", subjectID)
		notes += TruncationMarker
	}
	return notes, nil
}
