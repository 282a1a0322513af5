package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/edurag/internal/edurag/metrics"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/internal/pkg/textutil"
	"github.com/kart-io/edurag/pkg/infra/tracing"
	"github.com/kart-io/edurag/pkg/llm"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

// sourcePreviewChars 返回给客户端的来源摘录长度。
const sourcePreviewChars = 200

// Answer 问答结果。
type Answer struct {
	Answer  string                  `json:"answer"`
	Sources []model.RetrievedSource `json:"sources"`
}

// SynthesizerConfig 问答配置。
type SynthesizerConfig struct {
	// TopK 检索的来源数量。
	TopK int
	// GenerateTimeout 单次 LLM 调用超时。
	GenerateTimeout time.Duration
}

// Synthesizer 基于检索结果生成答案。
type Synthesizer struct {
	retriever *Retriever
	chat      llm.ChatProvider
	cache     *AnswerCache
	metrics   *metrics.Metrics
	config    *SynthesizerConfig
}

// NewSynthesizer 创建问答实例。
func NewSynthesizer(retriever *Retriever, chat llm.ChatProvider, cache *AnswerCache, m *metrics.Metrics, config *SynthesizerConfig) *Synthesizer {
	return &Synthesizer{
		retriever: retriever,
		chat:      chat,
		cache:     cache,
		metrics:   m,
		config:    config,
	}
}

// Answer 回答关于科目资料的问题。没有检索到来源时仍调用 LLM，并明确告知没有上下文。
func (s *Synthesizer) Answer(ctx context.Context, subjectID, question string) (*Answer, error) {
	cached, version := s.cache.Get(ctx, subjectID, question)
	if cached != nil {
		s.recordCache(true)
		return cached, nil
	}
	if s.cache.enabled() {
		s.recordCache(false)
	}

	// 1. 检索
	sources, err := s.retriever.Retrieve(ctx, subjectID, question, s.config.TopK)
	if err != nil {
		return nil, err
	}

	// 2. 生成
	resp, err := generate(ctx, s.chat, s.metrics, "answer", s.config.GenerateTimeout,
		answerPrompt(FormatContext(sources), question), answerSystemPrompt)
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Answer:  resp.Content,
		Sources: previewSources(sources),
	}
	s.cache.Set(ctx, subjectID, version, question, answer)
	return answer, nil
}

func (s *Synthesizer) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}

// previewSources 截取摘录并保留四位小数的相似度。
func previewSources(sources []model.RetrievedSource) []model.RetrievedSource {
	out := make([]model.RetrievedSource, len(sources))
	for i, src := range sources {
		out[i] = model.RetrievedSource{
			PageNumber: src.PageNumber,
			Similarity: textutil.Round(src.Similarity, 4),
			Content:    textutil.Preview(src.Content, sourcePreviewChars),
		}
	}
	return out
}

// generate 带超时调用 LLM，失败、超时或空输出都归为 ErrGenerationFailed。不做重试。
func generate(
	ctx context.Context,
	chat llm.ChatProvider,
	m *metrics.Metrics,
	operation string,
	timeout time.Duration,
	prompt, systemPrompt string,
) (resp *llm.GenerateResponse, err error) {
	ctx, span := tracing.Start(ctx, "llm.Generate", attribute.String("llm.operation", operation))
	start := time.Now()
	defer func() {
		if m != nil {
			m.RecordLLMCall(operation, time.Since(start), err)
		}
		tracing.End(span, err)
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err = chat.Generate(ctx, prompt, systemPrompt)
	if err != nil {
		logger.Global().WithCtx(ctx).Warnw("llm generation failed", "operation", operation, "error", err.Error())
		return nil, errors.ErrGenerationFailed.WithCause(err)
	}
	if resp == nil || textutil.IsBlank(resp.Content) {
		return nil, errors.ErrGenerationFailed.WithMessage("the model returned an empty response")
	}

	if resp.TokenUsage != nil {
		logger.Debugw("llm generation completed",
			"operation", operation,
			"prompt_tokens", resp.TokenUsage.PromptTokens,
			"completion_tokens", resp.TokenUsage.CompletionTokens,
			"duration", time.Since(start).String(),
		)
	}
	return resp, nil
}
