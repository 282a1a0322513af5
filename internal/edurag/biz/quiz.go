package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/edurag/internal/edurag/metrics"
	"github.com/kart-io/edurag/internal/edurag/store"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/internal/pkg/textutil"
	"github.com/kart-io/edurag/pkg/llm"
	"github.com/kart-io/edurag/pkg/utils/errors"
	"github.com/kart-io/edurag/pkg/utils/json"
)

// MaxQuestionsPerType 单一题型的数量上限。
const MaxQuestionsPerType = 50

// QuizRequest 测验生成请求。
type QuizRequest struct {
	SubjectID       string
	Topic           string
	Instructions    string
	MCQCount        int
	ShortCount      int
	LongCount       int
	FillBlanksCount int
}

func (r *QuizRequest) clamp() {
	for _, n := range []*int{&r.MCQCount, &r.ShortCount, &r.LongCount, &r.FillBlanksCount} {
		*n = max(0, min(*n, MaxQuestionsPerType))
	}
}

func (r *QuizRequest) total() int {
	return r.MCQCount + r.ShortCount + r.LongCount + r.FillBlanksCount
}

func (r *QuizRequest) limit(t model.QuestionType) int {
	switch t {
	case model.QuestionMCQ:
		return r.MCQCount
	case model.QuestionShort:
		return r.ShortCount
	case model.QuestionLong:
		return r.LongCount
	case model.QuestionFillBlanks:
		return r.FillBlanksCount
	}
	return 0
}

// GeneratorConfig 测验与笔记生成配置。
type GeneratorConfig struct {
	// TopK 检索的来源数量。
	TopK int
	// GenerateTimeout 单次 LLM 调用超时。
	GenerateTimeout time.Duration
}

// QuizGenerator 基于科目资料生成测验题。
type QuizGenerator struct {
	store     store.Factory
	retriever *Retriever
	chat      llm.ChatProvider
	metrics   *metrics.Metrics
	config    *GeneratorConfig
}

// NewQuizGenerator 创建测验生成器实例。
func NewQuizGenerator(factory store.Factory, retriever *Retriever, chat llm.ChatProvider, m *metrics.Metrics, config *GeneratorConfig) *QuizGenerator {
	return &QuizGenerator{
		store:     factory,
		retriever: retriever,
		chat:      chat,
		metrics:   m,
		config:    config,
	}
}

// Generate 生成题目。模型输出视为不可信输入：无效题目被丢弃，一道有效题目都没有时返回 ErrNoQuestionsGenerated。
func (g *QuizGenerator) Generate(ctx context.Context, req QuizRequest) ([]model.QuizQuestion, error) {
	req.clamp()
	if req.total() == 0 {
		return nil, errors.ErrInvalidParam.WithMessage("at least one question must be requested")
	}

	sources, err := retrieveForGeneration(ctx, g.store, g.retriever, req.SubjectID, quizQuery(req.Topic, req.Instructions), g.config.TopK)
	if err != nil {
		return nil, err
	}

	resp, err := generate(ctx, g.chat, g.metrics, "quiz", g.config.GenerateTimeout,
		quizPrompt(FormatContext(sources), &req), quizSystemPrompt)
	if err != nil {
		return nil, err
	}

	questions, dropped, err := ParseQuestions(resp.Content)
	if err != nil {
		logger.Warnw("quiz output is not a JSON array", "subject_id", req.SubjectID, "error", err.Error())
		return nil, errors.ErrNoQuestionsGenerated.WithCause(err)
	}

	// 按请求数量截取各题型
	kept := make([]model.QuizQuestion, 0, len(questions))
	counts := make(map[model.QuestionType]int, 4)
	for _, q := range questions {
		if counts[q.Type] >= req.limit(q.Type) {
			dropped++
			continue
		}
		counts[q.Type]++
		kept = append(kept, q)
	}

	if dropped > 0 {
		logger.Infow("dropped invalid or surplus quiz questions", "subject_id", req.SubjectID, "dropped", dropped, "kept", len(kept))
	}
	if len(kept) == 0 {
		return nil, errors.ErrNoQuestionsGenerated
	}
	return kept, nil
}

// rawQuestion 宽松解析模型输出的单道题。
type rawQuestion struct {
	Type          string `json:"type"`
	Question      string `json:"question"`
	Options       []any  `json:"options"`
	CorrectAnswer any    `json:"correct_answer"`
	Answer        any    `json:"answer"`
}

func (r *rawQuestion) toQuestion() model.QuizQuestion {
	q := model.QuizQuestion{
		Type:          model.QuestionType(r.Type),
		Question:      r.Question,
		CorrectAnswer: stringify(r.CorrectAnswer),
	}
	if q.Type == "" {
		q.Type = model.QuestionMCQ
	}
	if q.CorrectAnswer == "" {
		q.CorrectAnswer = stringify(r.Answer)
	}
	for _, o := range r.Options {
		q.Options = append(q.Options, stringify(o))
	}
	q.Normalize()
	return q
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// ParseQuestions 从模型输出中解析题目列表。支持代码块围栏、前后说明文字以及 {"questions": [...]} 包装。
// 返回有效题目和被丢弃的数量；找不到 JSON 数组时返回错误。
func ParseQuestions(raw string) ([]model.QuizQuestion, int, error) {
	body := textutil.StripCodeFence(raw)

	var items []json.RawMessage
	if strings.HasPrefix(body, "{") {
		var wrapped struct {
			Questions []json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal([]byte(body), &wrapped); err == nil && wrapped.Questions != nil {
			items = wrapped.Questions
		}
	}
	if items == nil {
		arr, err := textutil.ExtractJSONArray(body)
		if err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal([]byte(arr), &items); err != nil {
			return nil, 0, fmt.Errorf("parse question array: %w", err)
		}
	}

	questions := make([]model.QuizQuestion, 0, len(items))
	dropped := 0
	for _, item := range items {
		var r rawQuestion
		if err := json.Unmarshal(item, &r); err != nil {
			dropped++
			continue
		}
		q := r.toQuestion()
		if err := q.Validate(); err != nil {
			dropped++
			continue
		}
		questions = append(questions, q)
	}
	return questions, dropped, nil
}

// retrieveForGeneration 检索生成所需的上下文，科目没有任何资料时返回 ErrNoDocuments。
func retrieveForGeneration(ctx context.Context, factory store.Factory, retriever *Retriever, subjectID, query string, k int) ([]model.RetrievedSource, error) {
	n, err := factory.Chunks().CountBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.ErrNoDocuments
	}

	sources, err := retriever.Retrieve(ctx, subjectID, query, k)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, errors.ErrNoDocuments
	}
	return sources, nil
}
