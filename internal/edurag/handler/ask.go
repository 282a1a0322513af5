package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/edurag/internal/edurag/biz"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/internal/pkg/httputils"
)

// defaultMCQCount is used when a quiz request omits mcq_count.
const defaultMCQCount = 5

// AskHandler handles question answering and study material generation.
type AskHandler struct {
	subjects    *biz.SubjectService
	synthesizer *biz.Synthesizer
	quizzes     *biz.QuizGenerator
	notes       *biz.NotesGenerator
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(subjects *biz.SubjectService, synthesizer *biz.Synthesizer, quizzes *biz.QuizGenerator, notes *biz.NotesGenerator) *AskHandler {
	return &AskHandler{
		subjects:    subjects,
		synthesizer: synthesizer,
		quizzes:     quizzes,
		notes:       notes,
	}
}

// AskRequest represents a question about a subject.
type AskRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Question  string `json:"question" validate:"required,notblank,max=2000"`
}

// QuizRequest represents a quiz generation request. Absent counts fall back
// to five multiple choice questions.
type QuizRequest struct {
	SubjectID       string `json:"subject_id" validate:"required"`
	Topic           string `json:"topic" validate:"max=500"`
	Instructions    string `json:"instructions" validate:"max=2000"`
	MCQCount        *int   `json:"mcq_count"`
	ShortCount      *int   `json:"short_count"`
	LongCount       *int   `json:"long_count"`
	FillBlanksCount *int   `json:"fill_blanks_count"`
}

// QuizResponse carries generated, unsaved questions.
type QuizResponse struct {
	Subject   string               `json:"subject"`
	Questions []model.QuizQuestion `json:"questions"`
}

// NotesRequest represents a notes generation request.
type NotesRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Topic     string `json:"topic" validate:"max=500"`
}

// NotesResponse carries generated, unsaved notes.
type NotesResponse struct {
	Subject string `json:"subject"`
	Notes   string `json:"notes"`
}

// Ask answers a question from the subject's materials.
func (h *AskHandler) Ask(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	var req AskRequest
	if err := httputils.BindJSON(c, &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.subjects.Get(ctx, teacher, req.SubjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	answer, err := h.synthesizer.Answer(ctx, req.SubjectID, req.Question)
	httputils.WriteResponse(c, err, answer)
}

// GenerateQuiz generates quiz questions from the subject's materials.
func (h *AskHandler) GenerateQuiz(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	var req QuizRequest
	if err := httputils.BindJSON(c, &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	ctx := c.Request.Context()
	subject, err := h.subjects.Get(ctx, teacher, req.SubjectID)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	questions, err := h.quizzes.Generate(ctx, req.toBiz())
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, QuizResponse{Subject: subject.Name, Questions: questions})
}

func (r *QuizRequest) toBiz() biz.QuizRequest {
	out := biz.QuizRequest{
		SubjectID:    r.SubjectID,
		Topic:        r.Topic,
		Instructions: r.Instructions,
	}
	out.MCQCount = defaultMCQCount
	if r.MCQCount != nil {
		out.MCQCount = *r.MCQCount
	}
	if r.ShortCount != nil {
		out.ShortCount = *r.ShortCount
	}
	if r.LongCount != nil {
		out.LongCount = *r.LongCount
	}
	if r.FillBlanksCount != nil {
		out.FillBlanksCount = *r.FillBlanksCount
	}
	return out
}

// GenerateNotes generates Markdown study notes from the subject's materials.
func (h *AskHandler) GenerateNotes(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	var req NotesRequest
	if err := httputils.BindJSON(c, &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	ctx := c.Request.Context()
	subject, err := h.subjects.Get(ctx, teacher, req.SubjectID)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	notes, err := h.notes.Generate(ctx, req.SubjectID, req.Topic)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, NotesResponse{Subject: subject.Name, Notes: notes})
}
