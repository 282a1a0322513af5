package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/edurag/internal/edurag/biz"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/internal/pkg/httputils"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

// LibraryHandler handles saved quizzes and notes.
type LibraryHandler struct {
	library *biz.Library
}

// NewLibraryHandler creates a new LibraryHandler.
func NewLibraryHandler(library *biz.Library) *LibraryHandler {
	return &LibraryHandler{library: library}
}

// SaveQuizRequest represents a quiz to persist.
type SaveQuizRequest struct {
	SubjectID string               `json:"subject_id" validate:"required"`
	Title     string               `json:"title" validate:"max=200"`
	Questions []model.QuizQuestion `json:"questions" validate:"required,min=1"`
}

// UpdateQuizRequest represents a partial quiz update.
type UpdateQuizRequest struct {
	QuizID    string               `json:"quiz_id" validate:"required"`
	Title     *string              `json:"title" validate:"omitempty,max=200"`
	Questions []model.QuizQuestion `json:"questions" validate:"omitempty,min=1"`
}

// SaveNoteRequest represents notes to persist.
type SaveNoteRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Title     string `json:"title" validate:"max=200"`
	Content   string `json:"content" validate:"required,notblank"`
}

// UpdateNoteRequest represents a partial note update.
type UpdateNoteRequest struct {
	NoteID  string  `json:"note_id" validate:"required"`
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Content *string `json:"content" validate:"omitempty,notblank"`
}

func permanent(c *gin.Context) (bool, error) {
	raw := c.Query("permanent")
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.ErrInvalidParam.WithMessage("permanent must be a boolean")
	}
	return v, nil
}

// SaveQuiz persists a quiz.
func (h *LibraryHandler) SaveQuiz(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	var req SaveQuizRequest
	if err := httputils.BindJSON(c, &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	quiz, err := h.library.SaveQuiz(c.Request.Context(), teacher, req.SubjectID, req.Title, req.Questions)
	httputils.WriteResponse(c, err, quiz)
}

// UpdateQuiz updates the title or questions of a quiz.
func (h *LibraryHandler) UpdateQuiz(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	var req UpdateQuizRequest
	if err := httputils.BindJSON(c, &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	quiz, err := h.library.UpdateQuiz(c.Request.Context(), teacher, req.QuizID, biz.QuizUpdate{
		Title:     req.Title,
		Questions: req.Questions,
	})
	httputils.WriteResponse(c, err, quiz)
}

// ListQuizzes lists the active quizzes of a subject.
func (h *LibraryHandler) ListQuizzes(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	quizzes, err := h.library.ListQuizzes(c.Request.Context(), teacher, c.Param("subject_id"))
	httputils.WriteResponse(c, err, quizzes)
}

// ListTrashedQuizzes lists the caller's trashed quizzes, optionally
// narrowed by the subject_id query parameter.
func (h *LibraryHandler) ListTrashedQuizzes(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	quizzes, err := h.library.ListTrashedQuizzes(c.Request.Context(), teacher, c.Query("subject_id"))
	httputils.WriteResponse(c, err, quizzes)
}

// GetQuiz returns one quiz.
func (h *LibraryHandler) GetQuiz(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	quiz, err := h.library.GetQuiz(c.Request.Context(), teacher, c.Param("id"))
	httputils.WriteResponse(c, err, quiz)
}

// DeleteQuiz moves a quiz to the trash, or removes it with ?permanent=true.
func (h *LibraryHandler) DeleteQuiz(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	perm, err := permanent(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.library.DeleteQuiz(c.Request.Context(), teacher, c.Param("id"), perm); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	msg := "Quiz moved to trash"
	if perm {
		msg = "Quiz permanently deleted"
	}
	httputils.WriteResponse(c, nil, MessageResponse{Message: msg})
}

// RestoreQuiz brings a trashed quiz back.
func (h *LibraryHandler) RestoreQuiz(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	quiz, err := h.library.RestoreQuiz(c.Request.Context(), teacher, c.Param("id"))
	httputils.WriteResponse(c, err, quiz)
}

// SaveNote persists notes.
func (h *LibraryHandler) SaveNote(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	var req SaveNoteRequest
	if err := httputils.BindJSON(c, &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	note, err := h.library.SaveNote(c.Request.Context(), teacher, req.SubjectID, req.Title, req.Content)
	httputils.WriteResponse(c, err, note)
}

// UpdateNote updates the title or content of a note.
func (h *LibraryHandler) UpdateNote(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	var req UpdateNoteRequest
	if err := httputils.BindJSON(c, &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	note, err := h.library.UpdateNote(c.Request.Context(), teacher, req.NoteID, biz.NoteUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
	httputils.WriteResponse(c, err, note)
}

// ListNotes lists the active notes of a subject.
func (h *LibraryHandler) ListNotes(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	notes, err := h.library.ListNotes(c.Request.Context(), teacher, c.Param("subject_id"))
	httputils.WriteResponse(c, err, notes)
}

// ListTrashedNotes lists the caller's trashed notes, optionally narrowed
// by the subject_id query parameter.
func (h *LibraryHandler) ListTrashedNotes(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	notes, err := h.library.ListTrashedNotes(c.Request.Context(), teacher, c.Query("subject_id"))
	httputils.WriteResponse(c, err, notes)
}

// GetNote returns one note.
func (h *LibraryHandler) GetNote(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	note, err := h.library.GetNote(c.Request.Context(), teacher, c.Param("id"))
	httputils.WriteResponse(c, err, note)
}

// DeleteNote moves a note to the trash, or removes it with ?permanent=true.
func (h *LibraryHandler) DeleteNote(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	perm, err := permanent(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.library.DeleteNote(c.Request.Context(), teacher, c.Param("id"), perm); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	msg := "Note moved to trash"
	if perm {
		msg = "Note permanently deleted"
	}
	httputils.WriteResponse(c, nil, MessageResponse{Message: msg})
}

// RestoreNote brings a trashed note back.
func (h *LibraryHandler) RestoreNote(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	note, err := h.library.RestoreNote(c.Request.Context(), teacher, c.Param("id"))
	httputils.WriteResponse(c, err, note)
}
