package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/edurag/internal/edurag/biz"
	"github.com/kart-io/edurag/internal/pkg/httputils"
)

// SubjectHandler handles subject requests.
type SubjectHandler struct {
	subjects *biz.SubjectService
}

// NewSubjectHandler creates a new SubjectHandler.
func NewSubjectHandler(subjects *biz.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjects: subjects}
}

// CreateSubjectRequest represents a create subject request.
type CreateSubjectRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=200"`
	Description string `json:"description"`
}

// UpdateSubjectRequest represents a partial subject update.
type UpdateSubjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description"`
}

// List lists the subjects of the caller.
func (h *SubjectHandler) List(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	subjects, err := h.subjects.List(c.Request.Context(), teacher)
	httputils.WriteResponse(c, err, subjects)
}

// Create creates a subject.
func (h *SubjectHandler) Create(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	var req CreateSubjectRequest
	if err := httputils.BindJSON(c, &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	subject, err := h.subjects.Create(c.Request.Context(), teacher, req.Name, req.Description)
	httputils.WriteResponse(c, err, subject)
}

// Update updates the name or description of a subject.
func (h *SubjectHandler) Update(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	var req UpdateSubjectRequest
	if err := httputils.BindJSON(c, &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	subject, err := h.subjects.Update(c.Request.Context(), teacher, c.Param("id"), biz.SubjectUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	httputils.WriteResponse(c, err, subject)
}

// Delete deletes a subject with all of its content.
func (h *SubjectHandler) Delete(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.subjects.Delete(c.Request.Context(), teacher, c.Param("id")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, MessageResponse{Message: "Subject deleted successfully"})
}
