package handler

import (
	stderrors "errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/edurag/internal/edurag/biz"
	"github.com/kart-io/edurag/internal/pkg/httputils"
	"github.com/kart-io/edurag/pkg/utils/errors"
	"github.com/kart-io/edurag/pkg/utils/validator"
)

// DocumentHandler handles document upload, listing and deletion.
type DocumentHandler struct {
	subjects      *biz.SubjectService
	documents     *biz.DocumentService
	ingestor      *biz.Ingestor
	maxUploadSize int64
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(subjects *biz.SubjectService, documents *biz.DocumentService, ingestor *biz.Ingestor, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{
		subjects:      subjects,
		documents:     documents,
		ingestor:      ingestor,
		maxUploadSize: maxUploadSize,
	}
}

// uploadForm holds the non-file fields of an upload.
type uploadForm struct {
	SubjectID string `json:"subject_id" validate:"required"`
}

// Upload ingests a PDF into a subject.
func (h *DocumentHandler) Upload(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	// leave room for the multipart envelope
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			httputils.WriteResponse(c, errors.ErrRequestTooLarge, nil)
			return
		}
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage("file is required"), nil)
		return
	}

	filename := filepath.Base(header.Filename)
	if err := validator.Global().Var(filename, "required,"+validator.TagPDFName); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidDocument.WithMessage("Only PDF files are accepted"), nil)
		return
	}
	form := uploadForm{SubjectID: c.PostForm("subject_id")}
	if err := httputils.Validate(c, &form); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if header.Size > h.maxUploadSize {
		httputils.WriteResponse(c, errors.ErrRequestTooLarge, nil)
		return
	}

	subject, err := h.subjects.Get(c.Request.Context(), teacher, form.SubjectID)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	f, err := header.Open()
	if err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithCause(err), nil)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadSize+1))
	if err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithCause(err), nil)
		return
	}

	doc, err := h.ingestor.Ingest(c.Request.Context(), subject, filename, data)
	httputils.WriteResponse(c, err, doc)
}

// List lists the documents of a subject, newest first.
func (h *DocumentHandler) List(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	docs, err := h.documents.List(c.Request.Context(), teacher, c.Param("subject_id"))
	httputils.WriteResponse(c, err, docs)
}

// Delete deletes a document and its chunks.
func (h *DocumentHandler) Delete(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.documents.Delete(c.Request.Context(), teacher, c.Param("id")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, MessageResponse{Message: "Document deleted successfully"})
}
