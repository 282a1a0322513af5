package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/edurag/internal/edurag/biz"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/internal/pkg/httputils"
)

// ChatHandler handles chat history requests.
type ChatHandler struct {
	chats *biz.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chats *biz.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// AppendChatRequest represents one chat turn posted by the client.
type AppendChatRequest struct {
	SubjectID string                  `json:"subject_id" validate:"required"`
	Role      string                  `json:"role" validate:"required,chatrole"`
	Content   string                  `json:"content" validate:"required,notblank"`
	Sources   []model.RetrievedSource `json:"sources"`
}

// List returns the chat history of a subject, oldest first.
func (h *ChatHandler) List(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	history, err := h.chats.List(c.Request.Context(), teacher, c.Param("subject_id"))
	httputils.WriteResponse(c, err, history)
}

// Append stores one chat message.
func (h *ChatHandler) Append(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	var req AppendChatRequest
	if err := httputils.BindJSON(c, &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	msg, err := h.chats.Append(c.Request.Context(), teacher, req.SubjectID, model.ChatRole(req.Role), req.Content, req.Sources)
	httputils.WriteResponse(c, err, msg)
}

// Clear deletes the chat history of a subject.
func (h *ChatHandler) Clear(c *gin.Context) {
	teacher, err := teacherID(c)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if _, err := h.chats.Clear(c.Request.Context(), teacher, c.Param("subject_id")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, MessageResponse{Message: "Chat cleared"})
}
