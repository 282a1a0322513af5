package biz

import (
	"context"
	"strings"

	"github.com/kart-io/edurag/internal/edurag/store"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
	"github.com/kart-io/edurag/pkg/utils/id"
)

// ChatService 管理科目对话记录。记录只追加，按写入顺序读取。
type ChatService struct {
	store store.Factory
}

// NewChatService 创建对话服务实例。
func NewChatService(factory store.Factory) *ChatService {
	return &ChatService{store: factory}
}

// Append 追加一条消息。
func (s *ChatService) Append(ctx context.Context, teacherID, subjectID string, role model.ChatRole, content string, sources []model.RetrievedSource) (*model.ChatMessage, error) {
	if role != model.ChatRoleUser && role != model.ChatRoleAssistant {
		return nil, errors.ErrInvalidParam.WithMessage("role must be user or assistant")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.ErrInvalidParam.WithMessage("content must not be empty")
	}
	if _, err := s.store.Subjects().Get(ctx, teacherID, subjectID); err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		ID:        id.NewULID(),
		SubjectID: subjectID,
		TeacherID: teacherID,
		Role:      role,
		Content:   content,
		Sources:   sources,
	}
	if err := s.store.Chats().Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// List 按时间顺序返回科目对话。
func (s *ChatService) List(ctx context.Context, teacherID, subjectID string) ([]*model.ChatMessage, error) {
	if _, err := s.store.Subjects().Get(ctx, teacherID, subjectID); err != nil {
		return nil, err
	}
	return s.store.Chats().List(ctx, teacherID, subjectID)
}

// Clear 清空科目对话，返回删除的条数。
func (s *ChatService) Clear(ctx context.Context, teacherID, subjectID string) (int64, error) {
	if _, err := s.store.Subjects().Get(ctx, teacherID, subjectID); err != nil {
		return 0, err
	}
	return s.store.Chats().Clear(ctx, teacherID, subjectID)
}
