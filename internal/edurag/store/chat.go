package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

type chats struct {
	db *gorm.DB
}

// Create appends a message.
func (c *chats) Create(ctx context.Context, msg *model.ChatMessage) error {
	return dbErr(c.db.WithContext(ctx).Create(msg).Error, errors.ErrSubjectNotFound)
}

// List returns the history of a subject, oldest first.
func (c *chats) List(ctx context.Context, teacherID, subjectID string) ([]*model.ChatMessage, error) {
	var list []*model.ChatMessage
	err := c.db.WithContext(ctx).
		Where("subject_id = ? AND teacher_id = ?", subjectID, teacherID).
		Order("seq ASC").
		Find(&list).Error
	if err != nil {
		return nil, dbErr(err, errors.ErrSubjectNotFound)
	}
	return list, nil
}

// Clear deletes the history of a subject.
func (c *chats) Clear(ctx context.Context, teacherID, subjectID string) (int64, error) {
	res := c.db.WithContext(ctx).
		Where("subject_id = ? AND teacher_id = ?", subjectID, teacherID).
		Delete(&model.ChatMessage{})
	return res.RowsAffected, dbErr(res.Error, errors.ErrSubjectNotFound)
}
