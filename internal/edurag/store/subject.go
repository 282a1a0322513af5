package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

type subjects struct {
	db *gorm.DB
}

// Create creates a new subject.
func (s *subjects) Create(ctx context.Context, subject *model.Subject) error {
	return dbErr(s.db.WithContext(ctx).Create(subject).Error, errors.ErrSubjectNotFound)
}

// Update saves name and description of an existing subject.
func (s *subjects) Update(ctx context.Context, subject *model.Subject) error {
	res := s.db.WithContext(ctx).Model(subject).
		Where("teacher_id = ?", subject.TeacherID).
		Select("name", "description", "updated_at").
		Updates(subject)
	if res.Error != nil {
		return dbErr(res.Error, errors.ErrSubjectNotFound)
	}
	if res.RowsAffected == 0 {
		return errors.ErrSubjectNotFound
	}
	return nil
}

// Get retrieves a subject owned by teacherID.
func (s *subjects) Get(ctx context.Context, teacherID, id string) (*model.Subject, error) {
	var subject model.Subject
	err := s.db.WithContext(ctx).
		Where("id = ? AND teacher_id = ?", id, teacherID).
		First(&subject).Error
	if err != nil {
		return nil, dbErr(err, errors.ErrSubjectNotFound)
	}
	return &subject, nil
}

// List lists the subjects of a teacher, newest first.
func (s *subjects) List(ctx context.Context, teacherID string) ([]*model.Subject, error) {
	var list []*model.Subject
	err := s.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, dbErr(err, errors.ErrSubjectNotFound)
	}
	return list, nil
}

// ClaimDimension pins the embedding dimension of a subject.
func (s *subjects) ClaimDimension(ctx context.Context, subjectID string, dim int) error {
	res := s.db.WithContext(ctx).Model(&model.Subject{}).
		Where("id = ? AND (embedding_dimension = 0 OR embedding_dimension = ?)", subjectID, dim).
		Update("embedding_dimension", dim)
	if res.Error != nil {
		return dbErr(res.Error, errors.ErrSubjectNotFound)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var subject model.Subject
	if err := s.db.WithContext(ctx).Select("id", "embedding_dimension").
		Where("id = ?", subjectID).First(&subject).Error; err != nil {
		return dbErr(err, errors.ErrSubjectNotFound)
	}
	// MySQL 不把值未变化的行计入影响行数，需回读确认
	if subject.EmbeddingDimension == dim {
		return nil
	}
	return errors.ErrDimensionMismatch.WithMessagef(
		"embedding dimension %d does not match the subject index dimension %d", dim, subject.EmbeddingDimension)
}

// Delete removes a subject and everything that belongs to it.
func (s *subjects) Delete(ctx context.Context, teacherID, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND teacher_id = ?", id, teacherID).Delete(&model.Subject{})
		if res.Error != nil {
			return dbErr(res.Error, errors.ErrSubjectNotFound)
		}
		if res.RowsAffected == 0 {
			return errors.ErrSubjectNotFound
		}

		for _, m := range []any{&model.Chunk{}, &model.Document{}, &model.ChatMessage{}, &model.Quiz{}, &model.Note{}} {
			if err := tx.Where("subject_id = ?", id).Delete(m).Error; err != nil {
				return dbErr(err, errors.ErrSubjectNotFound)
			}
		}
		return nil
	})
}
