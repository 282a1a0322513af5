package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

type quizzes struct {
	db *gorm.DB
}

// Create saves a new quiz.
func (q *quizzes) Create(ctx context.Context, quiz *model.Quiz) error {
	return dbErr(q.db.WithContext(ctx).Create(quiz).Error, errors.ErrQuizNotFound)
}

// Update saves every column of an existing quiz owned by quiz.TeacherID.
func (q *quizzes) Update(ctx context.Context, quiz *model.Quiz) error {
	res := q.db.WithContext(ctx).Model(quiz).
		Where("teacher_id = ?", quiz.TeacherID).
		Select("title", "questions", "status", "trashed_at", "updated_at").
		Updates(quiz)
	if res.Error != nil {
		return dbErr(res.Error, errors.ErrQuizNotFound)
	}
	if res.RowsAffected == 0 {
		return errors.ErrQuizNotFound
	}
	return nil
}

// Get retrieves a quiz owned by teacherID.
func (q *quizzes) Get(ctx context.Context, teacherID, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := q.db.WithContext(ctx).
		Where("id = ? AND teacher_id = ?", id, teacherID).
		First(&quiz).Error
	if err != nil {
		return nil, dbErr(err, errors.ErrQuizNotFound)
	}
	return &quiz, nil
}

// List lists the quizzes of a subject with the given status, newest first.
func (q *quizzes) List(ctx context.Context, teacherID, subjectID string, status model.Status) ([]*model.Quiz, error) {
	var list []*model.Quiz
	err := q.db.WithContext(ctx).
		Where("subject_id = ? AND teacher_id = ? AND status = ?", subjectID, teacherID, status).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, dbErr(err, errors.ErrQuizNotFound)
	}
	return list, nil
}

// ListTrashed lists the trashed quizzes of a teacher, most recently trashed first.
func (q *quizzes) ListTrashed(ctx context.Context, teacherID, subjectID string) ([]*model.Quiz, error) {
	var list []*model.Quiz
	err := trashed(q.db.WithContext(ctx), "quizzes", teacherID, subjectID).Find(&list).Error
	if err != nil {
		return nil, dbErr(err, errors.ErrQuizNotFound)
	}
	return list, nil
}

// Delete permanently removes a quiz.
func (q *quizzes) Delete(ctx context.Context, teacherID, id string) error {
	res := q.db.WithContext(ctx).Where("id = ? AND teacher_id = ?", id, teacherID).Delete(&model.Quiz{})
	if res.Error != nil {
		return dbErr(res.Error, errors.ErrQuizNotFound)
	}
	if res.RowsAffected == 0 {
		return errors.ErrQuizNotFound
	}
	return nil
}

// PurgeTrashed removes quizzes trashed before the cutoff.
func (q *quizzes) PurgeTrashed(ctx context.Context, before time.Time) (int64, error) {
	res := q.db.WithContext(ctx).
		Where("status = ? AND trashed_at < ?", model.StatusTrashed, before).
		Delete(&model.Quiz{})
	return res.RowsAffected, dbErr(res.Error, errors.ErrQuizNotFound)
}
