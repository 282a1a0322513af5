package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

type notes struct {
	db *gorm.DB
}

// Create saves a new note.
func (n *notes) Create(ctx context.Context, note *model.Note) error {
	return dbErr(n.db.WithContext(ctx).Create(note).Error, errors.ErrNoteNotFound)
}

// Update saves every column of an existing note owned by note.TeacherID.
func (n *notes) Update(ctx context.Context, note *model.Note) error {
	res := n.db.WithContext(ctx).Model(note).
		Where("teacher_id = ?", note.TeacherID).
		Select("title", "content", "status", "trashed_at", "updated_at").
		Updates(note)
	if res.Error != nil {
		return dbErr(res.Error, errors.ErrNoteNotFound)
	}
	if res.RowsAffected == 0 {
		return errors.ErrNoteNotFound
	}
	return nil
}

// Get retrieves a note owned by teacherID.
func (n *notes) Get(ctx context.Context, teacherID, id string) (*model.Note, error) {
	var note model.Note
	err := n.db.WithContext(ctx).
		Where("id = ? AND teacher_id = ?", id, teacherID).
		First(&note).Error
	if err != nil {
		return nil, dbErr(err, errors.ErrNoteNotFound)
	}
	return &note, nil
}

// List lists the notes of a subject with the given status, newest first.
func (n *notes) List(ctx context.Context, teacherID, subjectID string, status model.Status) ([]*model.Note, error) {
	var list []*model.Note
	err := n.db.WithContext(ctx).
		Where("subject_id = ? AND teacher_id = ? AND status = ?", subjectID, teacherID, status).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, dbErr(err, errors.ErrNoteNotFound)
	}
	return list, nil
}

// ListTrashed lists the trashed notes of a teacher, most recently trashed first.
func (n *notes) ListTrashed(ctx context.Context, teacherID, subjectID string) ([]*model.Note, error) {
	var list []*model.Note
	err := trashed(n.db.WithContext(ctx), "notes", teacherID, subjectID).Find(&list).Error
	if err != nil {
		return nil, dbErr(err, errors.ErrNoteNotFound)
	}
	return list, nil
}

// Delete permanently removes a note.
func (n *notes) Delete(ctx context.Context, teacherID, id string) error {
	res := n.db.WithContext(ctx).Where("id = ? AND teacher_id = ?", id, teacherID).Delete(&model.Note{})
	if res.Error != nil {
		return dbErr(res.Error, errors.ErrNoteNotFound)
	}
	if res.RowsAffected == 0 {
		return errors.ErrNoteNotFound
	}
	return nil
}

// PurgeTrashed removes notes trashed before the cutoff.
func (n *notes) PurgeTrashed(ctx context.Context, before time.Time) (int64, error) {
	res := n.db.WithContext(ctx).
		Where("status = ? AND trashed_at < ?", model.StatusTrashed, before).
		Delete(&model.Note{})
	return res.RowsAffected, dbErr(res.Error, errors.ErrNoteNotFound)
}
