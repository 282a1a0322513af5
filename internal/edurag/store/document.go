package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

type documents struct {
	db *gorm.DB
}

// Create creates a new document row.
func (d *documents) Create(ctx context.Context, doc *model.Document) error {
	return dbErr(d.db.WithContext(ctx).Create(doc).Error, errors.ErrDocumentNotFound)
}

// Get retrieves a document owned by teacherID.
func (d *documents) Get(ctx context.Context, teacherID, id string) (*model.Document, error) {
	var doc model.Document
	err := d.db.WithContext(ctx).
		Where("id = ? AND teacher_id = ?", id, teacherID).
		First(&doc).Error
	if err != nil {
		return nil, dbErr(err, errors.ErrDocumentNotFound)
	}
	return &doc, nil
}

// List lists the documents of a subject, newest first.
func (d *documents) List(ctx context.Context, teacherID, subjectID string) ([]*model.Document, error) {
	var list []*model.Document
	err := d.db.WithContext(ctx).
		Where("subject_id = ? AND teacher_id = ?", subjectID, teacherID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&list).Error
	if err != nil {
		return nil, dbErr(err, errors.ErrDocumentNotFound)
	}
	return list, nil
}

// Delete removes a document and its chunks. The subject's embedding
// dimension is released when its last chunk goes away.
func (d *documents) Delete(ctx context.Context, teacherID, id string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc model.Document
		if err := tx.Where("id = ? AND teacher_id = ?", id, teacherID).First(&doc).Error; err != nil {
			return dbErr(err, errors.ErrDocumentNotFound)
		}
		if err := tx.Delete(&doc).Error; err != nil {
			return dbErr(err, errors.ErrDocumentNotFound)
		}
		if err := tx.Where("document_id = ?", id).Delete(&model.Chunk{}).Error; err != nil {
			return dbErr(err, errors.ErrDocumentNotFound)
		}

		remaining := tx.Model(&model.Chunk{}).Select("1").Where("subject_id = ?", doc.SubjectID)
		err := tx.Model(&model.Subject{}).
			Where("id = ? AND NOT EXISTS (?)", doc.SubjectID, remaining).
			Update("embedding_dimension", 0).Error
		return dbErr(err, errors.ErrDocumentNotFound)
	})
}

// CountBySubject counts the documents of a subject.
func (d *documents) CountBySubject(ctx context.Context, subjectID string) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&model.Document{}).Where("subject_id = ?", subjectID).Count(&n).Error
	return n, dbErr(err, errors.ErrDocumentNotFound)
}
