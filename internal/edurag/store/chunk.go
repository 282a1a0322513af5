package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

const chunkBatchSize = 200

type chunks struct {
	db *gorm.DB
}

// CreateBatch inserts chunks; Seq is filled in by the database.
func (c *chunks) CreateBatch(ctx context.Context, list []*model.Chunk) error {
	if len(list) == 0 {
		return nil
	}
	return dbErr(c.db.WithContext(ctx).CreateInBatches(list, chunkBatchSize).Error, errors.ErrDocumentNotFound)
}

// ListBySubject loads every chunk of a subject in insertion order.
func (c *chunks) ListBySubject(ctx context.Context, subjectID string) ([]*model.Chunk, error) {
	var list []*model.Chunk
	err := c.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("seq ASC").
		Find(&list).Error
	if err != nil {
		return nil, dbErr(err, errors.ErrDocumentNotFound)
	}
	return list, nil
}

// CountBySubject counts the chunks of a subject.
func (c *chunks) CountBySubject(ctx context.Context, subjectID string) (int64, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(&model.Chunk{}).Where("subject_id = ?", subjectID).Count(&n).Error
	return n, dbErr(err, errors.ErrDocumentNotFound)
}
