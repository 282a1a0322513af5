package store

import (
	"gorm.io/gorm"

	"github.com/kart-io/edurag/internal/model"
)

// trashed 构造回收站查询：按教师过滤，可选按科目过滤，并关联出科目名称。
func trashed(db *gorm.DB, table, teacherID, subjectID string) *gorm.DB {
	q := db.Table(table).
		Select(table+".*, subjects.name AS subject_name").
		Joins("LEFT JOIN subjects ON subjects.id = "+table+".subject_id").
		Where(table+".teacher_id = ? AND "+table+".status = ?", teacherID, model.StatusTrashed)
	if subjectID != "" {
		q = q.Where(table+".subject_id = ?", subjectID)
	}
	return q.Order(table + ".trashed_at DESC")
}
