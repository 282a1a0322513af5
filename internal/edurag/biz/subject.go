package biz

import (
	"context"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/edurag/internal/edurag/store"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
	"github.com/kart-io/edurag/pkg/utils/id"
)

// SubjectUpdate 描述科目的部分更新，nil 字段保持不变。
type SubjectUpdate struct {
	Name        *string
	Description *string
}

// SubjectService 科目管理。
type SubjectService struct {
	store store.Factory
	index store.VectorIndex
	cache *AnswerCache
}

// NewSubjectService 创建科目服务实例。
func NewSubjectService(factory store.Factory, index store.VectorIndex, cache *AnswerCache) *SubjectService {
	return &SubjectService{store: factory, index: index, cache: cache}
}

// Create 创建科目。
func (s *SubjectService) Create(ctx context.Context, teacherID, name, description string) (*model.Subject, error) {
	subject := &model.Subject{
		ID:          id.NewULID(),
		TeacherID:   teacherID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	if err := s.store.Subjects().Create(ctx, subject); err != nil {
		return nil, err
	}
	logger.Infow("subject created", "subject_id", subject.ID, "teacher_id", teacherID)
	return subject, nil
}

// Get 返回属于 teacherID 的科目，其他教师的科目视为不存在。
func (s *SubjectService) Get(ctx context.Context, teacherID, subjectID string) (*model.Subject, error) {
	return s.store.Subjects().Get(ctx, teacherID, subjectID)
}

// List 列出教师的全部科目。
func (s *SubjectService) List(ctx context.Context, teacherID string) ([]*model.Subject, error) {
	return s.store.Subjects().List(ctx, teacherID)
}

// Update 部分更新科目。
func (s *SubjectService) Update(ctx context.Context, teacherID, subjectID string, upd SubjectUpdate) (*model.Subject, error) {
	subject, err := s.store.Subjects().Get(ctx, teacherID, subjectID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		subject.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Description != nil {
		subject.Description = strings.TrimSpace(*upd.Description)
	}
	if subject.Name == "" {
		return nil, errors.ErrValidationFailed.WithMessage("name must not be empty")
	}
	if err := s.store.Subjects().Update(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// Delete 级联删除科目及其全部内容。先删除向量再删除关系数据，
// 向量删除失败时请求失败且科目保持不变，可以重试。
func (s *SubjectService) Delete(ctx context.Context, teacherID, subjectID string) error {
	if _, err := s.store.Subjects().Get(ctx, teacherID, subjectID); err != nil {
		return err
	}
	if err := s.index.DeleteSubject(ctx, subjectID); err != nil {
		logger.Errorw("failed to delete subject vectors", "subject_id", subjectID, "backend", s.index.Name(), "error", err.Error())
		return asErrno(err, errors.ErrVectorIndex)
	}
	if err := s.store.Subjects().Delete(ctx, teacherID, subjectID); err != nil {
		return err
	}
	s.cache.BumpVersion(ctx, subjectID)
	logger.Infow("subject deleted", "subject_id", subjectID, "teacher_id", teacherID)
	return nil
}

// DocumentService 文档查询与删除。上传由 Ingestor 处理。
type DocumentService struct {
	store store.Factory
	index store.VectorIndex
	cache *AnswerCache
}

// NewDocumentService 创建文档服务实例。
func NewDocumentService(factory store.Factory, index store.VectorIndex, cache *AnswerCache) *DocumentService {
	return &DocumentService{store: factory, index: index, cache: cache}
}

// List 按上传时间倒序列出科目文档。
func (s *DocumentService) List(ctx context.Context, teacherID, subjectID string) ([]*model.Document, error) {
	if _, err := s.store.Subjects().Get(ctx, teacherID, subjectID); err != nil {
		return nil, err
	}
	return s.store.Documents().List(ctx, teacherID, subjectID)
}

// Delete 删除文档及其分块，顺序与科目删除相同。
func (s *DocumentService) Delete(ctx context.Context, teacherID, documentID string) error {
	doc, err := s.store.Documents().Get(ctx, teacherID, documentID)
	if err != nil {
		return err
	}
	if err := s.index.DeleteDocument(ctx, documentID); err != nil {
		logger.Errorw("failed to delete document vectors", "document_id", documentID, "backend", s.index.Name(), "error", err.Error())
		return asErrno(err, errors.ErrVectorIndex)
	}
	if err := s.store.Documents().Delete(ctx, teacherID, documentID); err != nil {
		return err
	}
	s.cache.BumpVersion(ctx, doc.SubjectID)
	return nil
}
