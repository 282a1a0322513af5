// Package store 提供 EduRAG 的持久化层：关系数据通过 gorm 存储，
// 向量检索通过 VectorIndex 抽象，可选 SQL 内置实现或 Milvus。
package store

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

// Factory 定义存储层入口。所有读取都带 teacherID，跨租户访问一律视为不存在。
type Factory interface {
	Subjects() SubjectStore
	Documents() DocumentStore
	Chunks() ChunkStore
	Chats() ChatStore
	Quizzes() QuizStore
	Notes() NoteStore

	// Transaction 在同一事务中执行 fn，fn 返回错误时回滚。
	Transaction(ctx context.Context, fn func(ctx context.Context, tx Factory) error) error
	// AutoMigrate 迁移表结构。
	AutoMigrate() error
	// Close 关闭存储。数据库连接由调用方持有，这里不关闭。
	Close() error
}

// SubjectStore 科目存储。
type SubjectStore interface {
	Create(ctx context.Context, subject *model.Subject) error
	Update(ctx context.Context, subject *model.Subject) error
	Get(ctx context.Context, teacherID, id string) (*model.Subject, error)
	List(ctx context.Context, teacherID string) ([]*model.Subject, error)
	// Delete 删除科目以及其下的全部文档、分块、对话、测验和笔记。
	Delete(ctx context.Context, teacherID, id string) error
	// ClaimDimension 条件更新科目的向量维度：维度未设置或相同时成功，
	// 否则返回 ErrDimensionMismatch。须在写入分块的事务内调用，更新持有的行锁
	// 保证并发的首批摄取不会写入不同维度。
	ClaimDimension(ctx context.Context, subjectID string, dim int) error
}

// DocumentStore 文档存储。
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	Get(ctx context.Context, teacherID, id string) (*model.Document, error)
	// List 按创建时间倒序返回科目下的文档。
	List(ctx context.Context, teacherID, subjectID string) ([]*model.Document, error)
	// Delete 删除文档及其分块。
	Delete(ctx context.Context, teacherID, id string) error
	CountBySubject(ctx context.Context, subjectID string) (int64, error)
}

// ChunkStore 分块存储。
type ChunkStore interface {
	CreateBatch(ctx context.Context, chunks []*model.Chunk) error
	// ListBySubject 返回科目下全部分块（含向量），按 Seq 升序。
	ListBySubject(ctx context.Context, subjectID string) ([]*model.Chunk, error)
	CountBySubject(ctx context.Context, subjectID string) (int64, error)
}

// ChatStore 对话记录存储，只追加。
type ChatStore interface {
	Create(ctx context.Context, msg *model.ChatMessage) error
	// List 按写入顺序返回对话。
	List(ctx context.Context, teacherID, subjectID string) ([]*model.ChatMessage, error)
	Clear(ctx context.Context, teacherID, subjectID string) (int64, error)
}

// QuizStore 测验存储。
type QuizStore interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	Update(ctx context.Context, quiz *model.Quiz) error
	Get(ctx context.Context, teacherID, id string) (*model.Quiz, error)
	List(ctx context.Context, teacherID, subjectID string, status model.Status) ([]*model.Quiz, error)
	// ListTrashed 列出回收站中的测验并带出科目名称，subjectID 为空时不按科目过滤。
	ListTrashed(ctx context.Context, teacherID, subjectID string) ([]*model.Quiz, error)
	Delete(ctx context.Context, teacherID, id string) error
	// PurgeTrashed 物理删除 before 之前进入回收站的测验。
	PurgeTrashed(ctx context.Context, before time.Time) (int64, error)
}

// NoteStore 笔记存储。
type NoteStore interface {
	Create(ctx context.Context, note *model.Note) error
	Update(ctx context.Context, note *model.Note) error
	Get(ctx context.Context, teacherID, id string) (*model.Note, error)
	List(ctx context.Context, teacherID, subjectID string, status model.Status) ([]*model.Note, error)
	ListTrashed(ctx context.Context, teacherID, subjectID string) ([]*model.Note, error)
	Delete(ctx context.Context, teacherID, id string) error
	PurgeTrashed(ctx context.Context, before time.Time) (int64, error)
}

// datastore implements the Factory interface.
type datastore struct {
	db *gorm.DB
}

var _ Factory = (*datastore)(nil)

// NewFactory 基于 gorm 连接创建存储工厂。
func NewFactory(db *gorm.DB) Factory {
	return &datastore{db: db}
}

func (ds *datastore) Subjects() SubjectStore   { return &subjects{ds.db} }
func (ds *datastore) Documents() DocumentStore { return &documents{ds.db} }
func (ds *datastore) Chunks() ChunkStore       { return &chunks{ds.db} }
func (ds *datastore) Chats() ChatStore         { return &chats{ds.db} }
func (ds *datastore) Quizzes() QuizStore       { return &quizzes{ds.db} }
func (ds *datastore) Notes() NoteStore         { return &notes{ds.db} }

// Transaction runs fn inside a database transaction.
func (ds *datastore) Transaction(ctx context.Context, fn func(ctx context.Context, tx Factory) error) error {
	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &datastore{db: tx})
	})
}

// AutoMigrate migrates the database schema.
func (ds *datastore) AutoMigrate() error {
	return ds.db.AutoMigrate(model.All()...)
}

// Close closes the factory.
func (ds *datastore) Close() error {
	return nil
}

// dbErr 将 gorm 错误映射为业务错误码。
func dbErr(err error, notFound *errors.Errno) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return errors.ErrDatabase.WithCause(err)
}
