package biz

import (
	"context"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/edurag/internal/edurag/metrics"
	"github.com/kart-io/edurag/internal/edurag/store"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
	"github.com/kart-io/edurag/pkg/utils/id"
)

// QuizUpdate 描述测验的部分更新，nil 字段保持不变。
type QuizUpdate struct {
	Title     *string
	Questions []model.QuizQuestion
}

// NoteUpdate 描述笔记的部分更新，nil 字段保持不变。
type NoteUpdate struct {
	Title   *string
	Content *string
}

// Library 管理已保存的测验和笔记，包括回收站。
type Library struct {
	store   store.Factory
	metrics *metrics.Metrics
}

// NewLibrary 创建资料库实例。
func NewLibrary(factory store.Factory, m *metrics.Metrics) *Library {
	return &Library{store: factory, metrics: m}
}

func titleOrDefault(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return model.DefaultTitle
}

// checkQuestions 归一化并校验每道题，任何一道无效都拒绝保存。
func checkQuestions(questions []model.QuizQuestion) (model.QuestionList, error) {
	if len(questions) == 0 {
		return nil, errors.ErrInvalidParam.WithMessage("questions must not be empty")
	}
	out := make(model.QuestionList, len(questions))
	for n, q := range questions {
		q.Normalize()
		if err := q.Validate(); err != nil {
			return nil, errors.ErrInvalidParam.WithMessagef("question %d: %s", n+1, err.Error())
		}
		out[n] = q
	}
	return out, nil
}

// SaveQuiz 保存测验。
func (l *Library) SaveQuiz(ctx context.Context, teacherID, subjectID, title string, questions []model.QuizQuestion) (*model.Quiz, error) {
	if _, err := l.store.Subjects().Get(ctx, teacherID, subjectID); err != nil {
		return nil, err
	}
	list, err := checkQuestions(questions)
	if err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		ID:        id.NewULID(),
		SubjectID: subjectID,
		TeacherID: teacherID,
		Title:     titleOrDefault(title),
		Questions: list,
		Status:    model.StatusActive,
	}
	if err := l.store.Quizzes().Create(ctx, quiz); err != nil {
		return nil, err
	}
	logger.Infow("quiz saved", "quiz_id", quiz.ID, "subject_id", subjectID, "questions", len(list))
	return quiz, nil
}

// UpdateQuiz 更新测验标题或题目。
func (l *Library) UpdateQuiz(ctx context.Context, teacherID, quizID string, upd QuizUpdate) (*model.Quiz, error) {
	quiz, err := l.store.Quizzes().Get(ctx, teacherID, quizID)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		quiz.Title = titleOrDefault(*upd.Title)
	}
	if upd.Questions != nil {
		list, err := checkQuestions(upd.Questions)
		if err != nil {
			return nil, err
		}
		quiz.Questions = list
	}
	quiz.UpdatedAt = time.Now()
	if err := l.store.Quizzes().Update(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// GetQuiz 返回测验，回收站中的测验同样可读。
func (l *Library) GetQuiz(ctx context.Context, teacherID, quizID string) (*model.Quiz, error) {
	return l.store.Quizzes().Get(ctx, teacherID, quizID)
}

// ListQuizzes 列出科目下未删除的测验。
func (l *Library) ListQuizzes(ctx context.Context, teacherID, subjectID string) ([]*model.Quiz, error) {
	if _, err := l.store.Subjects().Get(ctx, teacherID, subjectID); err != nil {
		return nil, err
	}
	return l.store.Quizzes().List(ctx, teacherID, subjectID, model.StatusActive)
}

// ListTrashedQuizzes 列出教师回收站中的测验，subjectID 非空时只列出该科目。
func (l *Library) ListTrashedQuizzes(ctx context.Context, teacherID, subjectID string) ([]*model.Quiz, error) {
	return l.store.Quizzes().ListTrashed(ctx, teacherID, subjectID)
}

// DeleteQuiz 默认移入回收站，permanent 为 true 时物理删除。
func (l *Library) DeleteQuiz(ctx context.Context, teacherID, quizID string, permanent bool) error {
	if permanent {
		return l.store.Quizzes().Delete(ctx, teacherID, quizID)
	}
	quiz, err := l.store.Quizzes().Get(ctx, teacherID, quizID)
	if err != nil {
		return err
	}
	now := time.Now()
	quiz.Status = model.StatusTrashed
	quiz.TrashedAt = &now
	quiz.UpdatedAt = now
	return l.store.Quizzes().Update(ctx, quiz)
}

// RestoreQuiz 从回收站恢复测验。
func (l *Library) RestoreQuiz(ctx context.Context, teacherID, quizID string) (*model.Quiz, error) {
	quiz, err := l.store.Quizzes().Get(ctx, teacherID, quizID)
	if err != nil {
		return nil, err
	}
	quiz.Status = model.StatusActive
	quiz.TrashedAt = nil
	quiz.UpdatedAt = time.Now()
	if err := l.store.Quizzes().Update(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// SaveNote 保存笔记。
func (l *Library) SaveNote(ctx context.Context, teacherID, subjectID, title, content string) (*model.Note, error) {
	if _, err := l.store.Subjects().Get(ctx, teacherID, subjectID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.ErrInvalidParam.WithMessage("content must not be empty")
	}

	note := &model.Note{
		ID:        id.NewULID(),
		SubjectID: subjectID,
		TeacherID: teacherID,
		Title:     titleOrDefault(title),
		Content:   content,
		Status:    model.StatusActive,
	}
	if err := l.store.Notes().Create(ctx, note); err != nil {
		return nil, err
	}
	logger.Infow("note saved", "note_id", note.ID, "subject_id", subjectID)
	return note, nil
}

// UpdateNote 更新笔记标题或内容。
func (l *Library) UpdateNote(ctx context.Context, teacherID, noteID string, upd NoteUpdate) (*model.Note, error) {
	note, err := l.store.Notes().Get(ctx, teacherID, noteID)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		note.Title = titleOrDefault(*upd.Title)
	}
	if upd.Content != nil {
		if strings.TrimSpace(*upd.Content) == "" {
			return nil, errors.ErrInvalidParam.WithMessage("content must not be empty")
		}
		note.Content = *upd.Content
	}
	note.UpdatedAt = time.Now()
	if err := l.store.Notes().Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// GetNote 返回笔记。
func (l *Library) GetNote(ctx context.Context, teacherID, noteID string) (*model.Note, error) {
	return l.store.Notes().Get(ctx, teacherID, noteID)
}

// ListNotes 列出科目下未删除的笔记。
func (l *Library) ListNotes(ctx context.Context, teacherID, subjectID string) ([]*model.Note, error) {
	if _, err := l.store.Subjects().Get(ctx, teacherID, subjectID); err != nil {
		return nil, err
	}
	return l.store.Notes().List(ctx, teacherID, subjectID, model.StatusActive)
}

// ListTrashedNotes 列出教师回收站中的笔记，subjectID 非空时只列出该科目。
func (l *Library) ListTrashedNotes(ctx context.Context, teacherID, subjectID string) ([]*model.Note, error) {
	return l.store.Notes().ListTrashed(ctx, teacherID, subjectID)
}

// DeleteNote 默认移入回收站，permanent 为 true 时物理删除。
func (l *Library) DeleteNote(ctx context.Context, teacherID, noteID string, permanent bool) error {
	if permanent {
		return l.store.Notes().Delete(ctx, teacherID, noteID)
	}
	note, err := l.store.Notes().Get(ctx, teacherID, noteID)
	if err != nil {
		return err
	}
	now := time.Now()
	note.Status = model.StatusTrashed
	note.TrashedAt = &now
	note.UpdatedAt = now
	return l.store.Notes().Update(ctx, note)
}

// RestoreNote 从回收站恢复笔记。
func (l *Library) RestoreNote(ctx context.Context, teacherID, noteID string) (*model.Note, error) {
	note, err := l.store.Notes().Get(ctx, teacherID, noteID)
	if err != nil {
		return nil, err
	}
	note.Status = model.StatusActive
	note.TrashedAt = nil
	note.UpdatedAt = time.Now()
	if err := l.store.Notes().Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// PurgeExpired 物理删除在回收站中超过 retention 的测验和笔记。
func (l *Library) PurgeExpired(ctx context.Context, retention time.Duration) (quizzes, notes int64, err error) {
	before := time.Now().Add(-retention)

	quizzes, err = l.store.Quizzes().PurgeTrashed(ctx, before)
	if err != nil {
		return 0, 0, err
	}
	notes, err = l.store.Notes().PurgeTrashed(ctx, before)
	if err != nil {
		return quizzes, 0, err
	}

	if l.metrics != nil {
		l.metrics.RecordPurge("quiz", quizzes)
		l.metrics.RecordPurge("note", notes)
	}
	if quizzes > 0 || notes > 0 {
		logger.Infow("purged expired trash", "quizzes", quizzes, "notes", notes, "retention", retention.String())
	}
	return quizzes, notes, nil
}
