package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// QuestionType is the kind of a quiz question.
type QuestionType string

const (
	QuestionMCQ        QuestionType = "mcq"
	QuestionShort      QuestionType = "short"
	QuestionLong       QuestionType = "long"
	QuestionFillBlanks QuestionType = "fill_blanks"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMCQ, QuestionShort, QuestionLong, QuestionFillBlanks:
		return true
	}
	return false
}

// QuizQuestion is one generated or edited question. Only mcq questions carry
// options, and their answer must be one of them.
type QuizQuestion struct {
	Type          QuestionType `json:"type"`
	Question      string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
}

// Validate checks the per-type rules.
func (q *QuizQuestion) Validate() error {
	if !q.Type.Valid() {
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("question text is empty")
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return errors.New("correct answer is empty")
	}

	if q.Type != QuestionMCQ {
		if len(q.Options) > 0 {
			return fmt.Errorf("%s question must not carry options", q.Type)
		}
		return nil
	}

	if len(q.Options) < 2 {
		return fmt.Errorf("mcq question needs at least 2 options, got %d", len(q.Options))
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == q.CorrectAnswer {
			return nil
		}
	}
	return errors.New("mcq correct answer is not one of the options")
}

// Normalize trims whitespace and drops blank options.
func (q *QuizQuestion) Normalize() {
	q.Type = QuestionType(strings.ToLower(strings.TrimSpace(string(q.Type))))
	q.Question = strings.TrimSpace(q.Question)
	q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
	if q.Type != QuestionMCQ {
		q.Options = nil
		return
	}
	opts := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		if o = strings.TrimSpace(o); o != "" {
			opts = append(opts, o)
		}
	}
	q.Options = opts

	// 模型有时只给出选项字母
	if len(q.CorrectAnswer) == 1 && !q.hasOption(q.CorrectAnswer) {
		idx := int(strings.ToUpper(q.CorrectAnswer)[0]) - 'A'
		if idx >= 0 && idx < len(q.Options) {
			q.CorrectAnswer = q.Options[idx]
		}
	}
}

func (q *QuizQuestion) hasOption(s string) bool {
	for _, o := range q.Options {
		if o == s {
			return true
		}
	}
	return false
}

// Status is the lifecycle state of saved quizzes and notes.
type Status string

const (
	StatusActive  Status = "active"
	StatusTrashed Status = "trashed"
)

// DefaultTitle is used when a quiz or note is saved without a title.
const DefaultTitle = "General"

// Quiz is a saved set of questions.
type Quiz struct {
	ID        string       `json:"id" gorm:"primaryKey;type:varchar(64)"`
	SubjectID string       `json:"subject_id" gorm:"type:varchar(64);index;not null"`
	TeacherID string       `json:"teacher_id" gorm:"type:varchar(128);index;not null"`
	Title     string       `json:"title" gorm:"type:varchar(255);not null"`
	Questions QuestionList `json:"questions" gorm:"type:text;not null"`
	Status    Status       `json:"status" gorm:"type:varchar(16);index;default:'active'"`
	TrashedAt *time.Time   `json:"trashed_at,omitempty"`
	CreatedAt time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"autoUpdateTime"`

	// SubjectName is filled by trash listings only.
	SubjectName string `json:"subject_name,omitempty" gorm:"->;-:migration"`
}

// TableName specifies the table name for Quiz.
func (Quiz) TableName() string {
	return "quizzes"
}

// Note is a saved set of study notes in Markdown.
type Note struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(64)"`
	SubjectID string     `json:"subject_id" gorm:"type:varchar(64);index;not null"`
	TeacherID string     `json:"teacher_id" gorm:"type:varchar(128);index;not null"`
	Title     string     `json:"title" gorm:"type:varchar(255);not null"`
	Content   string     `json:"content" gorm:"type:text;not null"`
	Status    Status     `json:"status" gorm:"type:varchar(16);index;default:'active'"`
	TrashedAt *time.Time `json:"trashed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// SubjectName is filled by trash listings only.
	SubjectName string `json:"subject_name,omitempty" gorm:"->;-:migration"`
}

// TableName specifies the table name for Note.
func (Note) TableName() string {
	return "notes"
}
