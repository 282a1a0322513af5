package model

import (
	"database/sql/driver"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/kart-io/edurag/pkg/utils/json"
)

// GormDBDataType picks the binary column type of each dialect.
func (Vector) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "bytea"
	case "mysql":
		return "longblob"
	default:
		return "blob"
	}
}

// Value implements driver.Valuer.
func (v Vector) Value() (driver.Value, error) {
	return v.Encode(), nil
}

// Scan implements sql.Scanner.
func (v *Vector) Scan(src any) error {
	b, err := bytesOf(src)
	if err != nil {
		return err
	}
	decoded, err := DecodeVector(b)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// SourceList is a JSON column of retrieved sources.
type SourceList []RetrievedSource

// Value implements driver.Valuer.
func (s SourceList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal([]RetrievedSource(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *SourceList) Scan(src any) error {
	if src == nil {
		*s = nil
		return nil
	}
	b, err := bytesOf(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, (*[]RetrievedSource)(s))
}

// QuestionList is a JSON column of quiz questions.
type QuestionList []QuizQuestion

// Value implements driver.Valuer.
func (q QuestionList) Value() (driver.Value, error) {
	if q == nil {
		q = QuestionList{}
	}
	b, err := json.Marshal([]QuizQuestion(q))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (q *QuestionList) Scan(src any) error {
	if src == nil {
		*q = QuestionList{}
		return nil
	}
	b, err := bytesOf(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, (*[]QuizQuestion)(q))
}

func bytesOf(src any) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", src)
	}
}
