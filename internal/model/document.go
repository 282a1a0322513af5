// Package model provides the persisted entities of the EduRAG service.
package model

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Subject is a course owned by one teacher. Documents, chats, quizzes and
// notes all belong to exactly one subject.
type Subject struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	TeacherID   string    `json:"teacher_id" gorm:"type:varchar(128);index;not null"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null"`
	Description string    `json:"description" gorm:"type:text"`
	// EmbeddingDimension is fixed by the first ingested document and reset
	// once the subject has no chunks left.
	EmbeddingDimension int       `json:"embedding_dimension" gorm:"default:0"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Subject.
func (Subject) TableName() string {
	return "subjects"
}

// Document is an uploaded PDF after ingestion.
type Document struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	SubjectID  string    `json:"subject_id" gorm:"type:varchar(64);index;not null"`
	TeacherID  string    `json:"teacher_id" gorm:"type:varchar(128);index;not null"`
	Filename   string    `json:"filename" gorm:"type:varchar(512);not null"`
	PageCount  int       `json:"page_count" gorm:"default:0"`
	ChunkCount int       `json:"chunk_count" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Document.
func (Document) TableName() string {
	return "documents"
}

// Chunk is a contiguous span of one page's text together with its embedding.
// Seq is assigned by the database on insert and only ever grows, so it
// orders chunks by insertion.
type Chunk struct {
	Seq        int64     `json:"-" gorm:"primaryKey;autoIncrement"`
	ID         string    `json:"id" gorm:"type:varchar(64);uniqueIndex;not null"`
	DocumentID string    `json:"document_id" gorm:"type:varchar(64);index;not null"`
	SubjectID  string    `json:"subject_id" gorm:"type:varchar(64);index;not null"`
	PageNumber int       `json:"page_number" gorm:"not null"`
	Ordinal    int       `json:"ordinal" gorm:"not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	Embedding  Vector    `json:"-"`
	Dimension  int       `json:"-" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Chunk.
func (Chunk) TableName() string {
	return "document_chunks"
}

// RetrievedSource is a chunk returned by similarity search.
type RetrievedSource struct {
	ChunkID    string  `json:"chunk_id,omitempty"`
	PageNumber int     `json:"page_number"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content"`
}

// Vector is an embedding stored as little-endian float32 bytes.
type Vector []float32

// Encode returns the binary form of v.
func (v Vector) Encode() []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector parses the binary form produced by Encode.
func DecodeVector(b []byte) (Vector, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(b))
	}
	v := make(Vector, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
