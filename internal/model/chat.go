package model

import "time"

// ChatRole is the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a subject's conversation history.
type ChatMessage struct {
	Seq       int64      `json:"-" gorm:"primaryKey;autoIncrement"`
	ID        string     `json:"id" gorm:"type:varchar(64);uniqueIndex;not null"`
	SubjectID string     `json:"subject_id" gorm:"type:varchar(64);index:idx_chat_owner;not null"`
	TeacherID string     `json:"teacher_id" gorm:"type:varchar(128);index:idx_chat_owner;not null"`
	Role      ChatRole   `json:"role" gorm:"type:varchar(16);not null"`
	Content   string     `json:"content" gorm:"type:text;not null"`
	Sources   SourceList `json:"sources,omitempty" gorm:"type:text"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for ChatMessage.
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// All returns every persisted model, in migration order.
func All() []any {
	return []any{
		&Subject{},
		&Document{},
		&Chunk{},
		&ChatMessage{},
		&Quiz{},
		&Note{},
	}
}
