package chat

import "time"

// Conversation is one visitor's thread, created from the pre-chat form.
// Rows are immutable after creation; deletion cascades to messages.
type Conversation struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"session_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	Purpose   string    `gorm:"type:varchar(100)" json:"purpose"`
	Phone     string    `gorm:"type:varchar(32)" json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Conversation) TableName() string { return "chat_conversations" }

type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"type:varchar(64);index;not null" json:"session_id"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }

// ExactReply is an admin-curated verbatim question/answer override that
// bypasses the provider entirely. Questions are stored normalized.
type ExactReply struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Question  string    `gorm:"type:varchar(512);uniqueIndex;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

func (ExactReply) TableName() string { return "chat_exact_replies" }
