package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a chat's append-only history. Rows are never updated
// or reordered after creation; (CreatedAt, ID) defines the total order.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"not null;index" json:"chat_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ModelID   uint      `gorm:"index" json:"model_id"`
	CreatedAt time.Time `json:"timestamp"`
}
