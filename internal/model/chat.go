package model

import "time"

// PlaceholderChatName is the name a chat carries until the first answered
// question renames it.
const PlaceholderChatName = "Unknown"

type Chat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	ModelID   uint      `gorm:"index" json:"model_id"`
	CreatedAt time.Time `json:"timestamp"`
}
