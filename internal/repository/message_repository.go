package repository

import (
	"fmt"

	"gorm.io/gorm"

	"promptgate/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append inserts one message row. The store is append-only: there is no update
// or delete of individual messages anywhere in this repository.
func (r *MessageRepository) Append(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("append message failed: %w", err)
	}
	return nil
}

// ListByChatAndUserID returns the full owner-scoped history in creation order.
// ID breaks ties for rows created within the same timestamp granularity.
func (r *MessageRepository) ListByChatAndUserID(chatID, userID uint) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("chat_id = ? AND user_id = ?", chatID, userID).
		Order("created_at ASC, id ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}
