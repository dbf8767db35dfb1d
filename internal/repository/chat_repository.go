package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"promptgate/internal/model"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(chat *model.Chat) error {
	if err := r.db.Create(chat).Error; err != nil {
		return fmt.Errorf("create chat failed: %w", err)
	}
	return nil
}

// GetByIDAndUserID is owner-scoped: a chat that exists but belongs to another
// user resolves to (nil, nil), same as one that does not exist.
func (r *ChatRepository) GetByIDAndUserID(chatID, userID uint) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.Where("id = ? AND user_id = ?", chatID, userID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat failed: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepository) ListByUserID(userID uint) ([]model.Chat, error) {
	var chats []model.Chat
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats failed: %w", err)
	}
	return chats, nil
}

func (r *ChatRepository) Rename(chatID uint, name string) error {
	if err := r.db.Model(&model.Chat{}).Where("id = ?", chatID).Update("name", name).Error; err != nil {
		return fmt.Errorf("rename chat failed: %w", err)
	}
	return nil
}

func (r *ChatRepository) SetModel(chatID, modelID uint) error {
	if err := r.db.Model(&model.Chat{}).Where("id = ?", chatID).Update("model_id", modelID).Error; err != nil {
		return fmt.Errorf("set chat model failed: %w", err)
	}
	return nil
}

// DeleteByIDAndUserID removes the chat and its message log in one transaction.
func (r *ChatRepository) DeleteByIDAndUserID(chatID, userID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ? AND user_id = ?", chatID, userID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", chatID, userID).Delete(&model.Chat{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete chat failed: %w", err)
	}
	return nil
}
