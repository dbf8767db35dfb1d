package app

import (
	"context"
	"errors"

	"promptgate/internal/model"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatStore is the persistence surface ChatService and AnswerService need.
// Owner-scoped lookups return (nil, nil) for both missing chats and chats
// belonging to someone else.
type ChatStore interface {
	Create(chat *model.Chat) error
	GetByIDAndUserID(chatID, userID uint) (*model.Chat, error)
	ListByUserID(userID uint) ([]model.Chat, error)
	Rename(chatID uint, name string) error
	SetModel(chatID, modelID uint) error
	DeleteByIDAndUserID(chatID, userID uint) error
}

// MessageStore is append-only: messages are never updated or removed except
// through chat deletion.
type MessageStore interface {
	Append(message *model.Message) error
	ListByChatAndUserID(chatID, userID uint) ([]model.Message, error)
}

type HistoryCache interface {
	GetHistory(ctx context.Context, chatID uint) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, chatID uint, messages []model.Message) error
	DeleteHistory(ctx context.Context, chatID uint) error
	MarkDirty(ctx context.Context, chatID uint) error
	IsDirty(ctx context.Context, chatID uint) (bool, error)
}

type ChatService struct {
	chats           ChatStore
	messages        MessageStore
	historyCache    HistoryCache
	placeholderName string
}

func NewChatService(chats ChatStore, messages MessageStore, historyCache HistoryCache, placeholderName string) *ChatService {
	if placeholderName == "" {
		placeholderName = model.PlaceholderChatName
	}
	return &ChatService{
		chats:           chats,
		messages:        messages,
		historyCache:    historyCache,
		placeholderName: placeholderName,
	}
}

// CreateChat opens a new chat under the placeholder name. The chat is renamed
// later, from the prefix of its first question.
func (s *ChatService) CreateChat(userID, modelID uint) (*model.Chat, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	chat := &model.Chat{
		UserID:  userID,
		Name:    s.placeholderName,
		ModelID: modelID,
	}
	if err := s.chats.Create(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) ListChats(userID uint) ([]model.Chat, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.chats.ListByUserID(userID)
}

// GetChatData returns the full message history of an owned chat, oldest first.
func (s *ChatService) GetChatData(userID, chatID uint) ([]model.Message, error) {
	if userID == 0 || chatID == 0 {
		return nil, ErrInvalidInput
	}

	chat, err := s.chats.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	ctx := context.Background()
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, chatID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, chatID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	messages, err := s.messages.ListByChatAndUserID(chatID, userID)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, chatID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, chatID, messages)
		}
	}
	return messages, nil
}

func (s *ChatService) DeleteChat(userID, chatID uint) error {
	if userID == 0 || chatID == 0 {
		return ErrInvalidInput
	}

	chat, err := s.chats.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return err
	}
	if chat == nil {
		return ErrChatNotFound
	}
	if err := s.chats.DeleteByIDAndUserID(chatID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(context.Background(), chatID)
	}
	return nil
}
