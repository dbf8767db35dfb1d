package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"promptgate/internal/model"
	"promptgate/internal/prompt"
)

var (
	ErrQuestionEmpty    = errors.New("question is empty")
	ErrLimitExceeded    = errors.New("chat history limit exceeded")
	ErrAnswerIncomplete = errors.New("model returned an empty answer")
)

// Invoker dispatches an assembled prompt sequence to the backend selected by
// the descriptor's type.
type Invoker interface {
	Invoke(ctx context.Context, descriptor *model.AIModel, turns []prompt.Turn, credential, question string) (string, error)
}

type TurnPublisher interface {
	Publish(ctx context.Context, event model.TurnEvent) error
}

type AnswerConfig struct {
	HistoryCeiling    int
	PlaceholderName   string
	RenamePrefixRunes int
	InvokeTimeout     time.Duration
}

// AnswerService runs one question through the full turn pipeline: resolve the
// chat and the model, persist the question, call the backend, persist the
// answer. The question is written before the backend call so a backend failure
// never loses it; the answer write tags the message with the model that
// produced it.
type AnswerService struct {
	chats        ChatStore
	messages     MessageStore
	registry     ModelRegistry
	invoker      Invoker
	historyCache HistoryCache
	publisher    TurnPublisher
	cfg          AnswerConfig
}

type AnswerInput struct {
	UserID    uint
	APIKey    string
	ChatID    uint
	ModelName string
	Question  string
}

type AnswerResult struct {
	Answer   string
	Chat     *model.Chat
	Question model.Message
	Response model.Message
}

func NewAnswerService(
	chats ChatStore,
	messages MessageStore,
	registry ModelRegistry,
	invoker Invoker,
	historyCache HistoryCache,
	publisher TurnPublisher,
	cfg AnswerConfig,
) *AnswerService {
	if cfg.HistoryCeiling <= 0 {
		cfg.HistoryCeiling = 200
	}
	if cfg.PlaceholderName == "" {
		cfg.PlaceholderName = model.PlaceholderChatName
	}
	if cfg.RenamePrefixRunes <= 0 {
		cfg.RenamePrefixRunes = 10
	}
	if cfg.InvokeTimeout <= 0 {
		cfg.InvokeTimeout = 90 * time.Second
	}
	return &AnswerService{
		chats:        chats,
		messages:     messages,
		registry:     registry,
		invoker:      invoker,
		historyCache: historyCache,
		publisher:    publisher,
		cfg:          cfg,
	}
}

func (s *AnswerService) Answer(ctx context.Context, input AnswerInput) (*AnswerResult, error) {
	if input.UserID == 0 || input.ChatID == 0 || input.ModelName == "" {
		return nil, ErrInvalidInput
	}
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrQuestionEmpty
	}

	chat, err := s.chats.GetByIDAndUserID(input.ChatID, input.UserID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	descriptor, err := s.registry.GetByName(input.ModelName, input.UserID)
	if err != nil {
		return nil, err
	}
	if descriptor == nil {
		return nil, ErrModelNotFound
	}

	if chat.Name == s.cfg.PlaceholderName {
		name := renameFromQuestion(question, s.cfg.RenamePrefixRunes)
		if err := s.chats.Rename(chat.ID, name); err != nil {
			return nil, err
		}
		chat.Name = name
	}

	if chat.ModelID != descriptor.ID {
		if err := s.chats.SetModel(chat.ID, descriptor.ID); err != nil {
			return nil, err
		}
		chat.ModelID = descriptor.ID
	}

	history, err := s.messages.ListByChatAndUserID(chat.ID, input.UserID)
	if err != nil {
		return nil, err
	}
	if len(history) > s.cfg.HistoryCeiling {
		return nil, ErrLimitExceeded
	}

	turns, err := prompt.Assemble(history, question)
	if err != nil {
		return nil, err
	}

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, chat.ID)
		_ = s.historyCache.DeleteHistory(ctx, chat.ID)
	}

	questionMessage := model.Message{
		ChatID:  chat.ID,
		UserID:  input.UserID,
		Role:    model.RoleUser,
		Content: question,
		ModelID: descriptor.ID,
	}
	if err := s.messages.Append(&questionMessage); err != nil {
		return nil, err
	}

	// The backend call runs on its own deadline, detached from the request
	// context: a client disconnect must not abandon the turn with the
	// question persisted and the answer missing.
	invokeCtx, cancel := context.WithTimeout(context.Background(), s.cfg.InvokeTimeout)
	defer cancel()

	answer, err := s.invoker.Invoke(invokeCtx, descriptor, turns, input.APIKey, question)
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrAnswerIncomplete
	}

	answerMessage := model.Message{
		ChatID:  chat.ID,
		UserID:  input.UserID,
		Role:    model.RoleAssistant,
		Content: answer,
		ModelID: descriptor.ID,
	}
	if err := s.messages.Append(&answerMessage); err != nil {
		return nil, err
	}

	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, chat.ID)
	}
	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, model.TurnEvent{
			UserID:      input.UserID,
			ChatID:      chat.ID,
			ModelID:     descriptor.ID,
			ModelName:   descriptor.Name,
			QuestionLen: len(question),
			AnswerLen:   len(answer),
			CompletedAt: time.Now(),
		})
	}

	return &AnswerResult{
		Answer:   answer,
		Chat:     chat,
		Question: questionMessage,
		Response: answerMessage,
	}, nil
}

// renameFromQuestion derives a chat name from the first question. Truncation
// counts runes, not bytes, so multibyte questions never split mid-character.
func renameFromQuestion(question string, prefixRunes int) string {
	runes := []rune(question)
	if len(runes) <= prefixRunes {
		return string(runes)
	}
	return string(runes[:prefixRunes]) + "..."
}
