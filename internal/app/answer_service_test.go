package app

import (
	"context"
	"errors"
	"testing"

	"promptgate/internal/model"
)

type answerFixture struct {
	chats    *memChatStore
	messages *memMessageStore
	registry *memRegistry
	invoker  *stubInvoker
	events   *memPublisher
	service  *AnswerService
}

func newAnswerFixture(t *testing.T, cfg AnswerConfig) *answerFixture {
	t.Helper()
	f := &answerFixture{
		chats:    newMemChatStore(),
		messages: &memMessageStore{},
		registry: newMemRegistry(),
		invoker:  &stubInvoker{answer: "The capital of France is Paris."},
		events:   &memPublisher{},
	}
	f.service = NewAnswerService(f.chats, f.messages, f.registry, f.invoker, nil, f.events, cfg)
	return f
}

func (f *answerFixture) seedChat(t *testing.T, userID uint, name string) *model.Chat {
	t.Helper()
	chat := &model.Chat{UserID: userID, Name: name}
	if err := f.chats.Create(chat); err != nil {
		t.Fatalf("seed chat: %v", err)
	}
	return chat
}

func (f *answerFixture) seedModel(t *testing.T, descriptor model.AIModel) *model.AIModel {
	t.Helper()
	if err := f.registry.Insert(&descriptor); err != nil {
		t.Fatalf("seed model: %v", err)
	}
	return &descriptor
}

func TestAnswerAppendsOrderedTurn(t *testing.T) {
	f := newAnswerFixture(t, AnswerConfig{})
	chat := f.seedChat(t, 1, model.PlaceholderChatName)
	descriptor := f.seedModel(t, model.AIModel{Name: "gpt-4o", Type: model.ModelTypeChat, Visibility: true})

	result, err := f.service.Answer(context.Background(), AnswerInput{
		UserID:    1,
		APIKey:    "sk-test",
		ChatID:    chat.ID,
		ModelName: "gpt-4o",
		Question:  "What is the capital of France?",
	})
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if result.Answer != "The capital of France is Paris." {
		t.Fatalf("unexpected answer: %q", result.Answer)
	}

	stored, _ := f.messages.ListByChatAndUserID(chat.ID, 1)
	if len(stored) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(stored))
	}
	if stored[0].Role != model.RoleUser || stored[0].Content != "What is the capital of France?" {
		t.Fatalf("first message is not the question: %+v", stored[0])
	}
	if stored[1].Role != model.RoleAssistant || stored[1].Content != result.Answer {
		t.Fatalf("second message is not the answer: %+v", stored[1])
	}
	if stored[1].ModelID != descriptor.ID {
		t.Fatalf("answer not tagged with model id: got %d want %d", stored[1].ModelID, descriptor.ID)
	}
	if stored[0].ID >= stored[1].ID {
		t.Fatalf("question must precede answer: %d vs %d", stored[0].ID, stored[1].ID)
	}
	if f.invoker.credential != "sk-test" {
		t.Fatalf("caller credential not forwarded: %q", f.invoker.credential)
	}
}

func TestAnswerQuestionSurvivesBackendFailure(t *testing.T) {
	f := newAnswerFixture(t, AnswerConfig{})
	chat := f.seedChat(t, 1, "questions")
	f.seedModel(t, model.AIModel{Name: "gpt-4o", Type: model.ModelTypeChat, Visibility: true})
	backendErr := errors.New("upstream unavailable")
	f.invoker.err = backendErr

	_, err := f.service.Answer(context.Background(), AnswerInput{
		UserID: 1, ChatID: chat.ID, ModelName: "gpt-4o", Question: "hello?",
	})
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error, got %v", err)
	}

	stored, _ := f.messages.ListByChatAndUserID(chat.ID, 1)
	if len(stored) != 1 {
		t.Fatalf("expected exactly the question persisted, got %d messages", len(stored))
	}
	if stored[0].Role != model.RoleUser || stored[0].Content != "hello?" {
		t.Fatalf("persisted message is not the question: %+v", stored[0])
	}
}

func TestAnswerRenamesPlaceholderOnce(t *testing.T) {
	f := newAnswerFixture(t, AnswerConfig{})
	chat := f.seedChat(t, 1, model.PlaceholderChatName)
	f.seedModel(t, model.AIModel{Name: "gpt-4o", Type: model.ModelTypeChat, Visibility: true})

	if _, err := f.service.Answer(context.Background(), AnswerInput{
		UserID: 1, ChatID: chat.ID, ModelName: "gpt-4o", Question: "Explain how tides work",
	}); err != nil {
		t.Fatalf("first Answer failed: %v", err)
	}

	renamed, _ := f.chats.GetByIDAndUserID(chat.ID, 1)
	if renamed.Name != "Explain ho..." {
		t.Fatalf("unexpected chat name after rename: %q", renamed.Name)
	}

	if _, err := f.service.Answer(context.Background(), AnswerInput{
		UserID: 1, ChatID: chat.ID, ModelName: "gpt-4o", Question: "A completely different question",
	}); err != nil {
		t.Fatalf("second Answer failed: %v", err)
	}

	after, _ := f.chats.GetByIDAndUserID(chat.ID, 1)
	if after.Name != "Explain ho..." {
		t.Fatalf("chat renamed again: %q", after.Name)
	}
	if f.chats.renames != 1 {
		t.Fatalf("expected exactly one rename, got %d", f.chats.renames)
	}
}

func TestAnswerRenameCountsRunes(t *testing.T) {
	f := newAnswerFixture(t, AnswerConfig{})
	chat := f.seedChat(t, 1, model.PlaceholderChatName)
	f.seedModel(t, model.AIModel{Name: "gpt-4o", Type: model.ModelTypeChat, Visibility: true})

	if _, err := f.service.Answer(context.Background(), AnswerInput{
		UserID: 1, ChatID: chat.ID, ModelName: "gpt-4o", Question: "日本の首都はどこですか教えて",
	}); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	renamed, _ := f.chats.GetByIDAndUserID(chat.ID, 1)
	if renamed.Name != "日本の首都はどこです..." {
		t.Fatalf("multibyte rename produced %q", renamed.Name)
	}
}

func TestAnswerShortQuestionKeptWhole(t *testing.T) {
	f := newAnswerFixture(t, AnswerConfig{})
	chat := f.seedChat(t, 1, model.PlaceholderChatName)
	f.seedModel(t, model.AIModel{Name: "gpt-4o", Type: model.ModelTypeChat, Visibility: true})

	if _, err := f.service.Answer(context.Background(), AnswerInput{
		UserID: 1, ChatID: chat.ID, ModelName: "gpt-4o", Question: "hi",
	}); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	renamed, _ := f.chats.GetByIDAndUserID(chat.ID, 1)
	if renamed.Name != "hi" {
		t.Fatalf("short question should name the chat verbatim, got %q", renamed.Name)
	}
}

func TestAnswerCrossOwnerChatNotFound(t *testing.T) {
	f := newAnswerFixture(t, AnswerConfig{})
	chat := f.seedChat(t, 1, "owned by user 1")
	f.seedModel(t, model.AIModel{Name: "gpt-4o", Type: model.ModelTypeChat, Visibility: true})

	_, err := f.service.Answer(context.Background(), AnswerInput{
		UserID: 2, ChatID: chat.ID, ModelName: "gpt-4o", Question: "peek",
	})
	if !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("expected ErrChatNotFound for foreign chat, got %v", err)
	}
	if f.invoker.calls != 0 {
		t.Fatalf("backend must not be called for a foreign chat")
	}
	stored, _ := f.messages.ListByChatAndUserID(chat.ID, 1)
	if len(stored) != 0 {
		t.Fatalf("nothing may be persisted for a foreign chat")
	}
}

func TestAnswerPrivateModelHiddenFromOthers(t *testing.T) {
	f := newAnswerFixture(t, AnswerConfig{})
	chat := f.seedChat(t, 2, "user 2 chat")
	f.seedModel(t, model.AIModel{Name: "secret-tutor", Type: model.ModelTypeChat, Visibility: false, CreatorID: 1})

	_, err := f.service.Answer(context.Background(), AnswerInput{
		UserID: 2, ChatID: chat.ID, ModelName: "secret-tutor", Question: "hello",
	})
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound for private model, got %v", err)
	}
}

func TestAnswerReassociatesChatModel(t *testing.T) {
	f := newAnswerFixture(t, AnswerConfig{})
	first := f.seedModel(t, model.AIModel{Name: "gpt-4o", Type: model.ModelTypeChat, Visibility: true})
	second := f.seedModel(t, model.AIModel{Name: "llama-local", Type: model.ModelTypeLlama, Visibility: true})

	chat := f.seedChat(t, 1, "switching")
	f.chats.chats[chat.ID].ModelID = first.ID

	if _, err := f.service.Answer(context.Background(), AnswerInput{
		UserID: 1, ChatID: chat.ID, ModelName: "llama-local", Question: "switch please",
	}); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	after, _ := f.chats.GetByIDAndUserID(chat.ID, 1)
	if after.ModelID != second.ID {
		t.Fatalf("chat not reassociated: got model %d want %d", after.ModelID, second.ID)
	}
}

func TestAnswerHistoryCeiling(t *testing.T) {
	f := newAnswerFixture(t, AnswerConfig{HistoryCeiling: 4})
	chat := f.seedChat(t, 1, "long chat")
	f.seedModel(t, model.AIModel{Name: "gpt-4o", Type: model.ModelTypeChat, Visibility: true})

	for i := 0; i < 5; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		msg := model.Message{ChatID: chat.ID, UserID: 1, Role: role, Content: "turn"}
		if err := f.messages.Append(&msg); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	_, err := f.service.Answer(context.Background(), AnswerInput{
		UserID: 1, ChatID: chat.ID, ModelName: "gpt-4o", Question: "one more",
	})
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
	if f.invoker.calls != 0 {
		t.Fatalf("backend must not be called once the ceiling is hit")
	}
	stored, _ := f.messages.ListByChatAndUserID(chat.ID, 1)
	if len(stored) != 5 {
		t.Fatalf("no message may be appended past the ceiling, got %d", len(stored))
	}
}

func TestAnswerForwardsFullHistory(t *testing.T) {
	f := newAnswerFixture(t, AnswerConfig{})
	chat := f.seedChat(t, 1, "context chat")
	f.seedModel(t, model.AIModel{Name: "gpt-4o", Type: model.ModelTypeChat, Visibility: true})

	seeds := []struct{ role, content string }{
		{model.RoleUser, "first question"},
		{model.RoleAssistant, "first answer"},
	}
	for _, s := range seeds {
		msg := model.Message{ChatID: chat.ID, UserID: 1, Role: s.role, Content: s.content}
		if err := f.messages.Append(&msg); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	if _, err := f.service.Answer(context.Background(), AnswerInput{
		UserID: 1, ChatID: chat.ID, ModelName: "gpt-4o", Question: "second question",
	}); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if len(f.invoker.turns) != 3 {
		t.Fatalf("expected 3 turns sent to backend, got %d", len(f.invoker.turns))
	}
	last := f.invoker.turns[len(f.invoker.turns)-1]
	if last.Role != model.RoleUser || last.Content != "second question" {
		t.Fatalf("current question must be the final turn: %+v", last)
	}
}

func TestAnswerPublishesTurnEvent(t *testing.T) {
	f := newAnswerFixture(t, AnswerConfig{})
	chat := f.seedChat(t, 1, "events")
	descriptor := f.seedModel(t, model.AIModel{Name: "gpt-4o", Type: model.ModelTypeChat, Visibility: true})

	if _, err := f.service.Answer(context.Background(), AnswerInput{
		UserID: 1, ChatID: chat.ID, ModelName: "gpt-4o", Question: "ping",
	}); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if len(f.events.events) != 1 {
		t.Fatalf("expected one turn event, got %d", len(f.events.events))
	}
	event := f.events.events[0]
	if event.UserID != 1 || event.ChatID != chat.ID || event.ModelID != descriptor.ID {
		t.Fatalf("turn event misattributed: %+v", event)
	}
}

func TestAnswerEmptyQuestionRejected(t *testing.T) {
	f := newAnswerFixture(t, AnswerConfig{})
	chat := f.seedChat(t, 1, "empty")
	f.seedModel(t, model.AIModel{Name: "gpt-4o", Type: model.ModelTypeChat, Visibility: true})

	_, err := f.service.Answer(context.Background(), AnswerInput{
		UserID: 1, ChatID: chat.ID, ModelName: "gpt-4o", Question: "   ",
	})
	if !errors.Is(err, ErrQuestionEmpty) {
		t.Fatalf("expected ErrQuestionEmpty, got %v", err)
	}
}
