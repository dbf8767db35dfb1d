package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"promptgate/internal/model"
	"promptgate/internal/prompt"
)

type stubCompleter struct {
	lastCfg      ChatConfig
	lastMessages []ChatMessage
	answer       string
	err          error
}

func (s *stubCompleter) Complete(_ context.Context, cfg ChatConfig, messages []ChatMessage) (string, error) {
	s.lastCfg = cfg
	s.lastMessages = messages
	return s.answer, s.err
}

type stubRetriever struct {
	lastDocID string
	context   string
	err       error
}

func (s *stubRetriever) RetrieveContext(_ context.Context, docID, _, _ string) (string, error) {
	s.lastDocID = docID
	return s.context, s.err
}

type stubGenerator struct {
	called bool
	answer string
	err    error
}

func (s *stubGenerator) Generate(_ context.Context, _ []prompt.Turn) (string, error) {
	s.called = true
	return s.answer, s.err
}

func newTestRouter(completer *stubCompleter, retriever *stubRetriever, generator *stubGenerator) *Router {
	return NewRouter(RouterConfig{ChatBaseURL: "https://llm.test/v1", RAGModel: "gpt-4o-mini"}, completer, retriever, generator)
}

func TestInvokeChatForwardsSequence(t *testing.T) {
	completer := &stubCompleter{answer: "Paris"}
	router := newTestRouter(completer, &stubRetriever{}, &stubGenerator{})

	turns := []prompt.Turn{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "user", Content: "capital of France?"},
	}
	descriptor := &model.AIModel{Name: "gpt-4", Type: model.ModelTypeChat, MaxTokens: 256}

	answer, err := router.Invoke(context.Background(), descriptor, turns, "sk-user", "capital of France?")
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if answer != "Paris" {
		t.Errorf("answer = %q, want Paris", answer)
	}
	if completer.lastCfg.Model != "gpt-4" || completer.lastCfg.APIKey != "sk-user" {
		t.Errorf("completion config = %+v, want descriptor model and caller credential", completer.lastCfg)
	}
	if completer.lastCfg.MaxTokens != 256 {
		t.Errorf("MaxTokens = %d, want 256", completer.lastCfg.MaxTokens)
	}
	if len(completer.lastMessages) != len(turns) {
		t.Fatalf("forwarded %d messages, want %d", len(completer.lastMessages), len(turns))
	}
	for i, turn := range turns {
		if completer.lastMessages[i].Content != turn.Content {
			t.Errorf("message %d content = %q, want %q", i, completer.lastMessages[i].Content, turn.Content)
		}
	}
}

func TestInvokeRAGUsesRetrievalStrategy(t *testing.T) {
	completer := &stubCompleter{answer: "grounded answer"}
	retriever := &stubRetriever{context: "retrieved passage"}
	generator := &stubGenerator{}
	router := newTestRouter(completer, retriever, generator)

	// Name resembling a chat model must not bypass type-based dispatch.
	descriptor := &model.AIModel{
		Name:         "gpt-4",
		Type:         model.ModelTypeRAG,
		DocID:        "doc-123",
		SystemPrompt: "Answer from the handbook.",
	}

	answer, err := router.Invoke(context.Background(), descriptor, []prompt.Turn{{Role: "user", Content: "q"}}, "sk-user", "q")
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if answer != "grounded answer" {
		t.Errorf("answer = %q", answer)
	}
	if retriever.lastDocID != "doc-123" {
		t.Errorf("retriever doc id = %q, want doc-123", retriever.lastDocID)
	}
	if generator.called {
		t.Error("llama generator must not run for rag_model")
	}
	if completer.lastCfg.Model != "gpt-4o-mini" {
		t.Errorf("rag completion model = %q, want router's chain model", completer.lastCfg.Model)
	}
	system := completer.lastMessages[0]
	if system.Role != "system" || !strings.Contains(system.Content, "retrieved passage") {
		t.Errorf("system message = %+v, want retrieved context embedded", system)
	}
	if !strings.Contains(system.Content, "Answer from the handbook.") {
		t.Error("descriptor system prompt missing from system message")
	}
}

func TestInvokeRAGRequiresDocID(t *testing.T) {
	router := newTestRouter(&stubCompleter{}, &stubRetriever{}, &stubGenerator{})
	descriptor := &model.AIModel{Name: "handbook", Type: model.ModelTypeRAG}

	_, err := router.Invoke(context.Background(), descriptor, nil, "sk", "q")
	if !errors.Is(err, ErrMissingDocID) {
		t.Fatalf("got err %v, want ErrMissingDocID", err)
	}
}

func TestInvokeLlamaDispatch(t *testing.T) {
	generator := &stubGenerator{answer: "streamed text"}
	router := newTestRouter(&stubCompleter{}, &stubRetriever{}, generator)
	descriptor := &model.AIModel{Name: "llama-70b", Type: model.ModelTypeLlama}

	answer, err := router.Invoke(context.Background(), descriptor, []prompt.Turn{{Role: "user", Content: "hi"}}, "sk", "hi")
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if answer != "streamed text" {
		t.Errorf("answer = %q", answer)
	}
	if !generator.called {
		t.Error("generator was not invoked")
	}
}

func TestInvokeUnknownTypeFails(t *testing.T) {
	router := newTestRouter(&stubCompleter{}, &stubRetriever{}, &stubGenerator{})
	descriptor := &model.AIModel{Name: "x", Type: model.ModelType("experimental")}

	_, err := router.Invoke(context.Background(), descriptor, nil, "sk", "q")
	if !errors.Is(err, ErrInvalidModelType) {
		t.Fatalf("got err %v, want ErrInvalidModelType", err)
	}
}

func TestBackendFaultsWrappedAsBackendError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("401 unauthorized")}
	router := newTestRouter(completer, &stubRetriever{}, &stubGenerator{})
	descriptor := &model.AIModel{Name: "gpt-4", Type: model.ModelTypeChat}

	_, err := router.Invoke(context.Background(), descriptor, []prompt.Turn{{Role: "user", Content: "q"}}, "bad-key", "q")
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("got err %T, want *BackendError", err)
	}
	if !strings.Contains(backendErr.Error(), "401 unauthorized") {
		t.Errorf("backend error does not carry the cause: %v", backendErr)
	}
}

func TestFlattenDialogueFormat(t *testing.T) {
	turns := []prompt.Turn{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
		{Role: "user", Content: "tell me more"},
	}
	flat := FlattenDialogue("You are a helpful assistant.", turns)

	want := "You are a helpful assistant.\n\n" +
		"User: hello\n\n" +
		"Assistant: hi there\n\n" +
		"User: tell me more\n\n" +
		"Assistant: "
	if flat != want {
		t.Errorf("flattened dialogue:\n%q\nwant:\n%q", flat, want)
	}
}
