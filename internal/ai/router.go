package ai

import (
	"context"
	"strings"

	"promptgate/internal/model"
	"promptgate/internal/prompt"
)

type chatCompleter interface {
	Complete(ctx context.Context, cfg ChatConfig, messages []ChatMessage) (string, error)
}

type contextRetriever interface {
	RetrieveContext(ctx context.Context, docID, question, credential string) (string, error)
}

type textGenerator interface {
	Generate(ctx context.Context, turns []prompt.Turn) (string, error)
}

// RouterConfig fixes the backend endpoints the router dispatches to. RAGModel
// is the completion model the retrieval chain runs on; the descriptor's name
// identifies the document, not a hosted model.
type RouterConfig struct {
	ChatBaseURL string
	RAGModel    string
}

// Router dispatches a prompt sequence to the backend strategy the descriptor's
// type selects. Backend faults never escape it as anything other than a
// *BackendError; an unknown type is ErrInvalidModelType.
type Router struct {
	cfg       RouterConfig
	completer chatCompleter
	retriever contextRetriever
	generator textGenerator
}

func NewRouter(cfg RouterConfig, completer chatCompleter, retriever contextRetriever, generator textGenerator) *Router {
	if cfg.RAGModel == "" {
		cfg.RAGModel = "gpt-4o-mini"
	}
	return &Router{
		cfg:       cfg,
		completer: completer,
		retriever: retriever,
		generator: generator,
	}
}

func (r *Router) Invoke(ctx context.Context, descriptor *model.AIModel, turns []prompt.Turn, credential, question string) (string, error) {
	switch descriptor.Type {
	case model.ModelTypeChat:
		return r.invokeChat(ctx, descriptor, turns, credential)
	case model.ModelTypeRAG:
		return r.invokeRAG(ctx, descriptor, turns, credential, question)
	case model.ModelTypeLlama:
		return r.invokeLlama(ctx, turns)
	default:
		return "", ErrInvalidModelType
	}
}

// invokeChat forwards the sequence verbatim to the hosted chat-completion
// backend under the descriptor's model name.
func (r *Router) invokeChat(ctx context.Context, descriptor *model.AIModel, turns []prompt.Turn, credential string) (string, error) {
	answer, err := r.completer.Complete(ctx, ChatConfig{
		BaseURL:   r.cfg.ChatBaseURL,
		APIKey:    credential,
		Model:     descriptor.Name,
		MaxTokens: descriptor.MaxTokens,
	}, toChatMessages(turns))
	if err != nil {
		return "", newBackendError("chat", "completion failed", err)
	}
	return answer, nil
}

func (r *Router) invokeRAG(ctx context.Context, descriptor *model.AIModel, turns []prompt.Turn, credential, question string) (string, error) {
	if descriptor.DocID == "" {
		return "", ErrMissingDocID
	}

	contextBlock, err := r.retriever.RetrieveContext(ctx, descriptor.DocID, question, credential)
	if err != nil {
		return "", newBackendError("rag", "context retrieval failed", err)
	}

	system := strings.TrimSpace(descriptor.SystemPrompt)
	if system == "" {
		system = "Answer the user's question based only on the provided context."
	}
	messages := make([]ChatMessage, 0, len(turns)+1)
	messages = append(messages, ChatMessage{
		Role:    "system",
		Content: system + "\n\nContext:\n" + contextBlock,
	})
	messages = append(messages, toChatMessages(turns)...)

	answer, err := r.completer.Complete(ctx, ChatConfig{
		BaseURL:   r.cfg.ChatBaseURL,
		APIKey:    credential,
		Model:     r.cfg.RAGModel,
		MaxTokens: descriptor.MaxTokens,
	}, messages)
	if err != nil {
		return "", newBackendError("rag", "chain completion failed", err)
	}
	return answer, nil
}

func (r *Router) invokeLlama(ctx context.Context, turns []prompt.Turn) (string, error) {
	answer, err := r.generator.Generate(ctx, turns)
	if err != nil {
		return "", newBackendError("llama", "generation failed", err)
	}
	return answer, nil
}

// toChatMessages maps internal roles to the chat backend's role vocabulary.
func toChatMessages(turns []prompt.Turn) []ChatMessage {
	messages := make([]ChatMessage, 0, len(turns))
	for _, turn := range turns {
		role := turn.Role
		if role != model.RoleAssistant {
			role = model.RoleUser
		}
		messages = append(messages, ChatMessage{Role: role, Content: turn.Content})
	}
	return messages
}
