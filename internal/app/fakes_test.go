package app

import (
	"context"
	"sort"
	"time"

	"promptgate/internal/model"
	"promptgate/internal/prompt"
)

type memChatStore struct {
	nextID  uint
	chats   map[uint]*model.Chat
	renames int
}

func newMemChatStore() *memChatStore {
	return &memChatStore{chats: make(map[uint]*model.Chat)}
}

func (s *memChatStore) Create(chat *model.Chat) error {
	s.nextID++
	chat.ID = s.nextID
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}
	cp := *chat
	s.chats[chat.ID] = &cp
	return nil
}

func (s *memChatStore) GetByIDAndUserID(chatID, userID uint) (*model.Chat, error) {
	c, ok := s.chats[chatID]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memChatStore) ListByUserID(userID uint) ([]model.Chat, error) {
	var out []model.Chat
	for _, c := range s.chats {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memChatStore) Rename(chatID uint, name string) error {
	s.renames++
	if c, ok := s.chats[chatID]; ok {
		c.Name = name
	}
	return nil
}

func (s *memChatStore) SetModel(chatID, modelID uint) error {
	if c, ok := s.chats[chatID]; ok {
		c.ModelID = modelID
	}
	return nil
}

func (s *memChatStore) DeleteByIDAndUserID(chatID, userID uint) error {
	if c, ok := s.chats[chatID]; ok && c.UserID == userID {
		delete(s.chats, chatID)
	}
	return nil
}

type memMessageStore struct {
	nextID   uint
	messages []model.Message
}

func (s *memMessageStore) Append(message *model.Message) error {
	s.nextID++
	message.ID = s.nextID
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	s.messages = append(s.messages, *message)
	return nil
}

func (s *memMessageStore) ListByChatAndUserID(chatID, userID uint) ([]model.Message, error) {
	var out []model.Message
	for _, m := range s.messages {
		if m.ChatID == chatID && m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

type memRegistry struct {
	nextID      uint
	descriptors map[uint]*model.AIModel
}

func newMemRegistry() *memRegistry {
	return &memRegistry{descriptors: make(map[uint]*model.AIModel)}
}

func (r *memRegistry) Insert(descriptor *model.AIModel) error {
	r.nextID++
	descriptor.ID = r.nextID
	cp := *descriptor
	r.descriptors[descriptor.ID] = &cp
	return nil
}

func (r *memRegistry) GetByName(name string, scopeUserID uint) (*model.AIModel, error) {
	for _, d := range r.descriptors {
		if d.Name == name && (d.Visibility || d.CreatorID == scopeUserID) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRegistry) GetByID(id uint) (*model.AIModel, error) {
	d, ok := r.descriptors[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *memRegistry) List(scopeUserID uint) ([]model.AIModel, error) {
	var out []model.AIModel
	for _, d := range r.descriptors {
		if d.Visibility || d.CreatorID == scopeUserID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memRegistry) Delete(id uint) error {
	delete(r.descriptors, id)
	return nil
}

type memDocStore struct {
	docs    map[string]*model.RAGDocument
	deleted []string
}

func newMemDocStore() *memDocStore {
	return &memDocStore{docs: make(map[string]*model.RAGDocument)}
}

func (s *memDocStore) Create(doc *model.RAGDocument) error {
	cp := *doc
	s.docs[doc.DocID] = &cp
	return nil
}

func (s *memDocStore) GetByDocID(docID string) (*model.RAGDocument, error) {
	d, ok := s.docs[docID]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *memDocStore) DeleteByDocID(docID string) error {
	delete(s.docs, docID)
	s.deleted = append(s.deleted, docID)
	return nil
}

type stubInvoker struct {
	answer     string
	err        error
	calls      int
	descriptor *model.AIModel
	turns      []prompt.Turn
	credential string
}

func (s *stubInvoker) Invoke(_ context.Context, descriptor *model.AIModel, turns []prompt.Turn, credential, _ string) (string, error) {
	s.calls++
	s.descriptor = descriptor
	s.turns = turns
	s.credential = credential
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

type memPublisher struct {
	events []model.TurnEvent
}

func (p *memPublisher) Publish(_ context.Context, event model.TurnEvent) error {
	p.events = append(p.events, event)
	return nil
}
