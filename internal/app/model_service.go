package app

import (
	"errors"

	"promptgate/internal/model"
)

var (
	ErrModelNotFound  = errors.New("model not found")
	ErrModelNameTaken = errors.New("model name already exists")
)

// ModelRegistry stores model descriptors. Name lookups and listings see public
// descriptors plus the caller's private ones.
type ModelRegistry interface {
	Insert(descriptor *model.AIModel) error
	GetByName(name string, scopeUserID uint) (*model.AIModel, error)
	GetByID(id uint) (*model.AIModel, error)
	List(scopeUserID uint) ([]model.AIModel, error)
	Delete(id uint) error
}

type DocumentStore interface {
	Create(doc *model.RAGDocument) error
	GetByDocID(docID string) (*model.RAGDocument, error)
	DeleteByDocID(docID string) error
}

type ModelService struct {
	registry ModelRegistry
	docs     DocumentStore
}

func NewModelService(registry ModelRegistry, docs DocumentStore) *ModelService {
	return &ModelService{registry: registry, docs: docs}
}

func (s *ModelService) ListModels(userID uint) ([]model.AIModel, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.registry.List(userID)
}

func (s *ModelService) GetModelInfo(userID uint, name string) (*model.AIModel, error) {
	if userID == 0 || name == "" {
		return nil, ErrInvalidInput
	}
	descriptor, err := s.registry.GetByName(name, userID)
	if err != nil {
		return nil, err
	}
	if descriptor == nil {
		return nil, ErrModelNotFound
	}
	return descriptor, nil
}

// DeleteModel removes a descriptor the caller created. For retrieval models the
// backing document and its chunks go with it. Descriptors owned by other users
// are reported as not found rather than forbidden.
func (s *ModelService) DeleteModel(userID, modelID uint) error {
	if userID == 0 || modelID == 0 {
		return ErrInvalidInput
	}

	descriptor, err := s.registry.GetByID(modelID)
	if err != nil {
		return err
	}
	if descriptor == nil || descriptor.CreatorID != userID {
		return ErrModelNotFound
	}

	if descriptor.Type == model.ModelTypeRAG && descriptor.DocID != "" && s.docs != nil {
		if err := s.docs.DeleteByDocID(descriptor.DocID); err != nil {
			return err
		}
	}
	return s.registry.Delete(modelID)
}
