package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"promptgate/internal/model"
)

type RAGDocumentRepository struct {
	db *gorm.DB
}

func NewRAGDocumentRepository(db *gorm.DB) *RAGDocumentRepository {
	return &RAGDocumentRepository{db: db}
}

func (r *RAGDocumentRepository) Create(doc *model.RAGDocument) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create rag document failed: %w", err)
	}
	return nil
}

func (r *RAGDocumentRepository) GetByDocID(docID string) (*model.RAGDocument, error) {
	var doc model.RAGDocument
	if err := r.db.Where("doc_id = ?", docID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rag document failed: %w", err)
	}
	return &doc, nil
}

// DeleteByDocID removes the document record and its chunk index together.
func (r *RAGDocumentRepository) DeleteByDocID(docID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doc_id = ?", docID).Delete(&model.RAGChunk{}).Error; err != nil {
			return err
		}
		return tx.Where("doc_id = ?", docID).Delete(&model.RAGDocument{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete rag document failed: %w", err)
	}
	return nil
}
