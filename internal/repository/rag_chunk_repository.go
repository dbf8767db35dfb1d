package repository

import (
	"fmt"

	"gorm.io/gorm"

	"promptgate/internal/model"
)

type RAGChunkRepository struct {
	db *gorm.DB
}

func NewRAGChunkRepository(db *gorm.DB) *RAGChunkRepository {
	return &RAGChunkRepository{db: db}
}

func (r *RAGChunkRepository) CreateBatch(chunks []model.RAGChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := r.db.Create(&chunks).Error; err != nil {
		return fmt.Errorf("create rag chunks batch failed: %w", err)
	}
	return nil
}

func (r *RAGChunkRepository) ListByDocID(docID string) ([]model.RAGChunk, error) {
	var chunks []model.RAGChunk
	if err := r.db.Where("doc_id = ?", docID).Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list rag chunks failed: %w", err)
	}
	return chunks, nil
}
