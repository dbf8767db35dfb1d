package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"promptgate/internal/model"
)

type AIModelRepository struct {
	db *gorm.DB
}

func NewAIModelRepository(db *gorm.DB) *AIModelRepository {
	return &AIModelRepository{db: db}
}

func (r *AIModelRepository) Insert(descriptor *model.AIModel) error {
	if err := r.db.Create(descriptor).Error; err != nil {
		return fmt.Errorf("insert model descriptor failed: %w", err)
	}
	return nil
}

// GetByName resolves a model name for a caller: public descriptors match for
// everyone, private ones only for their creator.
func (r *AIModelRepository) GetByName(name string, scopeUserID uint) (*model.AIModel, error) {
	var descriptor model.AIModel
	err := r.db.Where("name = ? AND (visibility = ? OR creator_id = ?)", name, true, scopeUserID).
		First(&descriptor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get model by name failed: %w", err)
	}
	return &descriptor, nil
}

func (r *AIModelRepository) GetByID(id uint) (*model.AIModel, error) {
	var descriptor model.AIModel
	if err := r.db.First(&descriptor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get model by id failed: %w", err)
	}
	return &descriptor, nil
}

// List returns public descriptors plus the caller's own private ones.
func (r *AIModelRepository) List(scopeUserID uint) ([]model.AIModel, error) {
	var descriptors []model.AIModel
	err := r.db.Where("visibility = ? OR creator_id = ?", true, scopeUserID).
		Order("created_at ASC").Find(&descriptors).Error
	if err != nil {
		return nil, fmt.Errorf("list models failed: %w", err)
	}
	return descriptors, nil
}

func (r *AIModelRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.AIModel{}, id).Error; err != nil {
		return fmt.Errorf("delete model descriptor failed: %w", err)
	}
	return nil
}
