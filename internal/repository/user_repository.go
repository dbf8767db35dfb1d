package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"promptgate/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

// GetByAccessToken resolves a bearer credential to its user. A token that was
// overwritten by a later login no longer matches any row, which is what makes
// reissue an immediate revocation.
func (r *UserRepository) GetByAccessToken(token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	var user model.User
	if err := r.db.Where("access_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by access token failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) UpdateAccessToken(userID uint, token string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", userID).Update("access_token", token).Error; err != nil {
		return fmt.Errorf("update access token failed: %w", err)
	}
	return nil
}
