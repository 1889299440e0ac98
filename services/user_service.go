package services

import (
	"context"
	"errors"
	"fmt"

	"tasklist/backend/database"
	"tasklist/backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStore persists accounts for the identity provider.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserById(ctx context.Context, id uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type GormUserStore struct {
	db *database.Database
}

func NewGormUserStore(db *database.Database) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.DB.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *GormUserStore) GetUserById(ctx context.Context, id uuid.UUID) (models.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormUserStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *GormUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := s.db.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

func (s *GormUserStore) first(ctx context.Context, query string, args ...interface{}) (models.User, error) {
	var user models.User
	if err := s.db.DB.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
