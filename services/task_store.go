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

// TaskStore persists tasks. Every lookup and write is scoped to an owner so
// the ownership check and the operation it guards read the same row.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	FindOwned(ctx context.Context, owner, id uuid.UUID) (models.Task, error)
	ListOwned(ctx context.Context, owner uuid.UUID, status *models.TaskStatus) ([]models.Task, error)
	Save(ctx context.Context, task *models.Task) error
	DeleteOwned(ctx context.Context, owner, id uuid.UUID) error
}

type GormTaskStore struct {
	db *database.Database
}

func NewGormTaskStore(db *database.Database) *GormTaskStore {
	return &GormTaskStore{db: db}
}

func (s *GormTaskStore) Create(ctx context.Context, task *models.Task) error {
	if err := s.db.DB.WithContext(ctx).Omit("User").Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (s *GormTaskStore) FindOwned(ctx context.Context, owner, id uuid.UUID) (models.Task, error) {
	var task models.Task
	err := s.db.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *GormTaskStore) ListOwned(ctx context.Context, owner uuid.UUID, status *models.TaskStatus) ([]models.Task, error) {
	query := s.db.DB.WithContext(ctx).Where("user_id = ?", owner)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	tasks := []models.Task{}
	if err := query.Order("created_at DESC").Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Save writes the mutable columns of task. The row must still belong to
// task.UserID.
func (s *GormTaskStore) Save(ctx context.Context, task *models.Task) error {
	result := s.db.DB.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"status":      task.Status,
			"updated_at":  task.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *GormTaskStore) DeleteOwned(ctx context.Context, owner, id uuid.UUID) error {
	result := s.db.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
