package services

import (
	"context"
	"time"

	"tasklist/backend/models"

	"github.com/google/uuid"
)

type TaskServiceInterface interface {
	GetTasks(ctx context.Context, principal models.Principal, status string) ([]models.Task, error)
	CreateTask(ctx context.Context, principal models.Principal, input TaskInput) (models.Task, error)
	GetTaskById(ctx context.Context, principal models.Principal, id string) (models.Task, error)
	UpdateTask(ctx context.Context, principal models.Principal, id string, input TaskInput) (models.Task, error)
	DeleteTask(ctx context.Context, principal models.Principal, id string) error
	MarkTaskComplete(ctx context.Context, principal models.Principal, id string) (models.Task, error)
	MarkTaskIncomplete(ctx context.Context, principal models.Principal, id string) (models.Task, error)
}

// TaskService exposes a principal's tasks. A task that exists but belongs to
// someone else is reported as ErrTaskNotFound, never as forbidden.
type TaskService struct {
	store TaskStore
	now   func() time.Time
}

func NewTaskService(store TaskStore) *TaskService {
	return &TaskService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// GetTasks lists the principal's tasks, newest first. An empty status means
// no filter; a status that is not a known value matches nothing.
func (s *TaskService) GetTasks(ctx context.Context, principal models.Principal, status string) ([]models.Task, error) {
	var filter *models.TaskStatus
	if status != "" {
		parsed, ok := models.ParseTaskStatus(status)
		if !ok {
			return []models.Task{}, nil
		}
		filter = &parsed
	}
	return s.store.ListOwned(ctx, principal.UserID, filter)
}

func (s *TaskService) CreateTask(ctx context.Context, principal models.Principal, input TaskInput) (models.Task, error) {
	changes, err := validateNewTask(input)
	if err != nil {
		return models.Task{}, err
	}

	now := s.now()
	task := models.Task{
		ID:        uuid.New(),
		UserID:    principal.UserID,
		Status:    models.TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	changes.apply(&task)

	if err := s.store.Create(ctx, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskService) GetTaskById(ctx context.Context, principal models.Principal, id string) (models.Task, error) {
	return s.resolve(ctx, principal, id)
}

// UpdateTask applies only the supplied fields. Ownership is resolved before
// the input is validated, so an unknown id is a not-found even with a bad body.
func (s *TaskService) UpdateTask(ctx context.Context, principal models.Principal, id string, input TaskInput) (models.Task, error) {
	task, err := s.resolve(ctx, principal, id)
	if err != nil {
		return models.Task{}, err
	}

	changes, err := validateTaskUpdate(input)
	if err != nil {
		return models.Task{}, err
	}
	changes.apply(&task)

	return s.save(ctx, task)
}

func (s *TaskService) DeleteTask(ctx context.Context, principal models.Principal, id string) error {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return ErrTaskNotFound
	}
	return s.store.DeleteOwned(ctx, principal.UserID, taskID)
}

func (s *TaskService) MarkTaskComplete(ctx context.Context, principal models.Principal, id string) (models.Task, error) {
	return s.setStatus(ctx, principal, id, models.TaskComplete)
}

func (s *TaskService) MarkTaskIncomplete(ctx context.Context, principal models.Principal, id string) (models.Task, error) {
	return s.setStatus(ctx, principal, id, models.TaskPending)
}

// setStatus always writes, so repeating a transition still refreshes
// updated_at.
func (s *TaskService) setStatus(ctx context.Context, principal models.Principal, id string, status models.TaskStatus) (models.Task, error) {
	task, err := s.resolve(ctx, principal, id)
	if err != nil {
		return models.Task{}, err
	}
	task.Status = status
	return s.save(ctx, task)
}

func (s *TaskService) resolve(ctx context.Context, principal models.Principal, id string) (models.Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return models.Task{}, ErrTaskNotFound
	}

	task, err := s.store.FindOwned(ctx, principal.UserID, taskID)
	if err != nil {
		return models.Task{}, err
	}
	if !task.OwnedBy(principal) {
		return models.Task{}, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) save(ctx context.Context, task models.Task) (models.Task, error) {
	task.UpdatedAt = s.now()
	if err := s.store.Save(ctx, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}
