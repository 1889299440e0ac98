package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the completion state of a task.
type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskComplete TaskStatus = "complete"
)

// TaskStatuses lists every representable status.
var TaskStatuses = []TaskStatus{TaskPending, TaskComplete}

func (s TaskStatus) Valid() bool {
	return s == TaskPending || s == TaskComplete
}

// ParseTaskStatus returns the status named by value, or false when value is
// not one of TaskStatuses.
func ParseTaskStatus(value string) (TaskStatus, bool) {
	status := TaskStatus(value)
	return status, status.Valid()
}

// Task is a to-do item owned by exactly one user. The owner is never
// serialized: every response goes to the owner.
type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_tasks_user_created,priority:1" json:"-"`
	User        *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"size:10;not null;index;check:chk_tasks_status,status IN ('pending','complete')" json:"status"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime:false;index:idx_tasks_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
}

// OwnedBy reports whether principal may see and mutate the task.
func (t Task) OwnedBy(principal Principal) bool {
	return t.UserID == principal.UserID
}
