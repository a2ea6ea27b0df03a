// Package task holds the user-facing task items the agent works against:
// things to do, their scheduling metadata, and whatever extra structure a
// client wants to attach.
package task

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidTitle    = errors.New("task title is required")
	ErrTitleTooLong    = errors.New("task title exceeds 500 characters")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// JSONMap is a custom type for JSON columns.
type JSONMap map[string]interface{}

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return json.Marshal(map[string]interface{}{})
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONMap)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan JSONMap: not a byte slice")
	}
	var m map[string]interface{}
	if err := json.Unmarshal(bytes, &m); err != nil {
		return err
	}
	*j = m
	return nil
}

// StringList is a custom type for JSON string-array columns.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan StringList: not a byte slice")
	}
	var items []string
	if err := json.Unmarshal(bytes, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

type Task struct {
	ID            uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Title         string     `json:"title" gorm:"type:varchar(500);not null"`
	Description   string     `json:"description" gorm:"type:text"`
	Status        Status     `json:"status" gorm:"type:varchar(20);not null;default:'todo';index:idx_tasks_status"`
	Priority      Priority   `json:"priority" gorm:"type:varchar(10);not null;default:'medium'"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Tags          StringList `json:"tags" gorm:"type:json"`
	ExtraData     JSONMap    `json:"extra_data" gorm:"type:json"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	return nil
}

func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrInvalidTitle
	}
	if len(t.Title) > 500 {
		return ErrTitleTooLong
	}
	if t.Status != "" && !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if t.Priority != "" && !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	return nil
}

// MarkStatus applies a status transition. Entering completed stamps
// CompletedAt; leaving it clears the stamp.
func (t *Task) MarkStatus(status Status) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}

	if status == StatusCompleted && t.Status != StatusCompleted {
		now := time.Now()
		t.CompletedAt = &now
	}
	if status != StatusCompleted {
		t.CompletedAt = nil
	}

	t.Status = status
	return nil
}
