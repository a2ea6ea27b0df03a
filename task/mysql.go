package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hairizuan-noorazman/browser-agent/logger"
)

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed task store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new task in the database.
func (s *MySQLStore) Create(ctx context.Context, t *Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		s.logger.Error(ctx, "failed to create task", map[string]interface{}{
			"error": err.Error(),
			"title": t.Title,
		})
		return err
	}

	s.logger.Info(ctx, "task created", map[string]interface{}{
		"task_id": t.ID.String(),
		"status":  string(t.Status),
	})

	return nil
}

// GetByID retrieves a task by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var t Task
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&t).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error(ctx, "failed to get task by ID", map[string]interface{}{
			"error":   err.Error(),
			"task_id": id.String(),
		})
		return nil, err
	}

	return &t, nil
}

// Update updates a task with the given setters.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(t); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		s.logger.Error(ctx, "failed to update task", map[string]interface{}{
			"error":   err.Error(),
			"task_id": id.String(),
		})
		return err
	}

	s.logger.Info(ctx, "task updated", map[string]interface{}{
		"task_id": id.String(),
	})

	return nil
}

// Delete removes a task by its ID.
func (s *MySQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&Task{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete task", map[string]interface{}{
			"error":   result.Error.Error(),
			"task_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}

	s.logger.Info(ctx, "task deleted", map[string]interface{}{
		"task_id": id.String(),
	})

	return nil
}

// List retrieves a paginated list of tasks matching the filter.
func (s *MySQLStore) List(ctx context.Context, filter Filter, limit, offset int) ([]*Task, error) {
	var tasks []*Task
	err := s.filtered(ctx, filter).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tasks).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list tasks", map[string]interface{}{
			"error":  err.Error(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, err
	}

	return tasks, nil
}

// Count returns the total count of tasks matching the filter.
func (s *MySQLStore) Count(ctx context.Context, filter Filter) (int, error) {
	var count int64
	err := s.filtered(ctx, filter).
		Model(&Task{}).
		Count(&count).Error

	if err != nil {
		s.logger.Error(ctx, "failed to count tasks", map[string]interface{}{
			"error": err.Error(),
		})
		return 0, err
	}

	return int(count), nil
}

func (s *MySQLStore) filtered(ctx context.Context, filter Filter) *gorm.DB {
	query := s.db.WithContext(ctx)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	return query
}
