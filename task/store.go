package task

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows List and Count queries. Zero values mean "no filter".
type Filter struct {
	Status   Status
	Priority Priority
}

type Store interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Task, error)
	Count(ctx context.Context, filter Filter) (int, error)
}

type UpdateSetter func(*Task) error
