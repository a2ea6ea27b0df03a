package datasource

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows List and Count queries. Zero values mean "no filter".
type Filter struct {
	SourceType SourceType
	Status     Status
}

type Store interface {
	Create(ctx context.Context, source *DataSource) error
	GetByID(ctx context.Context, id uuid.UUID) (*DataSource, error)
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*DataSource, error)
	Count(ctx context.Context, filter Filter) (int, error)
	RecordRun(ctx context.Context, id uuid.UUID, succeeded bool, runErr string) error
}

// ItemStore persists the data the agent collects during runs.
type ItemStore interface {
	CreateBatch(ctx context.Context, items []*CollectedItem) error
	ListBySource(ctx context.Context, dataSourceID uuid.UUID, limit, offset int) ([]*CollectedItem, error)
	CountBySource(ctx context.Context, dataSourceID uuid.UUID) (int, error)
}

type UpdateSetter func(*DataSource) error
