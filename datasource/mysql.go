package datasource

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

// NewMySQLStore creates a new MySQL-backed data source store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new data source in the database.
func (s *MySQLStore) Create(ctx context.Context, d *DataSource) error {
	if err := d.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		s.logger.Error(ctx, "failed to create data source", map[string]interface{}{
			"error": err.Error(),
			"name":  d.Name,
		})
		return err
	}

	s.logger.Info(ctx, "data source created", map[string]interface{}{
		"data_source_id": d.ID.String(),
		"source_type":    string(d.SourceType),
	})

	return nil
}

// GetByID retrieves a data source by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*DataSource, error) {
	var d DataSource
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&d).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDataSourceNotFound
		}
		s.logger.Error(ctx, "failed to get data source by ID", map[string]interface{}{
			"error":          err.Error(),
			"data_source_id": id.String(),
		})
		return nil, err
	}

	return &d, nil
}

// Update updates a data source with the given setters.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(d); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(d).Error; err != nil {
		s.logger.Error(ctx, "failed to update data source", map[string]interface{}{
			"error":          err.Error(),
			"data_source_id": id.String(),
		})
		return err
	}

	s.logger.Info(ctx, "data source updated", map[string]interface{}{
		"data_source_id": id.String(),
	})

	return nil
}

// Delete removes a data source by its ID.
func (s *MySQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&DataSource{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete data source", map[string]interface{}{
			"error":          result.Error.Error(),
			"data_source_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrDataSourceNotFound
	}

	s.logger.Info(ctx, "data source deleted", map[string]interface{}{
		"data_source_id": id.String(),
	})

	return nil
}

// List retrieves a paginated list of data sources matching the filter.
func (s *MySQLStore) List(ctx context.Context, filter Filter, limit, offset int) ([]*DataSource, error) {
	var sources []*DataSource
	err := s.filtered(ctx, filter).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sources).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list data sources", map[string]interface{}{
			"error":  err.Error(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, err
	}

	return sources, nil
}

// Count returns the total count of data sources matching the filter.
func (s *MySQLStore) Count(ctx context.Context, filter Filter) (int, error) {
	var count int64
	err := s.filtered(ctx, filter).
		Model(&DataSource{}).
		Count(&count).Error

	if err != nil {
		s.logger.Error(ctx, "failed to count data sources", map[string]interface{}{
			"error": err.Error(),
		})
		return 0, err
	}

	return int(count), nil
}

// RecordRun folds one execution outcome into the source's counters inside
// a transaction so concurrent runs never lose increments.
func (s *MySQLStore) RecordRun(ctx context.Context, id uuid.UUID, succeeded bool, runErr string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d DataSource
		if err := tx.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDataSourceNotFound
			}
			return err
		}

		d.RecordRun(succeeded, runErr)

		return tx.WithContext(ctx).Save(&d).Error
	})

	if err != nil {
		if !errors.Is(err, ErrDataSourceNotFound) {
			s.logger.Error(ctx, "failed to record data source run", map[string]interface{}{
				"error":          err.Error(),
				"data_source_id": id.String(),
			})
		}
		return err
	}

	s.logger.Info(ctx, "data source run recorded", map[string]interface{}{
		"data_source_id": id.String(),
		"succeeded":      succeeded,
	})

	return nil
}

func (s *MySQLStore) filtered(ctx context.Context, filter Filter) *gorm.DB {
	query := s.db.WithContext(ctx)
	if filter.SourceType != "" {
		query = query.Where("source_type = ?", filter.SourceType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return query
}

// MySQLItemStore implements the ItemStore interface using GORM and MySQL.
type MySQLItemStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLItemStore creates a new MySQL-backed collected item store.
func NewMySQLItemStore(db *gorm.DB, log logger.Logger) *MySQLItemStore {
	return &MySQLItemStore{
		db:     db,
		logger: log,
	}
}

// CreateBatch persists a batch of collected items.
func (s *MySQLItemStore) CreateBatch(ctx context.Context, items []*CollectedItem) error {
	if len(items) == 0 {
		return nil
	}

	if err := s.db.WithContext(ctx).Create(items).Error; err != nil {
		s.logger.Error(ctx, "failed to persist collected items", map[string]interface{}{
			"error": err.Error(),
			"count": len(items),
		})
		return err
	}

	s.logger.Info(ctx, "collected items persisted", map[string]interface{}{
		"count": len(items),
	})

	return nil
}

// ListBySource retrieves a paginated list of items for a data source.
func (s *MySQLItemStore) ListBySource(ctx context.Context, dataSourceID uuid.UUID, limit, offset int) ([]*CollectedItem, error) {
	var items []*CollectedItem
	err := s.db.WithContext(ctx).
		Where("data_source_id = ?", dataSourceID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list collected items", map[string]interface{}{
			"error":          err.Error(),
			"data_source_id": dataSourceID.String(),
		})
		return nil, err
	}

	return items, nil
}

// CountBySource returns the total count of items for a data source.
func (s *MySQLItemStore) CountBySource(ctx context.Context, dataSourceID uuid.UUID) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&CollectedItem{}).
		Where("data_source_id = ?", dataSourceID).
		Count(&count).Error

	if err != nil {
		s.logger.Error(ctx, "failed to count collected items", map[string]interface{}{
			"error":          err.Error(),
			"data_source_id": dataSourceID.String(),
		})
		return 0, err
	}

	return int(count), nil
}
