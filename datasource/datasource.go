// Package datasource manages the configured data sources the agent pulls
// from: which site, what instruction, how often, and the items collected
// from each run.
package datasource

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDataSourceNotFound  = errors.New("data source not found")
	ErrInvalidName         = errors.New("data source name is required")
	ErrInvalidSourceType   = errors.New("invalid data source type")
	ErrInvalidStatus       = errors.New("invalid data source status")
	ErrMissingTargetURL    = errors.New("target_url is required for browser agent data sources")
	ErrMissingInstruction  = errors.New("instruction is required for browser agent data sources")
	ErrInvalidScheduleSpan = errors.New("schedule interval must be at least one minute")
)

type SourceType string

const (
	SourceTypeBrowserAgent SourceType = "browser_agent"
	SourceTypeOAuth        SourceType = "oauth"
)

func (st SourceType) IsValid() bool {
	switch st {
	case SourceTypeBrowserAgent, SourceTypeOAuth:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusError    Status = "error"
	StatusDisabled Status = "disabled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusError, StatusDisabled:
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

type DataSource struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string     `json:"name" gorm:"type:varchar(200);not null"`
	Description string     `json:"description" gorm:"type:text"`
	SourceType  SourceType `json:"source_type" gorm:"type:varchar(20);not null;index:idx_data_sources_source_type"`
	Status      Status     `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`

	// Browser-agent sources.
	TargetURL   string `json:"target_url" gorm:"type:varchar(2048)"`
	Instruction string `json:"instruction" gorm:"type:text"`

	// Scheduling and execution tracking.
	ScheduleIntervalMinutes int        `json:"schedule_interval_minutes" gorm:"not null;default:60"`
	LastRunAt               *time.Time `json:"last_run_at,omitempty"`
	NextRunAt               *time.Time `json:"next_run_at,omitempty"`
	RunCount                int        `json:"run_count" gorm:"not null;default:0"`
	SuccessCount            int        `json:"success_count" gorm:"not null;default:0"`
	ErrorCount              int        `json:"error_count" gorm:"not null;default:0"`
	LastError               string     `json:"last_error" gorm:"type:text"`

	Config    JSONMap   `json:"config" gorm:"type:json"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *DataSource) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = StatusPending
	}
	if d.ScheduleIntervalMinutes == 0 {
		d.ScheduleIntervalMinutes = 60
	}
	return nil
}

func (d *DataSource) Validate() error {
	if d.Name == "" {
		return ErrInvalidName
	}
	if !d.SourceType.IsValid() {
		return ErrInvalidSourceType
	}
	if d.Status != "" && !d.Status.IsValid() {
		return ErrInvalidStatus
	}
	if d.ScheduleIntervalMinutes < 0 {
		return ErrInvalidScheduleSpan
	}
	if d.SourceType == SourceTypeBrowserAgent {
		if d.TargetURL == "" {
			return ErrMissingTargetURL
		}
		if d.Instruction == "" {
			return ErrMissingInstruction
		}
	}
	return nil
}

// RecordRun folds one execution outcome into the tracking counters and
// recomputes the next scheduled run.
func (d *DataSource) RecordRun(succeeded bool, runErr string) {
	now := time.Now()
	d.LastRunAt = &now
	d.RunCount++

	if succeeded {
		d.SuccessCount++
		d.LastError = ""
		if d.Status == StatusPending {
			d.Status = StatusActive
		}
	} else {
		d.ErrorCount++
		d.LastError = runErr
		d.Status = StatusError
	}

	if d.ScheduleIntervalMinutes > 0 {
		next := now.Add(time.Duration(d.ScheduleIntervalMinutes) * time.Minute)
		d.NextRunAt = &next
	}
}

// CollectedItem is one piece of data the agent extracted during a run.
type CollectedItem struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	DataSourceID uuid.UUID `json:"data_source_id" gorm:"type:char(36);index:idx_collected_items_data_source_id"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c *CollectedItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
