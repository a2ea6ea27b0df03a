package main

import (
	"time"

	"github.com/google/uuid"
)

// PaginatedResponse matches handlers.PaginatedResponse.
type PaginatedResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse matches handlers.ErrorResponse.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse matches handlers.SuccessResponse.
type SuccessResponse struct {
	Message string `json:"message"`
}

// RunResponse matches handlers.RunResponse.
type RunResponse struct {
	ID           string         `json:"id"`
	DataSourceID string         `json:"data_source_id,omitempty"`
	Status       string         `json:"status"`
	Pending      *PendingAction `json:"pending,omitempty"`
	FinalText    string         `json:"final_text,omitempty"`
	Error        string         `json:"error,omitempty"`
	Turns        int            `json:"turns"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
	ExpiresAt    string         `json:"expires_at"`
}

// PendingAction matches agent.PendingAction.
type PendingAction struct {
	CallID  string `json:"call_id"`
	Payload struct {
		Action            string                 `json:"action"`
		Args              map[string]interface{} `json:"args"`
		RequestScreenshot bool                   `json:"request_screenshot"`
	} `json:"payload"`
}

// TraceMessage matches agent.Message as exposed by the trace endpoint.
type TraceMessage struct {
	Type         string `json:"type"`
	Text         string `json:"text,omitempty"`
	Screenshot   string `json:"screenshot,omitempty"`
	ToolRequests []struct {
		CallID string                 `json:"call_id"`
		Name   string                 `json:"name"`
		Args   map[string]interface{} `json:"args"`
	} `json:"tool_requests,omitempty"`
	CallID string `json:"call_id,omitempty"`
}

// TraceResponse matches handlers.TraceResponse.
type TraceResponse struct {
	RunID    string         `json:"run_id"`
	Messages []TraceMessage `json:"messages"`
}

// TaskResponse is used for deserializing task responses.
type TaskResponse struct {
	ID            uuid.UUID              `json:"id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Status        string                 `json:"status"`
	Priority      string                 `json:"priority"`
	DueDate       *time.Time             `json:"due_date"`
	ScheduledDate *time.Time             `json:"scheduled_date"`
	CompletedAt   *time.Time             `json:"completed_at"`
	Tags          []string               `json:"tags"`
	ExtraData     map[string]interface{} `json:"extra_data"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// CreateTaskRequest matches handlers.CreateTaskRequest.
type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateTaskRequest matches handlers.UpdateTaskRequest.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// DataSourceResponse is used for deserializing data source responses.
type DataSourceResponse struct {
	ID                      uuid.UUID  `json:"id"`
	Name                    string     `json:"name"`
	Description             string     `json:"description"`
	SourceType              string     `json:"source_type"`
	Status                  string     `json:"status"`
	TargetURL               string     `json:"target_url"`
	Instruction             string     `json:"instruction"`
	ScheduleIntervalMinutes int        `json:"schedule_interval_minutes"`
	LastRunAt               *time.Time `json:"last_run_at"`
	NextRunAt               *time.Time `json:"next_run_at"`
	RunCount                int        `json:"run_count"`
	SuccessCount            int        `json:"success_count"`
	ErrorCount              int        `json:"error_count"`
	LastError               string     `json:"last_error"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// CollectedItemResponse is used for deserializing collected item responses.
type CollectedItemResponse struct {
	ID           uuid.UUID `json:"id"`
	DataSourceID uuid.UUID `json:"data_source_id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateTokenRequest matches handlers.CreateTokenRequest.
type CreateTokenRequest struct {
	Name           string `json:"name"`
	Scope          string `json:"scope"`
	ExpiresInHours int    `json:"expires_in_hours"`
}

// CreateTokenResponse matches handlers.CreateTokenResponse.
type CreateTokenResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Scope     string `json:"scope"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	CreatedAt string `json:"created_at"`
}

// TokenListItem matches handlers.TokenListItem.
type TokenListItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Scope     string `json:"scope"`
	ExpiresAt string `json:"expires_at"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// TokenListResponse matches handlers.TokenListResponse.
type TokenListResponse struct {
	Tokens []TokenListItem `json:"tokens"`
	Total  int             `json:"total"`
}
