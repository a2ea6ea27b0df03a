// Package run is the registry of live agent runs. A run wraps one task
// execution of the agent loop and carries its serializable state across
// suspensions, so the HTTP surface can hand a pending browser action to
// the client and pick the run back up when the outcome arrives.
package run

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/browser-agent/agent"
)

var (
	// ErrRunNotFound is returned when a run is not found.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunNotSuspended is returned when resuming a run that has no
	// pending browser action.
	ErrRunNotSuspended = errors.New("run is not suspended")

	// ErrRunExpired is returned when a run outlived its retention window.
	ErrRunExpired = errors.New("run expired")
)

// Status is the lifecycle state of a run.
type Status string

const (
	// StatusRunning means the loop is currently driving the run.
	StatusRunning Status = "running"

	// StatusSuspended means the run awaits a browser action outcome.
	StatusSuspended Status = "suspended"

	// StatusCompleted means the run finished with a final answer.
	StatusCompleted Status = "completed"

	// StatusFailed means the run ended with an error.
	StatusFailed Status = "failed"
)

// Run is one task execution tracked by the registry. DataSourceID is Nil
// for ad hoc runs; for scheduled collection runs it ties collected items
// and run counters back to the owning data source.
type Run struct {
	ID           uuid.UUID            `json:"id"`
	DataSourceID uuid.UUID            `json:"data_source_id"`
	Status       Status               `json:"status"`
	State        agent.AgentState     `json:"state"`
	Pending      *agent.PendingAction `json:"pending,omitempty"`
	FinalText    string               `json:"final_text,omitempty"`
	Error        string               `json:"error,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	ExpiresAt    time.Time            `json:"expires_at"`
}

// Terminal reports whether the run can no longer make progress.
func (r *Run) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// IsExpired checks if the run outlived its retention window.
func (r *Run) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// Store is an in-memory run store.
type Store struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*Run
}

// NewStore creates a new in-memory run store.
func NewStore() *Store {
	return &Store{
		runs: make(map[uuid.UUID]*Run),
	}
}

// Set stores a run in the store, replacing any previous snapshot.
func (s *Store) Set(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *run
	s.runs[run.ID] = &copied
}

// Get retrieves a snapshot of a run from the store.
func (s *Store) Get(runID uuid.UUID) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[runID]
	if !exists {
		return nil, ErrRunNotFound
	}

	if run.IsExpired() {
		return nil, ErrRunExpired
	}

	copied := *run
	return &copied, nil
}

// ClaimSuspended atomically transitions a suspended run to running and
// returns its snapshot. It fails when the run is missing, expired, or in
// any other state, which is what serializes concurrent resume attempts.
func (s *Store) ClaimSuspended(runID uuid.UUID) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.runs[runID]
	if !exists {
		return nil, ErrRunNotFound
	}
	if run.IsExpired() {
		return nil, ErrRunExpired
	}
	if run.Status != StatusSuspended {
		return nil, ErrRunNotSuspended
	}

	run.Status = StatusRunning
	run.UpdatedAt = time.Now()

	copied := *run
	return &copied, nil
}

// Delete removes a run from the store.
func (s *Store) Delete(runID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
}

// Cleanup removes expired runs from the store.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, run := range s.runs {
		if now.After(run.ExpiresAt) {
			delete(s.runs, id)
			removed++
		}
	}

	return removed
}
