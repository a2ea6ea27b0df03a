package run

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/browser-agent/agent"
	"github.com/hairizuan-noorazman/browser-agent/detector"
	"github.com/hairizuan-noorazman/browser-agent/logger"
	"github.com/hairizuan-noorazman/browser-agent/storage"
)

// SourceRecorder receives the outcome of runs attributed to a data
// source. The datasource store satisfies it.
type SourceRecorder interface {
	RecordRun(ctx context.Context, id uuid.UUID, succeeded bool, runErr string) error
}

// Manager drives agent runs and keeps their registry with automatic
// cleanup. Screenshots are archived to blob storage per step so a run's
// trace can be inspected after the fact; archiving is best effort and
// never blocks or fails a run.
type Manager struct {
	loop    *agent.Loop
	store   *Store
	archive storage.BlobStorage
	sources SourceRecorder
	ttl     time.Duration
	logger  logger.Logger
	stopCh  chan struct{}
}

// NewManager creates a run manager. archive may be nil to disable
// screenshot archiving; sources may be nil when no data-source counters
// are kept.
func NewManager(loop *agent.Loop, archive storage.BlobStorage, sources SourceRecorder, ttl time.Duration, log logger.Logger) *Manager {
	return &Manager{
		loop:    loop,
		store:   NewStore(),
		archive: archive,
		sources: sources,
		ttl:     ttl,
		logger:  log,
		stopCh:  make(chan struct{}),
	}
}

// Start creates a run, drives the loop until it finishes or suspends, and
// returns the run snapshot. sourceID attributes the run (and everything it
// collects) to a data source; pass uuid.Nil for ad hoc runs.
func (m *Manager) Start(ctx context.Context, instruction, screenshot string, viewport *detector.Viewport, sourceID uuid.UUID) (*Run, error) {
	state := agent.NewState(instruction, screenshot, viewport)
	state.DataSourceID = sourceID

	now := time.Now()
	run := &Run{
		ID:           uuid.New(),
		DataSourceID: sourceID,
		Status:       StatusRunning,
		State:        state,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    now.Add(m.ttl),
	}
	m.store.Set(run)

	m.logger.Info(ctx, "run started", map[string]interface{}{
		"run_id":         run.ID,
		"data_source_id": sourceID,
		"has_screenshot": screenshot != "",
	})

	m.archiveScreenshot(ctx, run.ID, 0, screenshot)

	result, err := m.loop.Start(ctx, run.State)
	return m.finish(ctx, run, result, err)
}

// Resume continues a suspended run with the outcome of its pending
// browser action. Concurrent resumes of the same run are serialized: the
// loser sees ErrRunNotSuspended.
func (m *Manager) Resume(ctx context.Context, runID uuid.UUID, outcome agent.ToolOutcome) (*Run, error) {
	run, err := m.store.ClaimSuspended(runID)
	if err != nil {
		return nil, err
	}

	m.logger.Info(ctx, "run resumed", map[string]interface{}{
		"run_id":         runID,
		"has_screenshot": outcome.Screenshot != "",
	})

	m.archiveScreenshot(ctx, runID, len(run.State.Conversation), outcome.Screenshot)

	result, err := m.loop.Resume(ctx, run.State, run.Pending.CallID, outcome)
	return m.finish(ctx, run, result, err)
}

// Get retrieves a run snapshot by ID.
func (m *Manager) Get(runID uuid.UUID) (*Run, error) {
	return m.store.Get(runID)
}

// Trace returns the full conversation of a run for debugging.
func (m *Manager) Trace(runID uuid.UUID) ([]agent.Message, error) {
	run, err := m.store.Get(runID)
	if err != nil {
		return nil, err
	}
	return run.State.Conversation, nil
}

// Delete removes a run from the registry.
func (m *Manager) Delete(runID uuid.UUID) {
	m.store.Delete(runID)
	m.logger.Info(context.Background(), "run deleted", map[string]interface{}{
		"run_id": runID,
	})
}

// StartCleanup starts a background goroutine that periodically removes
// expired runs, including suspended runs whose client never came back.
func (m *Manager) StartCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				removed := m.store.Cleanup()
				if removed > 0 {
					m.logger.Info(context.Background(), "cleaned up expired runs", map[string]interface{}{
						"removed_count": removed,
					})
				}
			case <-m.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// StopCleanup stops the cleanup goroutine.
func (m *Manager) StopCleanup() {
	close(m.stopCh)
}

// finish folds a loop result (or error) back into the run and persists
// the new snapshot. The run's retention window restarts on every
// transition so active runs never expire mid-flight.
func (m *Manager) finish(ctx context.Context, run *Run, result *agent.Result, err error) (*Run, error) {
	now := time.Now()
	run.UpdatedAt = now
	run.ExpiresAt = now.Add(m.ttl)

	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
		run.Pending = nil
		m.store.Set(run)
		m.recordSourceRun(ctx, run)

		m.logger.Error(ctx, "run failed", map[string]interface{}{
			"run_id": run.ID,
			"error":  err.Error(),
		})
		return run, err
	}

	run.State = result.State
	if result.Finished() {
		run.Status = StatusCompleted
		run.FinalText = result.FinalText
		run.Pending = nil
	} else {
		run.Status = StatusSuspended
		run.Pending = result.Pending
	}
	m.store.Set(run)
	m.recordSourceRun(ctx, run)

	m.logger.Info(ctx, "run checkpointed", map[string]interface{}{
		"run_id": run.ID,
		"status": string(run.Status),
		"turns":  len(run.State.Conversation),
	})

	return run, nil
}

// recordSourceRun updates the owning data source's run counters when a
// run reaches a terminal state. Best effort: a failed update is logged,
// never surfaced to the caller.
func (m *Manager) recordSourceRun(ctx context.Context, run *Run) {
	if m.sources == nil || run.DataSourceID == uuid.Nil || !run.Terminal() {
		return
	}

	succeeded := run.Status == StatusCompleted
	if err := m.sources.RecordRun(ctx, run.DataSourceID, succeeded, run.Error); err != nil {
		m.logger.Error(ctx, "failed to record run on data source", map[string]interface{}{
			"run_id":         run.ID,
			"data_source_id": run.DataSourceID,
			"error":          err.Error(),
		})
	}
}

// archiveScreenshot uploads one step's screenshot to blob storage. Broken
// payloads and storage failures are logged and skipped.
func (m *Manager) archiveScreenshot(ctx context.Context, runID uuid.UUID, step int, screenshot string) {
	if m.archive == nil || screenshot == "" {
		return
	}

	raw, err := decodeScreenshot(screenshot)
	if err != nil {
		m.logger.Warn(ctx, "screenshot archive skipped, payload not decodable", map[string]interface{}{
			"run_id": runID,
			"step":   step,
			"error":  err.Error(),
		})
		return
	}

	path := fmt.Sprintf("runs/%s/step-%04d.png", runID, step)
	if err := m.archive.Upload(ctx, path, bytes.NewReader(raw)); err != nil {
		m.logger.Warn(ctx, "screenshot archive failed", map[string]interface{}{
			"run_id": runID,
			"path":   path,
			"error":  err.Error(),
		})
	}
}

// decodeScreenshot decodes a base64 screenshot, tolerating a data-URL
// prefix the way the detector does.
func decodeScreenshot(screenshot string) ([]byte, error) {
	if idx := strings.Index(screenshot, ","); idx != -1 && strings.HasPrefix(screenshot, "data:") {
		screenshot = screenshot[idx+1:]
	}
	return base64.StdEncoding.DecodeString(screenshot)
}
