package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/browser-agent/agent"
	"github.com/hairizuan-noorazman/browser-agent/detector"
	"github.com/hairizuan-noorazman/browser-agent/logger"
	"github.com/hairizuan-noorazman/browser-agent/run"
)

// RunService drives agent runs. *run.Manager satisfies it.
type RunService interface {
	Start(ctx context.Context, instruction, screenshot string, viewport *detector.Viewport, sourceID uuid.UUID) (*run.Run, error)
	Resume(ctx context.Context, runID uuid.UUID, outcome agent.ToolOutcome) (*run.Run, error)
	Get(runID uuid.UUID) (*run.Run, error)
	Trace(runID uuid.UUID) ([]agent.Message, error)
	Delete(runID uuid.UUID)
}

// RunHandler handles agent run requests.
type RunHandler struct {
	runs   RunService
	logger logger.Logger
}

// NewRunHandler creates a new run handler.
func NewRunHandler(runs RunService, log logger.Logger) *RunHandler {
	return &RunHandler{
		runs:   runs,
		logger: log,
	}
}

// StartRunRequest represents a run creation request. The screenshot is the
// current page as base64 PNG; a data URL prefix is tolerated. DataSourceID
// attributes the run and its collected items to a data source.
type StartRunRequest struct {
	Instruction  string             `json:"instruction"`
	Screenshot   string             `json:"screenshot,omitempty"`
	Viewport     *detector.Viewport `json:"viewport,omitempty"`
	DataSourceID string             `json:"data_source_id,omitempty"`
}

// ResumeRunRequest carries the outcome of the pending browser action back
// to a suspended run.
type ResumeRunRequest struct {
	Result     string             `json:"result"`
	Screenshot string             `json:"screenshot,omitempty"`
	Viewport   *detector.Viewport `json:"viewport,omitempty"`
}

// RunResponse is the external view of a run. The conversation itself is
// exposed separately through the trace endpoint.
type RunResponse struct {
	ID           string               `json:"id"`
	DataSourceID string               `json:"data_source_id,omitempty"`
	Status       run.Status           `json:"status"`
	Pending      *agent.PendingAction `json:"pending,omitempty"`
	FinalText    string               `json:"final_text,omitempty"`
	Error        string               `json:"error,omitempty"`
	Turns        int                  `json:"turns"`
	CreatedAt    string               `json:"created_at"`
	UpdatedAt    string               `json:"updated_at"`
	ExpiresAt    string               `json:"expires_at"`
}

// TraceResponse is the full conversation of a run.
type TraceResponse struct {
	RunID    string          `json:"run_id"`
	Messages []agent.Message `json:"messages"`
}

func newRunResponse(r *run.Run) RunResponse {
	resp := RunResponse{
		ID:        r.ID.String(),
		Status:    r.Status,
		Pending:   r.Pending,
		FinalText: r.FinalText,
		Error:     r.Error,
		Turns:     len(r.State.Conversation),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
		ExpiresAt: r.ExpiresAt.Format(time.RFC3339),
	}
	if r.DataSourceID != uuid.Nil {
		resp.DataSourceID = r.DataSourceID.String()
	}
	return resp
}

// Start handles creating a new run. The response carries either the final
// answer, a pending browser action to execute, or the failure.
func (h *RunHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRunRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Instruction == "" {
		respondError(w, http.StatusBadRequest, "instruction is required")
		return
	}

	sourceID := uuid.Nil
	if req.DataSourceID != "" {
		parsed, err := uuid.Parse(req.DataSourceID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid data_source_id format")
			return
		}
		sourceID = parsed
	}

	started, err := h.runs.Start(r.Context(), req.Instruction, req.Screenshot, req.Viewport, sourceID)
	if err != nil && started == nil {
		h.logger.Error(r.Context(), "failed to start run", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to start run")
		return
	}

	// A loop failure is recorded on the run itself; the client reads the
	// outcome from the status field either way.
	respondJSON(w, http.StatusCreated, newRunResponse(started))
}

// Resume handles continuing a suspended run with a browser action outcome.
func (h *RunHandler) Resume(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "run")
	if !ok {
		return
	}

	var req ResumeRunRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome := agent.ToolOutcome{
		Result:     req.Result,
		Screenshot: req.Screenshot,
		Viewport:   req.Viewport,
	}

	resumed, err := h.runs.Resume(r.Context(), id, outcome)
	if err != nil && resumed == nil {
		switch {
		case errors.Is(err, run.ErrRunNotFound):
			respondError(w, http.StatusNotFound, "run not found")
		case errors.Is(err, run.ErrRunExpired):
			respondError(w, http.StatusGone, "run expired")
		case errors.Is(err, run.ErrRunNotSuspended):
			respondError(w, http.StatusConflict, "run is not suspended")
		default:
			h.logger.Error(r.Context(), "failed to resume run", map[string]interface{}{
				"error":  err.Error(),
				"run_id": id.String(),
			})
			respondError(w, http.StatusInternalServerError, "failed to resume run")
		}
		return
	}

	respondJSON(w, http.StatusOK, newRunResponse(resumed))
}

// GetByID handles getting a single run by ID.
func (h *RunHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "run")
	if !ok {
		return
	}

	found, err := h.runs.Get(id)
	if err != nil {
		h.respondRunLookupError(w, r, id, err)
		return
	}

	respondJSON(w, http.StatusOK, newRunResponse(found))
}

// Trace handles returning the full conversation of a run for debugging.
func (h *RunHandler) Trace(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "run")
	if !ok {
		return
	}

	messages, err := h.runs.Trace(id)
	if err != nil {
		h.respondRunLookupError(w, r, id, err)
		return
	}

	respondJSON(w, http.StatusOK, TraceResponse{
		RunID:    id.String(),
		Messages: messages,
	})
}

// Delete handles removing a run from the registry.
func (h *RunHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "run")
	if !ok {
		return
	}

	h.runs.Delete(id)
	respondSuccess(w, "run deleted successfully")
}

func (h *RunHandler) respondRunLookupError(w http.ResponseWriter, r *http.Request, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, run.ErrRunNotFound):
		respondError(w, http.StatusNotFound, "run not found")
	case errors.Is(err, run.ErrRunExpired):
		respondError(w, http.StatusGone, "run expired")
	default:
		h.logger.Error(r.Context(), "failed to get run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to get run")
	}
}
