package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/hairizuan-noorazman/browser-agent/logger"
	"github.com/hairizuan-noorazman/browser-agent/task"
)

// TaskHandler handles task-related requests.
type TaskHandler struct {
	taskStore task.Store
	logger    logger.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskStore task.Store, log logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskStore: taskStore,
		logger:    log,
	}
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Status        string                 `json:"status"`
	Priority      string                 `json:"priority"`
	DueDate       *time.Time             `json:"due_date"`
	ScheduledDate *time.Time             `json:"scheduled_date"`
	Tags          []string               `json:"tags"`
	ExtraData     map[string]interface{} `json:"extra_data"`
}

// UpdateTaskRequest represents a task update request. Nil fields are left
// unchanged.
type UpdateTaskRequest struct {
	Title         *string                 `json:"title"`
	Description   *string                 `json:"description"`
	Status        *string                 `json:"status"`
	Priority      *string                 `json:"priority"`
	DueDate       *time.Time              `json:"due_date"`
	ScheduledDate *time.Time              `json:"scheduled_date"`
	Tags          *[]string               `json:"tags"`
	ExtraData     *map[string]interface{} `json:"extra_data"`
}

// Create handles creating a new task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t := &task.Task{
		Title:         req.Title,
		Description:   req.Description,
		Status:        task.Status(req.Status),
		Priority:      task.Priority(req.Priority),
		DueDate:       req.DueDate,
		ScheduledDate: req.ScheduledDate,
		Tags:          req.Tags,
		ExtraData:     req.ExtraData,
	}

	if err := h.taskStore.Create(r.Context(), t); err != nil {
		if errors.Is(err, task.ErrInvalidTitle) ||
			errors.Is(err, task.ErrTitleTooLong) ||
			errors.Is(err, task.ErrInvalidStatus) ||
			errors.Is(err, task.ErrInvalidPriority) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error(r.Context(), "failed to create task", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	respondJSON(w, http.StatusCreated, t)
}

// List handles listing tasks with optional status and priority filters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	filter := task.Filter{
		Status:   task.Status(r.URL.Query().Get("status")),
		Priority: task.Priority(r.URL.Query().Get("priority")),
	}

	total, err := h.taskStore.Count(r.Context(), filter)
	if err != nil {
		h.logger.Error(r.Context(), "failed to count tasks", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to count tasks")
		return
	}

	tasks, err := h.taskStore.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.logger.Error(r.Context(), "failed to list tasks", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	respondJSON(w, http.StatusOK, NewPaginatedResponse(tasks, total, limit, offset))
}

// GetByID handles getting a single task by ID.
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "task")
	if !ok {
		return
	}

	t, err := h.taskStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, "task not found")
			return
		}
		h.logger.Error(r.Context(), "failed to get task", map[string]interface{}{
			"error":   err.Error(),
			"task_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to get task")
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// Update handles partially updating a task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "task")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var setters []task.UpdateSetter
	if req.Title != nil {
		setters = append(setters, task.SetTitle(*req.Title))
	}
	if req.Description != nil {
		setters = append(setters, task.SetDescription(*req.Description))
	}
	if req.Status != nil {
		setters = append(setters, task.SetStatus(task.Status(*req.Status)))
	}
	if req.Priority != nil {
		setters = append(setters, task.SetPriority(task.Priority(*req.Priority)))
	}
	if req.DueDate != nil {
		setters = append(setters, task.SetDueDate(req.DueDate))
	}
	if req.ScheduledDate != nil {
		setters = append(setters, task.SetScheduledDate(req.ScheduledDate))
	}
	if req.Tags != nil {
		setters = append(setters, task.SetTags(*req.Tags))
	}
	if req.ExtraData != nil {
		setters = append(setters, task.SetExtraData(task.JSONMap(*req.ExtraData)))
	}

	if len(setters) == 0 {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.taskStore.Update(r.Context(), id, setters...); err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, "task not found")
			return
		}
		if errors.Is(err, task.ErrInvalidTitle) ||
			errors.Is(err, task.ErrTitleTooLong) ||
			errors.Is(err, task.ErrInvalidStatus) ||
			errors.Is(err, task.ErrInvalidPriority) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error(r.Context(), "failed to update task", map[string]interface{}{
			"error":   err.Error(),
			"task_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	updated, err := h.taskStore.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error(r.Context(), "failed to get updated task", map[string]interface{}{
			"error":   err.Error(),
			"task_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to get updated task")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete handles deleting a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "task")
	if !ok {
		return
	}

	if err := h.taskStore.Delete(r.Context(), id); err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, "task not found")
			return
		}
		h.logger.Error(r.Context(), "failed to delete task", map[string]interface{}{
			"error":   err.Error(),
			"task_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	respondSuccess(w, "task deleted successfully")
}
