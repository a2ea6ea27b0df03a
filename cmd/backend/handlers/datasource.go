package handlers

import (
	"errors"
	"net/http"

	"github.com/hairizuan-noorazman/browser-agent/datasource"
	"github.com/hairizuan-noorazman/browser-agent/logger"
)

// DataSourceHandler handles data source requests.
type DataSourceHandler struct {
	sourceStore datasource.Store
	itemStore   datasource.ItemStore
	logger      logger.Logger
}

// NewDataSourceHandler creates a new data source handler.
func NewDataSourceHandler(sourceStore datasource.Store, itemStore datasource.ItemStore, log logger.Logger) *DataSourceHandler {
	return &DataSourceHandler{
		sourceStore: sourceStore,
		itemStore:   itemStore,
		logger:      log,
	}
}

// CreateDataSourceRequest represents a data source creation request.
type CreateDataSourceRequest struct {
	Name                    string                 `json:"name"`
	Description             string                 `json:"description"`
	SourceType              string                 `json:"source_type"`
	TargetURL               string                 `json:"target_url"`
	Instruction             string                 `json:"instruction"`
	ScheduleIntervalMinutes int                    `json:"schedule_interval_minutes"`
	Config                  map[string]interface{} `json:"config"`
}

// UpdateDataSourceRequest represents a data source update request. Nil
// fields are left unchanged.
type UpdateDataSourceRequest struct {
	Name                    *string                 `json:"name"`
	Description             *string                 `json:"description"`
	Status                  *string                 `json:"status"`
	TargetURL               *string                 `json:"target_url"`
	Instruction             *string                 `json:"instruction"`
	ScheduleIntervalMinutes *int                    `json:"schedule_interval_minutes"`
	Config                  *map[string]interface{} `json:"config"`
}

// respondValidationError maps domain validation errors onto 400 responses.
// Returns true when the error was handled.
func (h *DataSourceHandler) respondValidationError(w http.ResponseWriter, err error) bool {
	if errors.Is(err, datasource.ErrInvalidName) ||
		errors.Is(err, datasource.ErrInvalidSourceType) ||
		errors.Is(err, datasource.ErrInvalidStatus) ||
		errors.Is(err, datasource.ErrMissingTargetURL) ||
		errors.Is(err, datasource.ErrMissingInstruction) ||
		errors.Is(err, datasource.ErrInvalidScheduleSpan) {
		respondError(w, http.StatusBadRequest, err.Error())
		return true
	}
	return false
}

// Create handles creating a new data source.
func (h *DataSourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDataSourceRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source := &datasource.DataSource{
		Name:                    req.Name,
		Description:             req.Description,
		SourceType:              datasource.SourceType(req.SourceType),
		TargetURL:               req.TargetURL,
		Instruction:             req.Instruction,
		ScheduleIntervalMinutes: req.ScheduleIntervalMinutes,
		Config:                  req.Config,
	}

	if err := h.sourceStore.Create(r.Context(), source); err != nil {
		if h.respondValidationError(w, err) {
			return
		}
		h.logger.Error(r.Context(), "failed to create data source", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to create data source")
		return
	}

	respondJSON(w, http.StatusCreated, source)
}

// List handles listing data sources with optional type and status filters.
func (h *DataSourceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	filter := datasource.Filter{
		SourceType: datasource.SourceType(r.URL.Query().Get("source_type")),
		Status:     datasource.Status(r.URL.Query().Get("status")),
	}

	total, err := h.sourceStore.Count(r.Context(), filter)
	if err != nil {
		h.logger.Error(r.Context(), "failed to count data sources", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to count data sources")
		return
	}

	sources, err := h.sourceStore.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.logger.Error(r.Context(), "failed to list data sources", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list data sources")
		return
	}

	respondJSON(w, http.StatusOK, NewPaginatedResponse(sources, total, limit, offset))
}

// GetByID handles getting a single data source by ID.
func (h *DataSourceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "data source")
	if !ok {
		return
	}

	source, err := h.sourceStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, datasource.ErrDataSourceNotFound) {
			respondError(w, http.StatusNotFound, "data source not found")
			return
		}
		h.logger.Error(r.Context(), "failed to get data source", map[string]interface{}{
			"error":          err.Error(),
			"data_source_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to get data source")
		return
	}

	respondJSON(w, http.StatusOK, source)
}

// Update handles partially updating a data source.
func (h *DataSourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "data source")
	if !ok {
		return
	}

	var req UpdateDataSourceRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var setters []datasource.UpdateSetter
	if req.Name != nil {
		setters = append(setters, datasource.SetName(*req.Name))
	}
	if req.Description != nil {
		setters = append(setters, datasource.SetDescription(*req.Description))
	}
	if req.Status != nil {
		setters = append(setters, datasource.SetStatus(datasource.Status(*req.Status)))
	}
	if req.TargetURL != nil {
		setters = append(setters, datasource.SetTargetURL(*req.TargetURL))
	}
	if req.Instruction != nil {
		setters = append(setters, datasource.SetInstruction(*req.Instruction))
	}
	if req.ScheduleIntervalMinutes != nil {
		setters = append(setters, datasource.SetScheduleInterval(*req.ScheduleIntervalMinutes))
	}
	if req.Config != nil {
		setters = append(setters, datasource.SetConfig(datasource.JSONMap(*req.Config)))
	}

	if len(setters) == 0 {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.sourceStore.Update(r.Context(), id, setters...); err != nil {
		if errors.Is(err, datasource.ErrDataSourceNotFound) {
			respondError(w, http.StatusNotFound, "data source not found")
			return
		}
		if h.respondValidationError(w, err) {
			return
		}
		h.logger.Error(r.Context(), "failed to update data source", map[string]interface{}{
			"error":          err.Error(),
			"data_source_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to update data source")
		return
	}

	updated, err := h.sourceStore.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error(r.Context(), "failed to get updated data source", map[string]interface{}{
			"error":          err.Error(),
			"data_source_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to get updated data source")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete handles deleting a data source.
func (h *DataSourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "data source")
	if !ok {
		return
	}

	if err := h.sourceStore.Delete(r.Context(), id); err != nil {
		if errors.Is(err, datasource.ErrDataSourceNotFound) {
			respondError(w, http.StatusNotFound, "data source not found")
			return
		}
		h.logger.Error(r.Context(), "failed to delete data source", map[string]interface{}{
			"error":          err.Error(),
			"data_source_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to delete data source")
		return
	}

	respondSuccess(w, "data source deleted successfully")
}

// ListItems handles listing collected items for a data source.
func (h *DataSourceHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "data source")
	if !ok {
		return
	}

	if _, err := h.sourceStore.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, datasource.ErrDataSourceNotFound) {
			respondError(w, http.StatusNotFound, "data source not found")
			return
		}
		h.logger.Error(r.Context(), "failed to get data source", map[string]interface{}{
			"error":          err.Error(),
			"data_source_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to get data source")
		return
	}

	limit, offset := parsePagination(r)

	total, err := h.itemStore.CountBySource(r.Context(), id)
	if err != nil {
		h.logger.Error(r.Context(), "failed to count collected items", map[string]interface{}{
			"error":          err.Error(),
			"data_source_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to count collected items")
		return
	}

	items, err := h.itemStore.ListBySource(r.Context(), id, limit, offset)
	if err != nil {
		h.logger.Error(r.Context(), "failed to list collected items", map[string]interface{}{
			"error":          err.Error(),
			"data_source_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list collected items")
		return
	}

	respondJSON(w, http.StatusOK, NewPaginatedResponse(items, total, limit, offset))
}
