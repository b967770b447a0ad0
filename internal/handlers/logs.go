package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"logbook-backend/internal/models"
	"logbook-backend/internal/supabase"
)

type LogsHandler struct {
	store           *supabase.LogEntryStore
	realtimeClient  *supabase.RealtimeClient
	defaultPageSize int
}

func NewLogsHandler(store *supabase.LogEntryStore, realtimeClient *supabase.RealtimeClient, defaultPageSize int) *LogsHandler {
	return &LogsHandler{
		store:           store,
		realtimeClient:  realtimeClient,
		defaultPageSize: defaultPageSize,
	}
}

func (h *LogsHandler) publish(userID uuid.UUID, event string, payload map[string]interface{}) {
	if err := h.realtimeClient.PublishUserEvent(userID, event, payload); err != nil {
		log.Printf("Warning: failed to publish %s: %v", event, err)
	}
}

func parseEntryID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, "invalid log entry id")
		return uuid.Nil, false
	}
	return id, true
}

// CreateLog godoc
// @Summary     Create log entry
// @Description Stores a key and an arbitrary JSON value for the authenticated user. The id and timestamps are assigned by the database.
// @Tags        logs
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateLogRequest true "Log entry"
// @Success     201 {object} models.ApiResponse[models.LogEntry]
// @Failure     400 {object} models.ApiResponse[models.ApiError]
// @Failure     401 {object} models.ApiResponse[models.ApiError]
// @Router      /logs [post]
func (h *LogsHandler) CreateLog(c *gin.Context) {
	userID, token, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err.Error())
		return
	}

	entry, err := h.store.Create(token, userID, req)
	if err != nil {
		respondStoreError(c, "create log entry", err)
		return
	}

	h.publish(userID, supabase.EventLogEntryCreated, supabase.LogEntryPayload(entry))

	c.JSON(http.StatusCreated, models.Success(*entry))
}

// ListLogs godoc
// @Summary     List log entries
// @Description Returns the authenticated user's entries, newest first.
// @Tags        logs
// @Produce     json
// @Security    Bearer
// @Param       key    query string false "Exact key filter"
// @Param       limit  query int    false "Page size (max 100)"
// @Param       offset query int    false "Rows to skip"
// @Success     200 {object} models.ApiResponse[models.PaginatedResponse[models.LogEntry]]
// @Failure     400 {object} models.ApiResponse[models.ApiError]
// @Router      /logs [get]
func (h *LogsHandler) ListLogs(c *gin.Context) {
	userID, token, ok := currentUser(c)
	if !ok {
		return
	}

	opts := supabase.ListOptions{
		Key:   c.Query("key"),
		Limit: h.defaultPageSize,
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > supabase.MaxPageSize {
			respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, "limit must be between 1 and 100")
			return
		}
		opts.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, "offset must be a non-negative integer")
			return
		}
		opts.Offset = offset
	}

	page, err := h.store.List(token, userID, opts)
	if err != nil {
		respondStoreError(c, "list log entries", err)
		return
	}

	c.JSON(http.StatusOK, models.Success(page))
}

// GetLog godoc
// @Summary     Get log entry
// @Tags        logs
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Log entry ID"
// @Success     200 {object} models.ApiResponse[models.LogEntry]
// @Failure     404 {object} models.ApiResponse[models.ApiError]
// @Router      /logs/{id} [get]
func (h *LogsHandler) GetLog(c *gin.Context) {
	userID, token, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	entry, err := h.store.Get(token, userID, id)
	if err != nil {
		respondStoreError(c, "get log entry", err)
		return
	}

	c.JSON(http.StatusOK, models.Success(*entry))
}

// UpdateLog godoc
// @Summary     Update log entry
// @Description Changes the key, the value, or both.
// @Tags        logs
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path string                  true "Log entry ID"
// @Param       request body models.UpdateLogRequest true "Fields to change"
// @Success     200 {object} models.ApiResponse[models.LogEntry]
// @Failure     400 {object} models.ApiResponse[models.ApiError]
// @Failure     404 {object} models.ApiResponse[models.ApiError]
// @Router      /logs/{id} [patch]
func (h *LogsHandler) UpdateLog(c *gin.Context) {
	userID, token, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	var req models.UpdateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err.Error())
		return
	}

	entry, err := h.store.Update(token, userID, id, req)
	if err != nil {
		respondStoreError(c, "update log entry", err)
		return
	}

	h.publish(userID, supabase.EventLogEntryUpdated, supabase.LogEntryPayload(entry))

	c.JSON(http.StatusOK, models.Success(*entry))
}

// DeleteLog godoc
// @Summary     Delete log entry
// @Tags        logs
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Log entry ID"
// @Success     200 {object} models.ApiResponse[models.LogEntry]
// @Failure     404 {object} models.ApiResponse[models.ApiError]
// @Router      /logs/{id} [delete]
func (h *LogsHandler) DeleteLog(c *gin.Context) {
	userID, token, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	entry, err := h.store.Delete(token, userID, id)
	if err != nil {
		respondStoreError(c, "delete log entry", err)
		return
	}

	h.publish(userID, supabase.EventLogEntryDeleted, supabase.LogEntryDeletedPayload(entry.ID))

	c.JSON(http.StatusOK, models.Success(*entry))
}
