package handlers

import (
	"errors"
	"log"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"logbook-backend/internal/models"
	"logbook-backend/internal/services"
)

type ExportsHandler struct {
	exportService *services.ExportService
}

func NewExportsHandler(exportService *services.ExportService) *ExportsHandler {
	return &ExportsHandler{
		exportService: exportService,
	}
}

// CreateExport godoc
// @Summary     Export log entries
// @Description Writes every log entry of the user to a private bucket as a JSON array, optionally zstd compressed. The returned URL is signed and expires.
// @Tags        exports
// @Produce     json
// @Security    Bearer
// @Param       format query string false "json (default) or zstd"
// @Success     201 {object} models.ApiResponse[models.ExportResult]
// @Failure     400 {object} models.ApiResponse[models.ApiError]
// @Failure     502 {object} models.ApiResponse[models.ApiError]
// @Router      /exports [post]
func (h *ExportsHandler) CreateExport(c *gin.Context) {
	userID, token, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.exportService.Export(token, userID, c.Query("format"))
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFormat) {
			respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, err.Error())
			return
		}
		respondStoreError(c, "export log entries", err)
		return
	}

	c.JSON(http.StatusCreated, models.Success(*result))
}

// ListExports godoc
// @Summary     List exports
// @Tags        exports
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ApiResponse[[]models.ExportFile]
// @Router      /exports [get]
func (h *ExportsHandler) ListExports(c *gin.Context) {
	userID, token, ok := currentUser(c)
	if !ok {
		return
	}

	files, err := h.exportService.ListExports(token, userID)
	if err != nil {
		log.Printf("Failed to list exports: %v", err)
		respondError(c, http.StatusBadGateway, models.CodeUpstream, "failed to list exports")
		return
	}

	c.JSON(http.StatusOK, models.Success(files))
}

// DeleteExport godoc
// @Summary     Delete export
// @Tags        exports
// @Produce     json
// @Security    Bearer
// @Param       name path string true "Export file name"
// @Success     200 {object} models.ApiResponse[string]
// @Router      /exports/{name} [delete]
func (h *ExportsHandler) DeleteExport(c *gin.Context) {
	userID, token, ok := currentUser(c)
	if !ok {
		return
	}

	name := c.Param("name")
	if name == "" || name == "." || name == ".." || path.Base(name) != name {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, "invalid export name")
		return
	}

	if err := h.exportService.DeleteExport(token, userID, name); err != nil {
		log.Printf("Failed to delete export: %v", err)
		respondError(c, http.StatusBadGateway, models.CodeUpstream, "failed to delete export")
		return
	}

	c.JSON(http.StatusOK, models.Success(name))
}
