package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"logbook-backend/internal/models"
)

// HealthHandler godoc
// @Summary     Liveness probe
// @Description Reports that the process is serving. Does not contact Supabase.
// @Tags        health
// @Produce     json
// @Success     200 {object} models.ApiResponse[models.HealthResponse]
// @Router      /health [get]
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.Success(models.HealthResponse{Status: "ok"}))
}
