package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"logbook-backend/internal/models"
	"logbook-backend/internal/supabase"
)

type StatusHandler struct {
	client *supabase.Client
}

func NewStatusHandler(client *supabase.Client) *StatusHandler {
	return &StatusHandler{
		client: client,
	}
}

// GetStatus godoc
// @Summary     Configuration status
// @Description Reports whether the Supabase URL and anon key were configured. When false the server runs against placeholder values and log endpoints answer 503.
// @Tags        health
// @Produce     json
// @Success     200 {object} models.ApiResponse[models.ConfigStatus]
// @Router      /status [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, models.Success(models.ConfigStatus{
		SupabaseConfigured: h.client.Configured(),
		SupabaseURL:        h.client.URL(),
		Environment:        h.client.Config.Environment,
	}))
}
