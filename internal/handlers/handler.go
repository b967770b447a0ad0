package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"logbook-backend/internal/middleware"
	"logbook-backend/internal/models"
	"logbook-backend/internal/supabase"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.Failure[struct{}](code, message))
}

// currentUser reads the identity set by middleware.AuthMiddleware. It writes
// the error response itself and returns false when the identity is unusable.
func currentUser(c *gin.Context) (uuid.UUID, string, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		respondError(c, http.StatusUnauthorized, models.CodeUnauthorized, "user id not found")
		return uuid.Nil, "", false
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		respondError(c, http.StatusBadRequest, models.CodeInvalidRequest, "invalid user id")
		return uuid.Nil, "", false
	}

	return userID, c.GetString(middleware.AccessTokenKey), true
}

// respondStoreError maps errors from the supabase package onto the envelope.
func respondStoreError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, supabase.ErrNotFound):
		respondError(c, http.StatusNotFound, models.CodeNotFound, "log entry not found")
	case errors.Is(err, supabase.ErrNotConfigured):
		respondError(c, http.StatusServiceUnavailable, models.CodeNotConfigured, err.Error())
	default:
		log.Printf("Failed to %s: %v", action, err)
		respondError(c, http.StatusBadGateway, models.CodeUpstream, "failed to "+action)
	}
}
