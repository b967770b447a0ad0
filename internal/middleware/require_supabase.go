package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"logbook-backend/internal/models"
	"logbook-backend/internal/supabase"
)

// RequireSupabase rejects requests while the client is running on
// placeholder configuration, since every call it made would fail.
func RequireSupabase(client *supabase.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !client.Configured() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.Failure[struct{}](
				models.CodeNotConfigured,
				"VITE_SUPABASE_URL and VITE_SUPABASE_ANON_KEY must be set",
			))
			return
		}
		c.Next()
	}
}
