package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"logbook-backend/internal/config"
	"logbook-backend/internal/middleware"
	"logbook-backend/internal/supabase"
)

func TestRequireSupabase(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		configured bool
		wantStatus int
	}{
		{"configured", true, http.StatusOK},
		{"placeholder", false, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := supabase.NewClient(&config.Config{
				SupabaseURL:        config.PlaceholderSupabaseURL,
				SupabaseAnonKey:    config.PlaceholderSupabaseAnonKey,
				SupabaseConfigured: tt.configured,
			})
			require.NoError(t, err)

			router := gin.New()
			router.Use(middleware.RequireSupabase(client))
			router.GET("/test", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req, _ := http.NewRequest("GET", "/test", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if !tt.configured {
				assert.Contains(t, w.Body.String(), "SUPABASE_NOT_CONFIGURED")
			}
		})
	}
}
