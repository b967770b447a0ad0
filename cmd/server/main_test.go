package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"logbook-backend/internal/config"
	"logbook-backend/internal/supabase"
	"logbook-backend/internal/supabase/supabasetest"
)

const testSecret = "router-test-secret-that-is-long-enough"

func signedToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func serve(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func placeholderRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		SupabaseURL:           config.PlaceholderSupabaseURL,
		SupabaseAnonKey:       config.PlaceholderSupabaseAnonKey,
		SupabaseJWTSecret:     testSecret,
		SupabaseStorageBucket: "log-exports",
		DefaultPageSize:       20,
	}
	client, err := supabase.NewClient(cfg)
	require.NoError(t, err)

	return setupRouter(cfg, client)
}

func TestSetupRouter_PlaceholderConfig(t *testing.T) {
	router := placeholderRouter(t)

	w := serve(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/status", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"supabase_configured":false`)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/logs"},
		{http.MethodPost, "/api/v1/logs"},
		{http.MethodPost, "/api/v1/exports"},
	} {
		w := serve(router, route.method, route.path, "", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, "%s %s", route.method, route.path)
		assert.Contains(t, w.Body.String(), "SUPABASE_NOT_CONFIGURED")
	}
}

func TestSetupRouter_ConfigCheckedBeforeAuth(t *testing.T) {
	router := placeholderRouter(t)

	w := serve(router, http.MethodGet, "/api/v1/logs", signedToken(t, uuid.New()), "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSetupRouter_RequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := supabasetest.NewServer()
	defer server.Close()

	cfg := server.ClientConfig()
	cfg.SupabaseJWTSecret = testSecret
	client, err := supabase.NewClient(cfg)
	require.NoError(t, err)
	router := setupRouter(cfg, client)

	w := serve(router, http.MethodGet, "/api/v1/logs", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	w = serve(router, http.MethodGet, "/api/v1/exports", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Empty(t, server.Requests())
}

func TestSetupRouter_AuthenticatedRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := supabasetest.NewServer()
	defer server.Close()

	cfg := server.ClientConfig()
	cfg.SupabaseJWTSecret = testSecret
	client, err := supabase.NewClient(cfg)
	require.NoError(t, err)
	router := setupRouter(cfg, client)

	userID := uuid.New()
	token := signedToken(t, userID)

	w := serve(router, http.MethodPost, "/api/v1/logs", token, `{"key":"mood","value":5}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	rows := server.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, userID, rows[0].UserID)

	requests := server.Requests()
	require.NotEmpty(t, requests)
	assert.Equal(t, "Bearer "+token, requests[0].Authorization)
}
