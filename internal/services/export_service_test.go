package services

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"logbook-backend/internal/models"
	"logbook-backend/internal/supabase"
	"logbook-backend/internal/supabase/supabasetest"
)

func newExportService(t *testing.T) (*ExportService, *supabasetest.Server) {
	t.Helper()

	server := supabasetest.NewServer()
	t.Cleanup(server.Close)

	client, err := supabase.NewClient(server.ClientConfig())
	require.NoError(t, err)

	svc := NewExportService(
		supabase.NewLogEntryStore(client),
		supabase.NewStorageClient(client),
		supabase.NewRealtimeClient(client),
	)
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	return svc, server
}

func TestExportService_ExportJSON(t *testing.T) {
	svc, server := newExportService(t)
	userID := uuid.New()
	server.Seed(userID, "mood", `5`)
	server.Seed(userID, "sleep", `{"hours": 8}`)
	server.Seed(uuid.New(), "mood", `1`)

	result, err := svc.Export("user-token", userID, "")
	require.NoError(t, err)

	assert.Equal(t, FormatJSON, result.Format)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, supabase.ExportPath(userID, "log-entries-20240506T070809Z.json"), result.Path)

	data, ok := server.Object("log-exports/" + result.Path)
	require.True(t, ok)

	var entries []models.LogEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Len(t, entries, 2)

	broadcasts := server.Broadcasts()
	require.Len(t, broadcasts, 1)
	assert.Equal(t, supabase.EventLogEntriesExported, broadcasts[0].Event)
}

func TestExportService_ExportZstd(t *testing.T) {
	svc, server := newExportService(t)
	userID := uuid.New()
	server.Seed(userID, "mood", `5`)

	result, err := svc.Export("user-token", userID, FormatZstd)
	require.NoError(t, err)
	assert.Contains(t, result.Path, ".json.zst")

	data, ok := server.Object("log-exports/" + result.Path)
	require.True(t, ok)

	plain, err := decompress(data)
	require.NoError(t, err)

	var entries []models.LogEntry
	require.NoError(t, json.Unmarshal(plain, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "mood", entries[0].Key)
}

func TestExportService_EmptyExport(t *testing.T) {
	svc, server := newExportService(t)

	result, err := svc.Export("user-token", uuid.New(), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)

	data, ok := server.Object("log-exports/" + result.Path)
	require.True(t, ok)
	assert.Equal(t, `[]`, string(data))
}

func TestExportService_UsesCallerToken(t *testing.T) {
	svc, server := newExportService(t)
	userID := uuid.New()
	server.Seed(userID, "mood", `5`)

	result, err := svc.Export("user-token", userID, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, result.URL, "/storage/v1/object/sign/log-exports/"+result.Path)

	var restCalls, storageCalls int
	for _, req := range server.Requests() {
		switch {
		case strings.HasPrefix(req.Path, "/rest/v1/"):
			restCalls++
		case strings.HasPrefix(req.Path, "/storage/v1/"):
			storageCalls++
		default:
			continue
		}
		assert.Equal(t, "Bearer user-token", req.Authorization, "%s %s", req.Method, req.Path)
	}
	assert.NotZero(t, restCalls)
	assert.NotZero(t, storageCalls)

	broadcasts := server.Broadcasts()
	require.Len(t, broadcasts, 1)
	assert.NotContains(t, broadcasts[0].Payload, "url")
}

func TestExportService_UnsupportedFormat(t *testing.T) {
	svc, _ := newExportService(t)

	_, err := svc.Export("user-token", uuid.New(), "xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCompressRoundTrip(t *testing.T) {
	payload := []byte(`[{"key":"mood","value":5}]`)

	compressed, err := compress(payload)
	require.NoError(t, err)

	plain, err := decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, payload, plain)
}
