package models_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"logbook-backend/internal/models"
)

func TestApiResponse_Success(t *testing.T) {
	resp := models.Success(models.HealthResponse{Status: "ok"})

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.True(t, resp.Valid())

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"status":"ok"}}`, string(body))
}

func TestApiResponse_SuccessWithZeroValue(t *testing.T) {
	resp := models.Success(0)

	require.NotNil(t, resp.Data)
	assert.True(t, resp.Valid())

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":0}`, string(body))
}

func TestApiResponse_Failure(t *testing.T) {
	resp := models.Failure[models.LogEntry](models.CodeNotFound, "log entry not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, models.CodeNotFound, resp.Error.Code)
	assert.True(t, resp.Valid())

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"NOT_FOUND","message":"log entry not found"}}`, string(body))
}

func TestApiResponse_Valid(t *testing.T) {
	assert.False(t, models.ApiResponse[int]{Success: true}.Valid())
	assert.False(t, models.ApiResponse[int]{Success: false}.Valid())
}

func TestNewPaginatedResponse(t *testing.T) {
	tests := []struct {
		name        string
		items       []int
		count       int64
		offset      int
		wantHasMore bool
		wantCount   int64
	}{
		{"first of several pages", []int{1, 2}, 5, 0, true, 5},
		{"last page", []int{5}, 5, 4, false, 5},
		{"empty result", nil, 0, 0, false, 0},
		{"offset past end", nil, 3, 10, false, 3},
		{"count missing from service", []int{1, 2, 3}, 0, 0, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := models.NewPaginatedResponse(tt.items, tt.count, tt.offset)

			assert.NotNil(t, page.Data)
			assert.Equal(t, tt.wantHasMore, page.HasMore)
			assert.Equal(t, tt.wantCount, page.Count)
			if !page.HasMore {
				assert.LessOrEqual(t, int64(len(page.Data)), page.Count)
			}
		})
	}
}

func TestPaginatedResponse_JSON(t *testing.T) {
	page := models.NewPaginatedResponse[string](nil, 0, 0)

	body, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"count":0,"hasMore":false}`, string(body))
}

func TestLogEntry_JSON(t *testing.T) {
	raw := `{
		"id": "4f1c1f38-2bd5-4a3f-9a57-0c3c9d1a7b11",
		"user_id": "9b2f1f38-2bd5-4a3f-9a57-0c3c9d1a7b22",
		"key": "mood",
		"value": {"score": 5, "tags": ["calm"]},
		"created_at": "2024-03-01T10:00:00.123456+00:00",
		"updated_at": "2024-03-01T10:00:00.123456+00:00"
	}`

	var entry models.LogEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))

	assert.Equal(t, "mood", entry.Key)
	assert.JSONEq(t, `{"score": 5, "tags": ["calm"]}`, string(entry.Value))
	assert.Equal(t, 2024, entry.CreatedAt.Year())
}

func TestCreateLogRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateLogRequest
		wantErr string
	}{
		{"valid number", models.CreateLogRequest{Key: "mood", Value: json.RawMessage(`5`)}, ""},
		{"valid null", models.CreateLogRequest{Key: "mood", Value: json.RawMessage(`null`)}, ""},
		{"missing key", models.CreateLogRequest{Value: json.RawMessage(`5`)}, "key is required"},
		{"blank key", models.CreateLogRequest{Key: "  ", Value: json.RawMessage(`5`)}, "key is required"},
		{"long key", models.CreateLogRequest{Key: strings.Repeat("k", models.MaxKeyLength+1), Value: json.RawMessage(`5`)}, "at most"},
		{"max multibyte key", models.CreateLogRequest{Key: strings.Repeat("é", models.MaxKeyLength), Value: json.RawMessage(`5`)}, ""},
		{"long multibyte key", models.CreateLogRequest{Key: strings.Repeat("é", models.MaxKeyLength+1), Value: json.RawMessage(`5`)}, "at most"},
		{"missing value", models.CreateLogRequest{Key: "mood"}, "value is required"},
		{"invalid value", models.CreateLogRequest{Key: "mood", Value: json.RawMessage(`{`)}, "valid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUpdateLogRequest_Validate(t *testing.T) {
	key := "energy"
	blank := ""

	assert.NoError(t, (&models.UpdateLogRequest{Key: &key}).Validate())
	assert.NoError(t, (&models.UpdateLogRequest{Value: json.RawMessage(`"high"`)}).Validate())
	assert.Error(t, (&models.UpdateLogRequest{}).Validate())
	assert.Error(t, (&models.UpdateLogRequest{Key: &blank}).Validate())
	assert.Error(t, (&models.UpdateLogRequest{Value: json.RawMessage(`nope`)}).Validate())
}
