package supabase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"logbook-backend/internal/models"
)

const (
	EventLogEntryCreated    = "log_entry.created"
	EventLogEntryUpdated    = "log_entry.updated"
	EventLogEntryDeleted    = "log_entry.deleted"
	EventLogEntriesExported = "log_entries.exported"
)

// RealtimeClient sends broadcast messages through the Realtime REST
// endpoint. supabase-go has no Realtime support, so this talks HTTP
// directly.
type RealtimeClient struct {
	client     *Client
	httpClient *http.Client
}

type broadcastMessage struct {
	Topic   string                 `json:"topic"`
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

type broadcastRequest struct {
	Messages []broadcastMessage `json:"messages"`
}

func NewRealtimeClient(client *Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	if !r.client.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(broadcastRequest{
		Messages: []broadcastMessage{{Topic: channel, Event: event, Payload: payload}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, r.client.URL()+"/realtime/v1/api/broadcast", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create broadcast request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", r.client.Config.SupabaseAnonKey)
	req.Header.Set("Authorization", "Bearer "+r.client.Config.SupabaseAnonKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send broadcast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("broadcast failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func (r *RealtimeClient) PublishUserEvent(userID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("user:%s", userID.String())
	return r.PublishEvent(channel, event, payload)
}

// Event payloads. Topics are public, so payloads carry identifiers only and
// subscribers fetch the row through the API.
func LogEntryPayload(entry *models.LogEntry) map[string]interface{} {
	return map[string]interface{}{
		"id":         entry.ID.String(),
		"key":        entry.Key,
		"updated_at": entry.UpdatedAt,
	}
}

func LogEntryDeletedPayload(id uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"id": id.String(),
	}
}

func ExportCompletedPayload(result *models.ExportResult) map[string]interface{} {
	return map[string]interface{}{
		"path":   result.Path,
		"count":  result.Count,
		"format": result.Format,
	}
}
