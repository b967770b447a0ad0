package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LogEntry is a row of the log_entries table. Value is stored as jsonb and
// carried through untouched.
type LogEntry struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value" swaggertype:"object"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ExportResult struct {
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	Count     int       `json:"count"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"created_at"`
}

type ExportFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

type ConfigStatus struct {
	SupabaseConfigured bool   `json:"supabase_configured"`
	SupabaseURL        string `json:"supabase_url"`
	Environment        string `json:"environment"`
}
