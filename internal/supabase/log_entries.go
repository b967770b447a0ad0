package supabase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"logbook-backend/internal/models"
)

const (
	LogEntriesTable = "log_entries"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ListOptions struct {
	// Key filters on an exact key match when set.
	Key    string
	Limit  int
	Offset int
}

func (o ListOptions) normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultPageSize
	}
	if o.Limit > MaxPageSize {
		o.Limit = MaxPageSize
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

type logEntryInsert struct {
	UserID uuid.UUID       `json:"user_id"`
	Key    string          `json:"key"`
	Value  json.RawMessage `json:"value"`
}

type logEntryPatch struct {
	Key       *string         `json:"key,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LogEntryStore reads and writes log_entries through PostgREST. Every call
// takes the caller's access token and is filtered on user_id.
type LogEntryStore struct {
	client *Client
}

func NewLogEntryStore(client *Client) *LogEntryStore {
	return &LogEntryStore{client: client}
}

func (s *LogEntryStore) table(token string) (*postgrest.QueryBuilder, error) {
	client, err := s.client.WithAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoped client: %w", err)
	}
	return client.From(LogEntriesTable), nil
}

func (s *LogEntryStore) Create(token string, userID uuid.UUID, req models.CreateLogRequest) (*models.LogEntry, error) {
	table, err := s.table(token)
	if err != nil {
		return nil, err
	}

	row := logEntryInsert{
		UserID: userID,
		Key:    req.Key,
		Value:  req.Value,
	}

	var entries []models.LogEntry
	if _, err := table.Insert(row, false, "", "representation", "").ExecuteTo(&entries); err != nil {
		return nil, fmt.Errorf("failed to create log entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("failed to create log entry: no row returned")
	}

	return &entries[0], nil
}

func (s *LogEntryStore) Get(token string, userID, id uuid.UUID) (*models.LogEntry, error) {
	table, err := s.table(token)
	if err != nil {
		return nil, err
	}

	var entries []models.LogEntry
	_, err = table.Select("*", "", false).
		Eq("id", id.String()).
		Eq("user_id", userID.String()).
		ExecuteTo(&entries)
	if err != nil {
		return nil, fmt.Errorf("failed to get log entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	return &entries[0], nil
}

// List returns one page of the user's entries, newest first.
func (s *LogEntryStore) List(token string, userID uuid.UUID, opts ListOptions) (models.PaginatedResponse[models.LogEntry], error) {
	opts = opts.normalize()

	table, err := s.table(token)
	if err != nil {
		return models.PaginatedResponse[models.LogEntry]{}, err
	}

	query := table.Select("*", "exact", false).Eq("user_id", userID.String())
	if opts.Key != "" {
		query = query.Eq("key", opts.Key)
	}

	var entries []models.LogEntry
	count, err := query.
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Range(opts.Offset, opts.Offset+opts.Limit-1, "").
		ExecuteTo(&entries)
	if err != nil {
		return models.PaginatedResponse[models.LogEntry]{}, fmt.Errorf("failed to list log entries: %w", err)
	}

	return models.NewPaginatedResponse(entries, int64(count), opts.Offset), nil
}

// ListAll pages through every entry the user owns.
func (s *LogEntryStore) ListAll(token string, userID uuid.UUID) ([]models.LogEntry, error) {
	all := []models.LogEntry{}
	opts := ListOptions{Limit: MaxPageSize}

	for {
		page, err := s.List(token, userID, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)

		if !page.HasMore || len(page.Data) == 0 {
			return all, nil
		}
		opts.Offset += len(page.Data)
	}
}

func (s *LogEntryStore) Update(token string, userID, id uuid.UUID, req models.UpdateLogRequest) (*models.LogEntry, error) {
	table, err := s.table(token)
	if err != nil {
		return nil, err
	}

	patch := logEntryPatch{
		Key:       req.Key,
		Value:     req.Value,
		UpdatedAt: time.Now().UTC(),
	}

	var entries []models.LogEntry
	_, err = table.Update(patch, "representation", "").
		Eq("id", id.String()).
		Eq("user_id", userID.String()).
		ExecuteTo(&entries)
	if err != nil {
		return nil, fmt.Errorf("failed to update log entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	return &entries[0], nil
}

func (s *LogEntryStore) Delete(token string, userID, id uuid.UUID) (*models.LogEntry, error) {
	table, err := s.table(token)
	if err != nil {
		return nil, err
	}

	var entries []models.LogEntry
	_, err = table.Delete("representation", "").
		Eq("id", id.String()).
		Eq("user_id", userID.String()).
		ExecuteTo(&entries)
	if err != nil {
		return nil, fmt.Errorf("failed to delete log entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	return &entries[0], nil
}
