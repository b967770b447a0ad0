package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"logbook-backend/internal/models"
	"logbook-backend/internal/supabase"
)

const (
	FormatJSON = "json"
	FormatZstd = "zstd"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

type ExportService struct {
	store          *supabase.LogEntryStore
	storageClient  *supabase.StorageClient
	realtimeClient *supabase.RealtimeClient
	now            func() time.Time
}

func NewExportService(
	store *supabase.LogEntryStore,
	storageClient *supabase.StorageClient,
	realtimeClient *supabase.RealtimeClient,
) *ExportService {
	return &ExportService{
		store:          store,
		storageClient:  storageClient,
		realtimeClient: realtimeClient,
		now:            time.Now,
	}
}

// Export snapshots every log entry the user owns into a single object in
// storage. format is FormatJSON or FormatZstd; empty means FormatJSON.
func (s *ExportService) Export(token string, userID uuid.UUID, format string) (*models.ExportResult, error) {
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatZstd {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}

	entries, err := s.store.ListAll(token, userID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	createdAt := s.now().UTC()
	name := fmt.Sprintf("log-entries-%s.json", createdAt.Format("20060102T150405Z"))
	contentType := "application/json"

	if format == FormatZstd {
		data, err = compress(data)
		if err != nil {
			return nil, err
		}
		name += ".zst"
		contentType = "application/zstd"
	}

	path, url, err := s.storageClient.UploadExport(token, userID, name, contentType, data)
	if err != nil {
		return nil, err
	}

	result := &models.ExportResult{
		Path:      path,
		URL:       url,
		Count:     len(entries),
		Format:    format,
		CreatedAt: createdAt,
	}

	if err := s.realtimeClient.PublishUserEvent(userID, supabase.EventLogEntriesExported,
		supabase.ExportCompletedPayload(result)); err != nil {
		log.Printf("Warning: failed to publish export event: %v", err)
	}

	return result, nil
}

func (s *ExportService) ListExports(token string, userID uuid.UUID) ([]models.ExportFile, error) {
	return s.storageClient.ListExports(token, userID)
}

func (s *ExportService) DeleteExport(token string, userID uuid.UUID, name string) error {
	return s.storageClient.DeleteExport(token, userID, name)
}

func compress(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// decompress reverses compress.
func decompress(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress export: %w", err)
	}
	return out, nil
}
