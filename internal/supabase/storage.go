package supabase

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
	"logbook-backend/internal/models"
)

// SignedURLExpiry is how long, in seconds, an export download link stays valid.
const SignedURLExpiry = 3600

// StorageClient reads and writes exports in a private bucket. Every call is
// made with the caller's access token so storage policies see the user.
type StorageClient struct {
	anonKey    string
	bucket     string
	storageURL string
}

func NewStorageClient(client *Client) *StorageClient {
	return &StorageClient{
		anonKey:    client.Config.SupabaseAnonKey,
		bucket:     client.Config.SupabaseStorageBucket,
		storageURL: client.URL() + "/storage/v1",
	}
}

// scoped builds a storage client that authenticates as the token's user.
// An empty token falls back to the anon key.
func (s *StorageClient) scoped(token string) *storage.Client {
	if token == "" {
		token = s.anonKey
	}
	return storage.NewClient(s.storageURL, token, map[string]string{
		"apikey": s.anonKey,
	})
}

// ExportPath is the object path for a user's export: users/{user_id}/exports/{name}.
func ExportPath(userID uuid.UUID, name string) string {
	return fmt.Sprintf("%s%s", exportPrefix(userID), name)
}

func exportPrefix(userID uuid.UUID) string {
	return fmt.Sprintf("users/%s/exports/", userID.String())
}

func (s *StorageClient) UploadExport(token string, userID uuid.UUID, name, contentType string, data []byte) (string, string, error) {
	client := s.scoped(token)
	storagePath := ExportPath(userID, name)

	upsert := true
	_, err := client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}

	url, err := s.signedURL(client, storagePath)
	if err != nil {
		return "", "", err
	}

	return storagePath, url, nil
}

func (s *StorageClient) signedURL(client *storage.Client, storagePath string) (string, error) {
	resp, err := client.CreateSignedUrl(s.bucket, storagePath, SignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign url: %w", err)
	}
	return s.absoluteURL(resp.SignedURL), nil
}

// absoluteURL accepts both the relative path Storage answers with and a URL
// the SDK already joined to its base.
func (s *StorageClient) absoluteURL(signed string) string {
	if strings.HasPrefix(signed, "http://") || strings.HasPrefix(signed, "https://") {
		return signed
	}
	return s.storageURL + "/" + strings.TrimPrefix(signed, "/")
}

func (s *StorageClient) ListExports(token string, userID uuid.UUID) ([]models.ExportFile, error) {
	client := s.scoped(token)
	prefix := exportPrefix(userID)

	files, err := client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	exports := make([]models.ExportFile, 0, len(files))
	for _, file := range files {
		// listing returns names relative to the prefix
		name := strings.TrimPrefix(file.Name, prefix)
		path := prefix + name
		url, err := s.signedURL(client, path)
		if err != nil {
			return nil, err
		}
		exports = append(exports, models.ExportFile{
			Name: name,
			Path: path,
			URL:  url,
		})
	}

	return exports, nil
}

func (s *StorageClient) DeleteExport(token string, userID uuid.UUID, name string) error {
	_, err := s.scoped(token).RemoveFile(s.bucket, []string{ExportPath(userID, name)})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
