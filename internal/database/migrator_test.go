package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"logbook-backend/internal/database"
)

func TestMigrations_Ordered(t *testing.T) {
	names, err := database.Migrations()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"001_create_log_entries.sql",
		"002_log_entries_rls.sql",
		"003_log_exports_storage.sql",
	}, names)
}

func TestMigrations_ExportBucketIsPrivate(t *testing.T) {
	sql, err := database.MigrationSQL("003_log_exports_storage.sql")
	require.NoError(t, err)

	assert.Contains(t, sql, "VALUES ('log-exports', 'log-exports', false)")
	assert.Contains(t, sql, "(storage.foldername(name))[2] = auth.uid()::text")
	assert.NotContains(t, sql, "TO anon")
}

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := database.NewMigrator("postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	assert.Error(t, err)
}
