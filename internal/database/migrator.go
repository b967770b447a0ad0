package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations lists the embedded migration files in the order they are applied.
func Migrations() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return names, nil
}

// MigrationSQL returns the contents of one embedded migration.
func MigrationSQL(name string) (string, error) {
	data, err := migrationsFS.ReadFile("migrations/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read migration %s: %w", name, err)
	}
	return string(data), nil
}

// Migrator applies the embedded schema over a direct Postgres connection.
// PostgREST cannot run DDL, so this is the only component that needs
// DATABASE_URL.
type Migrator struct {
	db *sql.DB
}

func NewMigrator(dbURL string) (*Migrator, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Migrator{db: db}, nil
}

// Run applies every migration not yet recorded in schema_migrations and
// returns the names it applied.
func (m *Migrator) Run() ([]string, error) {
	if err := m.createMigrationsTable(); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	names, err := Migrations()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range names {
		done, err := m.isMigrationApplied(name)
		if err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if done {
			continue
		}

		if err := m.apply(name); err != nil {
			return applied, err
		}
		applied = append(applied, name)
		log.Printf("Applied migration: %s", name)
	}

	return applied, nil
}

func (m *Migrator) apply(name string) error {
	migrationSQL, err := MigrationSQL(name)
	if err != nil {
		return err
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migrationSQL); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", name, err)
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (name, applied_at) VALUES ($1, NOW())",
		name,
	); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", name, err)
	}

	return nil
}

func (m *Migrator) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	_, err := m.db.Exec(query)
	return err
}

func (m *Migrator) isMigrationApplied(name string) (bool, error) {
	var exists bool
	err := m.db.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)",
		name,
	).Scan(&exists)
	return exists, err
}

func (m *Migrator) Close() error {
	return m.db.Close()
}
