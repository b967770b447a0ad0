package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Placeholder values substituted when Supabase is not configured. Client
// construction succeeds with them, requests against the host do not.
const (
	PlaceholderSupabaseURL     = "https://placeholder.supabase.co"
	PlaceholderSupabaseAnonKey = "placeholder-key"
)

type Config struct {
	// Supabase
	SupabaseURL           string
	SupabaseAnonKey       string
	SupabaseJWTSecret     string
	SupabaseStorageBucket string

	// SupabaseConfigured reports whether both VITE_SUPABASE_URL and
	// VITE_SUPABASE_ANON_KEY were present when the config was loaded.
	SupabaseConfigured bool

	// Database
	DatabaseURL string

	// Server
	Port            string
	Environment     string
	BaseURL         string
	DefaultPageSize int
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env file: %v", err)
	}

	supabaseURL := os.Getenv("VITE_SUPABASE_URL")
	supabaseAnonKey := os.Getenv("VITE_SUPABASE_ANON_KEY")

	cfg := &Config{
		SupabaseURL:           orDefault(supabaseURL, PlaceholderSupabaseURL),
		SupabaseAnonKey:       orDefault(supabaseAnonKey, PlaceholderSupabaseAnonKey),
		SupabaseJWTSecret:     getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "log-exports"),
		SupabaseConfigured:    supabaseURL != "" && supabaseAnonKey != "",

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	pageSize, err := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: DEFAULT_PAGE_SIZE: %w", err)
	}
	cfg.DefaultPageSize = pageSize

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings the server cannot run without. Missing
// Supabase values are not an error: they were already replaced by
// placeholders and are reported through SupabaseConfigured.
func (c *Config) Validate() error {
	if c.DefaultPageSize < 1 || c.DefaultPageSize > 100 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be between 1 and 100, got %d", c.DefaultPageSize)
	}
	if c.SupabaseStorageBucket == "" {
		return fmt.Errorf("SUPABASE_STORAGE_BUCKET must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	return orDefault(os.Getenv(key), defaultValue)
}

func orDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}
