package supabase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"logbook-backend/internal/config"
	"logbook-backend/internal/supabase"
)

func TestNewClient_Unconfigured(t *testing.T) {
	t.Setenv("VITE_SUPABASE_URL", "")
	t.Setenv("VITE_SUPABASE_ANON_KEY", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	client, err := supabase.NewClient(cfg)
	require.NoError(t, err)

	require.NotNil(t, client)
	require.NotNil(t, client.Supabase)
	assert.False(t, client.Configured())
	assert.Equal(t, config.PlaceholderSupabaseURL, client.URL())
}

func TestNewClient_Configured(t *testing.T) {
	t.Setenv("VITE_SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("VITE_SUPABASE_ANON_KEY", "anon-key")

	cfg, err := config.Load()
	require.NoError(t, err)

	client, err := supabase.NewClient(cfg)
	require.NoError(t, err)

	assert.True(t, client.Configured())
	assert.Equal(t, "https://abc.supabase.co", client.URL())
}

func TestClient_WithAccessToken(t *testing.T) {
	client, err := supabase.NewClient(&config.Config{
		SupabaseURL:     "https://abc.supabase.co",
		SupabaseAnonKey: "anon-key",
	})
	require.NoError(t, err)

	shared, err := client.WithAccessToken("")
	require.NoError(t, err)
	assert.Same(t, client.Supabase, shared)

	scoped, err := client.WithAccessToken("user-token")
	require.NoError(t, err)
	assert.NotSame(t, client.Supabase, scoped)
}
