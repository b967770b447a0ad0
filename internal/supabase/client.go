package supabase

import (
	"errors"
	"strings"

	"github.com/supabase-community/supabase-go"
	"logbook-backend/internal/config"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNotConfigured = errors.New("supabase is not configured")
)

// Client is the process-wide handle to the Supabase project. It is built
// once in main and handed to the components that need it.
type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

// NewClient builds the handle from a loaded config. Placeholder values from
// config.Load keep construction from failing; requests made through a
// placeholder handle fail once they reach the network.
func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(strings.TrimSuffix(cfg.SupabaseURL, "/"), cfg.SupabaseAnonKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

func (c *Client) Configured() bool {
	return c.Config.SupabaseConfigured
}

func (c *Client) URL() string {
	return strings.TrimSuffix(c.Config.SupabaseURL, "/")
}

// WithAccessToken returns a handle that sends the caller's JWT instead of the
// anon key, so row level security applies to that user. An empty token
// returns the shared handle.
func (c *Client) WithAccessToken(token string) (*supabase.Client, error) {
	if token == "" {
		return c.Supabase, nil
	}

	return supabase.NewClient(c.URL(), c.Config.SupabaseAnonKey, &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
		},
	})
}
