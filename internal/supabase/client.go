package supabase

import (
	"fmt"

	"auction-backend/internal/config"

	"github.com/supabase-community/supabase-go"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

// NewClient builds a Supabase client authorised with the service role key,
// which the admin Auth endpoints require.
func NewClient(cfg *config.Config) (*Client, error) {
	if !cfg.IdentityEnabled() {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required")
	}

	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// Identity returns the admin identity client backed by this connection.
func (c *Client) Identity() *IdentityClient {
	return NewIdentityClient(c.Supabase.Auth.WithToken(c.Config.SupabaseServiceRoleKey))
}
