package supabase

import (
	"fmt"

	"docpipe/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// SupabaseClient implements the domain.SupabaseClient interface
type SupabaseClient struct {
	client *supabase.Client
	url    string
	key    string
	logger domain.Logger
}

// NewSupabaseClient creates a new Supabase client instance
func NewSupabaseClient(config domain.Config, logger domain.Logger) domain.SupabaseClient {
	return NewSupabaseClientWithCredentials(config.GetSupabaseURL(), config.GetSupabaseKey(), logger)
}

// NewSupabaseClientWithCredentials creates a client for an explicit project URL and service key.
func NewSupabaseClientWithCredentials(url, key string, logger domain.Logger) *SupabaseClient {
	return &SupabaseClient{
		url:    url,
		key:    key,
		logger: logger,
	}
}

// DB returns the underlying client, nil until Initialize succeeds.
func (s *SupabaseClient) DB() *supabase.Client {
	return s.client
}

// Initialize establishes a connection to Supabase
func (s *SupabaseClient) Initialize() error {
	if s.url == "" || s.key == "" {
		return fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(s.url, s.key, &supabase.ClientOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	s.client = client
	s.logger.Info("Supabase client initialized successfully", "url", s.url)
	return nil
}
