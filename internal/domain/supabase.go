package domain

import "github.com/supabase-community/supabase-go"

// SupabaseClient owns the connection to the durable record table.
type SupabaseClient interface {
	Initialize() error
	DB() *supabase.Client
}
