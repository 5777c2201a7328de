package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docpipe/internal/domain"
)

// DefaultRecordsTable holds one row per cache key.
const DefaultRecordsTable = "processing_records"

// SupabaseStore is the durable layer. Rows are upserted on cache_key and
// filtered on expires_at when read.
type SupabaseStore struct {
	supabaseClient domain.SupabaseClient
	table          string
	logger         domain.Logger
	now            func() time.Time
}

// NewSupabaseStore creates a durable store over the given table.
func NewSupabaseStore(supabaseClient domain.SupabaseClient, table string, logger domain.Logger) *SupabaseStore {
	if table == "" {
		table = DefaultRecordsTable
	}
	return &SupabaseStore{
		supabaseClient: supabaseClient,
		table:          table,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *SupabaseStore) Name() string { return "supabase" }

func (s *SupabaseStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client := s.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("%w: supabase client not initialized", domain.ErrCacheUnavailable)
	}

	data, _, err := client.From(s.table).
		Select("cache_key,payload,expires_at", "", false).
		Eq("cache_key", key).
		Gt("expires_at", s.now().UTC().Format(time.RFC3339)).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("%w: supabase select %s: %w", domain.ErrCacheUnavailable, key, err)
	}

	var rows []domain.StoredRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrCacheUnavailable, key, err)
	}
	if len(rows) == 0 || len(rows[0].Payload) == 0 {
		return nil, domain.ErrCacheMiss
	}
	// The filter runs server side; re-check in case the clocks disagree.
	if !rows[0].ExpiresAt.IsZero() && !s.now().Before(rows[0].ExpiresAt) {
		return nil, domain.ErrCacheMiss
	}
	return rows[0].Payload, nil
}

// Set upserts value, which must be a JSON document.
func (s *SupabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("supabase store %s: payload is not valid JSON", key)
	}
	client := s.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("%w: supabase client not initialized", domain.ErrCacheUnavailable)
	}

	kind, hash := describeKey(key)
	now := s.now().UTC()
	record := domain.StoredRecord{
		CacheKey:  key,
		FileHash:  hash,
		Kind:      kind,
		Payload:   json.RawMessage(value),
		CreatedAt: now,
	}
	if ttl > 0 {
		record.ExpiresAt = now.Add(ttl)
	} else {
		record.ExpiresAt = now.AddDate(100, 0, 0)
	}

	// Upsert on cache_key so concurrent writers of the same document do not collide.
	_, _, err := client.From(s.table).Insert(record, true, "cache_key", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("%w: supabase upsert %s: %w", domain.ErrCacheUnavailable, key, err)
	}
	s.logger.Debug("Stored durable record", "key", key, "kind", kind)
	return nil
}

// describeKey recovers the record kind and file hash from a cache key.
func describeKey(key string) (kind, hash string) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 {
		return "", ""
	}
	switch parts[0] {
	case ResultKeyPrefix:
		return domain.RecordKindResult, parts[1]
	case ExtractionKeyPrefix:
		return domain.RecordKindExtraction, parts[1]
	}
	return parts[0], parts[1]
}
