package domain

import (
	"context"
	"time"
)

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetMaxFileSize() int64
	GetExtractionTimeout() time.Duration
	GetMaxConcurrentExtractions() int
	GetMaxTextLength() int
	GetPDFMaxPages() int
	GetXLSXMaxRows() int
	GetXLSXMaxSheets() int
	GetDefaultModel() string
	GetDefaultMaxTokensPerChunk() int
	GetChunkOverlapTokens() int
	GetCacheTTL() time.Duration
	GetStoreTTL() time.Duration
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseTable() string
	GetPricingFile() string
	GetCORSOrigins() []string
}

// ContentStore is a key-value store with per-entry expiry. Get returns
// ErrCacheMiss when the key is absent or expired.
type ContentStore interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
