package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"docpipe/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort               string
	LogLevel                 string
	MaxFileSize              int64
	ExtractionTimeout        time.Duration
	MaxConcurrentExtractions int
	MaxTextLength            int
	PDFMaxPages              int
	XLSXMaxRows              int
	XLSXMaxSheets            int
	DefaultModel             string
	DefaultMaxTokensPerChunk int
	ChunkOverlapTokens       int
	CacheTTL                 time.Duration
	StoreTTL                 time.Duration
	RedisAddr                string
	RedisPassword            string
	RedisDB                  int
	SupabaseURL              string
	SupabaseKey              string
	SupabaseTable            string
	PricingFile              string
	CORSOrigins              []string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:               getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:                 getEnvOrDefault("LOG_LEVEL", "info"),
		MaxFileSize:              getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		ExtractionTimeout:        getEnvDurationOrDefault("EXTRACTION_TIMEOUT", 120*time.Second),
		MaxConcurrentExtractions: getEnvIntOrDefault("MAX_CONCURRENT_EXTRACTIONS", 4),
		MaxTextLength:            getEnvIntOrDefault("MAX_TEXT_LENGTH", 10_000_000),
		PDFMaxPages:              getEnvIntOrDefault("PDF_MAX_PAGES", 500),
		XLSXMaxRows:              getEnvIntOrDefault("XLSX_MAX_ROWS", 10_000),
		XLSXMaxSheets:            getEnvIntOrDefault("XLSX_MAX_SHEETS", 50),
		DefaultModel:             getEnvOrDefault("DEFAULT_MODEL", "gpt-4"),
		DefaultMaxTokensPerChunk: getEnvIntOrDefault("DEFAULT_MAX_TOKENS_PER_CHUNK", 6000),
		ChunkOverlapTokens:       getEnvIntOrDefault("CHUNK_OVERLAP_TOKENS", 200),
		CacheTTL:                 getEnvDurationOrDefault("CACHE_TTL", time.Hour),
		StoreTTL:                 getEnvDurationOrDefault("STORE_TTL", 7*24*time.Hour),
		RedisAddr:                getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword:            getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:                  getEnvIntOrDefault("REDIS_DB", 0),
		SupabaseURL:              getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:              getEnvOrDefault("SUPABASE_SERVICE_KEY", ""),
		SupabaseTable:            getEnvOrDefault("SUPABASE_TABLE", "processing_records"),
		PricingFile:              getEnvOrDefault("PRICING_FILE", ""),
		CORSOrigins:              getEnvListOrDefault("CORS_ORIGINS", []string{"*"}),
	}
}

func (c *AppConfig) GetServerPort() string { return c.ServerPort }
func (c *AppConfig) GetLogLevel() string   { return c.LogLevel }

// GetMaxFileSize returns the maximum accepted upload size in bytes
func (c *AppConfig) GetMaxFileSize() int64 { return c.MaxFileSize }

// GetExtractionTimeout bounds a single extraction
func (c *AppConfig) GetExtractionTimeout() time.Duration { return c.ExtractionTimeout }

// GetMaxConcurrentExtractions is the admission limit; requests past it are rejected
func (c *AppConfig) GetMaxConcurrentExtractions() int { return c.MaxConcurrentExtractions }

func (c *AppConfig) GetMaxTextLength() int            { return c.MaxTextLength }
func (c *AppConfig) GetPDFMaxPages() int              { return c.PDFMaxPages }
func (c *AppConfig) GetXLSXMaxRows() int              { return c.XLSXMaxRows }
func (c *AppConfig) GetXLSXMaxSheets() int            { return c.XLSXMaxSheets }
func (c *AppConfig) GetDefaultModel() string          { return c.DefaultModel }
func (c *AppConfig) GetDefaultMaxTokensPerChunk() int { return c.DefaultMaxTokensPerChunk }
func (c *AppConfig) GetChunkOverlapTokens() int       { return c.ChunkOverlapTokens }

// GetCacheTTL is the lifetime of entries in the ephemeral cache
func (c *AppConfig) GetCacheTTL() time.Duration { return c.CacheTTL }

// GetStoreTTL is the lifetime of durable records
func (c *AppConfig) GetStoreTTL() time.Duration { return c.StoreTTL }

func (c *AppConfig) GetRedisAddr() string     { return c.RedisAddr }
func (c *AppConfig) GetRedisPassword() string { return c.RedisPassword }
func (c *AppConfig) GetRedisDB() int          { return c.RedisDB }

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string { return c.SupabaseURL }

// GetSupabaseKey returns the Supabase service key
func (c *AppConfig) GetSupabaseKey() string { return c.SupabaseKey }

func (c *AppConfig) GetSupabaseTable() string { return c.SupabaseTable }

// GetPricingFile is an optional TOML file with pricing overrides
func (c *AppConfig) GetPricingFile() string { return c.PricingFile }

func (c *AppConfig) GetCORSOrigins() []string { return c.CORSOrigins }

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("90s") or plain seconds ("90").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
