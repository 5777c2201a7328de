package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"docpipe/pkg/logger"
)

const defaultMaxFileSize int64 = 50 * 1024 * 1024

var configKeys = []string{
	"PORT", "SERVER_PORT", "LOG_LEVEL", "MAX_FILE_SIZE", "EXTRACTION_TIMEOUT",
	"MAX_CONCURRENT_EXTRACTIONS", "MAX_TEXT_LENGTH", "PDF_MAX_PAGES", "XLSX_MAX_ROWS",
	"XLSX_MAX_SHEETS", "DEFAULT_MODEL", "DEFAULT_MAX_TOKENS_PER_CHUNK", "CHUNK_OVERLAP_TOKENS",
	"CACHE_TTL", "STORE_TTL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "SUPABASE_URL",
	"SUPABASE_SERVICE_KEY", "SUPABASE_TABLE", "PRICING_FILE", "CORS_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetExtractionTimeout() != 120*time.Second {
		t.Fatalf("expected default extraction timeout 120s, got %s", cfg.GetExtractionTimeout())
	}
	if cfg.GetMaxConcurrentExtractions() != 4 {
		t.Fatalf("expected 4 concurrent extractions, got %d", cfg.GetMaxConcurrentExtractions())
	}
	if cfg.GetMaxTextLength() != 10_000_000 {
		t.Fatalf("expected max text length 10000000, got %d", cfg.GetMaxTextLength())
	}
	if cfg.GetDefaultModel() != "gpt-4" {
		t.Fatalf("expected default model gpt-4, got %s", cfg.GetDefaultModel())
	}
	if cfg.GetDefaultMaxTokensPerChunk() != 6000 {
		t.Fatalf("expected default chunk budget 6000, got %d", cfg.GetDefaultMaxTokensPerChunk())
	}
	if cfg.GetCacheTTL() != time.Hour || cfg.GetStoreTTL() != 168*time.Hour {
		t.Fatalf("unexpected TTLs: cache %s store %s", cfg.GetCacheTTL(), cfg.GetStoreTTL())
	}
	if cfg.GetSupabaseTable() != "processing_records" {
		t.Fatalf("expected default table processing_records, got %s", cfg.GetSupabaseTable())
	}
	if cfg.GetRedisAddr() != "" || cfg.GetSupabaseURL() != "" {
		t.Fatalf("expected backing stores to be unset by default")
	}
	if !reflect.DeepEqual(cfg.GetCORSOrigins(), []string{"*"}) {
		t.Fatalf("expected wildcard CORS origin, got %v", cfg.GetCORSOrigins())
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("MAX_FILE_SIZE", "12345")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EXTRACTION_TIMEOUT", "45s")
	t.Setenv("CACHE_TTL", "600")
	t.Setenv("MAX_CONCURRENT_EXTRACTIONS", "2")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_SERVICE_KEY", "test-key")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != 12345 {
		t.Fatalf("expected max file size 12345, got %d", cfg.GetMaxFileSize())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetExtractionTimeout() != 45*time.Second {
		t.Fatalf("expected extraction timeout 45s, got %s", cfg.GetExtractionTimeout())
	}
	if cfg.GetCacheTTL() != 10*time.Minute {
		t.Fatalf("expected plain seconds to parse, got %s", cfg.GetCacheTTL())
	}
	if cfg.GetMaxConcurrentExtractions() != 2 {
		t.Fatalf("expected 2 concurrent extractions, got %d", cfg.GetMaxConcurrentExtractions())
	}
	if cfg.GetRedisDB() != 3 {
		t.Fatalf("expected redis db 3, got %d", cfg.GetRedisDB())
	}
	if cfg.GetSupabaseURL() != "http://localhost:54321" {
		t.Fatalf("expected supabase url http://localhost:54321, got %s", cfg.GetSupabaseURL())
	}
	if cfg.GetSupabaseKey() != "test-key" {
		t.Fatalf("expected supabase key test-key, got %s", cfg.GetSupabaseKey())
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.GetCORSOrigins(), want) {
		t.Fatalf("expected origins %v, got %v", want, cfg.GetCORSOrigins())
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("MAX_FILE_SIZE", "not-a-number")
	t.Setenv("EXTRACTION_TIMEOUT", "soon")
	t.Setenv("PDF_MAX_PAGES", "many")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetExtractionTimeout() != 120*time.Second {
		t.Fatalf("expected default extraction timeout, got %s", cfg.GetExtractionTimeout())
	}
	if cfg.GetPDFMaxPages() != 500 {
		t.Fatalf("expected default page cap 500, got %d", cfg.GetPDFMaxPages())
	}
}

func TestNewContainer_WithoutBackingStores(t *testing.T) {
	clearEnv(t)

	c := NewContainerWithConfig(NewConfig(), logger.NewLogger("error"))
	defer c.Close()

	if c.Pipeline == nil || c.Meter == nil || c.Extractor == nil || c.Chunker == nil {
		t.Fatalf("expected the pipeline to be fully wired")
	}
	if c.redisClient != nil {
		t.Fatalf("expected no redis client without REDIS_ADDR")
	}
}

func TestContainer_ReloadPricing(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pricing.toml")
	if err := os.WriteFile(path, []byte("[models.house-llm]\ncontext_limit = 32000\ninput_cost_per_1k = 0.0001\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PRICING_FILE", path)

	c := NewContainerWithConfig(NewConfig(), logger.NewLogger("error"))
	if got := c.Meter.ContextLimit("house-llm"); got != 32000 {
		t.Fatalf("expected pricing file to be loaded, got context limit %d", got)
	}

	if err := os.WriteFile(path, []byte("[models.house-llm]\ncontext_limit = 64000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := c.ReloadPricing(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := c.Meter.ContextLimit("house-llm"); got != 64000 {
		t.Fatalf("expected reloaded context limit 64000, got %d", got)
	}

	if err := os.WriteFile(path, []byte("not = [valid"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := c.ReloadPricing(); err == nil {
		t.Fatalf("expected an invalid file to be rejected")
	}
	if got := c.Meter.ContextLimit("house-llm"); got != 64000 {
		t.Fatalf("expected the previous table to stay in effect, got %d", got)
	}
}
