package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"docpipe/internal/chunk"
	"docpipe/internal/domain"
	"docpipe/internal/extract"
	infrasupabase "docpipe/internal/infra/supabase"
	"docpipe/internal/metrics"
	"docpipe/internal/repository"
	"docpipe/internal/service"
	"docpipe/internal/tokens"
	"docpipe/pkg/logger"
)

const redisConnectTimeout = 5 * time.Second

// Container holds all application dependencies
type Container struct {
	Config    domain.Config
	Logger    domain.Logger
	Metrics   *metrics.Metrics
	Meter     *tokens.Meter
	Extractor *extract.Extractor
	Chunker   *chunk.Chunker
	Store     *repository.TieredStore
	Pipeline  *service.Pipeline

	redisClient *redis.Client
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	config := NewConfig()
	return NewContainerWithConfig(config, logger.NewLogger(config.GetLogLevel()))
}

// NewContainerWithConfig wires the pipeline from an explicit configuration.
// Unreachable backing stores are logged and skipped.
func NewContainerWithConfig(config domain.Config, appLogger domain.Logger) *Container {
	c := &Container{
		Config:  config,
		Logger:  appLogger,
		Metrics: metrics.New(),
	}

	table, err := loadPricing(config.GetPricingFile())
	if err != nil {
		appLogger.Error("Failed to load pricing file, using built-in profiles", err, "path", config.GetPricingFile())
	}
	c.Meter = tokens.NewMeter(table, appLogger)

	c.Extractor = extract.New(extract.Config{
		Timeout:       config.GetExtractionTimeout(),
		MaxTextLength: config.GetMaxTextLength(),
		PDFMaxPages:   config.GetPDFMaxPages(),
		XLSXMaxRows:   config.GetXLSXMaxRows(),
		XLSXMaxSheets: config.GetXLSXMaxSheets(),
	}, appLogger, extract.WithObserver(c.Metrics))

	c.Chunker = chunk.New(c.Meter, chunk.WithOverlapTokens(config.GetChunkOverlapTokens()))

	c.Store = repository.NewTieredStore(
		c.ephemeralStore(),
		c.durableStore(),
		config.GetCacheTTL(),
		appLogger,
		repository.WithLookupObserver(c.Metrics),
	)

	c.Pipeline = service.NewPipeline(c.Extractor, c.Meter, c.Chunker, c.Store, service.PipelineConfig{
		MaxFileSize:              config.GetMaxFileSize(),
		MaxConcurrentExtractions: config.GetMaxConcurrentExtractions(),
		DefaultModel:             config.GetDefaultModel(),
		DefaultMaxTokens:         config.GetDefaultMaxTokensPerChunk(),
		StoreTTL:                 config.GetStoreTTL(),
	}, appLogger, service.WithPipelineObserver(c.Metrics))

	return c
}

func (c *Container) ephemeralStore() domain.ContentStore {
	addr := c.Config.GetRedisAddr()
	if addr == "" {
		c.Logger.Info("REDIS_ADDR not set, using in-memory cache")
		return repository.NewMemoryStore()
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()
	client, err := repository.NewRedisClient(ctx, addr, c.Config.GetRedisPassword(), c.Config.GetRedisDB(), redisConnectTimeout)
	if err != nil {
		c.Logger.Warn("Redis unavailable, using in-memory cache", "addr", addr, "error", err)
		return repository.NewMemoryStore()
	}
	c.redisClient = client
	c.Logger.Info("Redis cache connected", "addr", addr)
	return repository.NewRedisStore(client, c.Logger)
}

func (c *Container) durableStore() domain.ContentStore {
	if c.Config.GetSupabaseURL() == "" {
		c.Logger.Info("SUPABASE_URL not set, durable store disabled")
		return nil
	}
	client := infrasupabase.NewSupabaseClient(c.Config, c.Logger)
	if err := client.Initialize(); err != nil {
		c.Logger.Warn("Supabase unavailable, durable store disabled", "error", err)
		return nil
	}
	return repository.NewSupabaseStore(client, c.Config.GetSupabaseTable(), c.Logger)
}

// ReloadPricing re-reads the pricing file and swaps it in atomically. Without
// a configured file the built-in table is restored.
func (c *Container) ReloadPricing() error {
	table, err := loadPricing(c.Config.GetPricingFile())
	if err != nil {
		return err
	}
	if table == nil {
		table = tokens.BuiltinPricingTable()
	}
	return c.Meter.UpdatePricing(table)
}

// Close releases network clients.
func (c *Container) Close() error {
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}
	return nil
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}

func loadPricing(path string) (*tokens.PricingTable, error) {
	if path == "" {
		return nil, nil
	}
	return tokens.LoadPricingFile(path)
}
