package repository

import (
	"context"
	"errors"
	"time"

	"docpipe/internal/domain"
)

// Lookup results reported to a LookupObserver.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

// LookupObserver receives one call per layer consulted.
type LookupObserver interface {
	ObserveLookup(layer, result string)
}

type noopLookupObserver struct{}

func (noopLookupObserver) ObserveLookup(string, string) {}

// TieredStore reads an ephemeral layer first and falls back to a durable
// one, back-filling the ephemeral layer on durable hits. Either layer may be
// nil. Layer failures are logged and treated as misses.
type TieredStore struct {
	ephemeral domain.ContentStore
	durable   domain.ContentStore
	cacheTTL  time.Duration
	logger    domain.Logger
	observer  LookupObserver
}

// TieredOption configures a TieredStore.
type TieredOption func(*TieredStore)

// WithLookupObserver reports per-layer lookup results.
func WithLookupObserver(o LookupObserver) TieredOption {
	return func(s *TieredStore) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewTieredStore combines the layers. cacheTTL caps how long entries live in
// the ephemeral layer.
func NewTieredStore(ephemeral, durable domain.ContentStore, cacheTTL time.Duration, logger domain.Logger, opts ...TieredOption) *TieredStore {
	s := &TieredStore{
		ephemeral: ephemeral,
		durable:   durable,
		cacheTTL:  cacheTTL,
		logger:    logger,
		observer:  noopLookupObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TieredStore) Name() string { return "tiered" }

// Get returns domain.ErrCacheMiss unless some layer has the key.
func (s *TieredStore) Get(ctx context.Context, key string) ([]byte, error) {
	if value, ok := s.lookup(ctx, s.ephemeral, key); ok {
		return value, nil
	}

	value, ok := s.lookup(ctx, s.durable, key)
	if !ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrCacheMiss
	}

	if s.ephemeral != nil {
		if err := s.ephemeral.Set(ctx, key, value, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to back-fill cache", "layer", s.ephemeral.Name(), "key", key, "error", err)
		}
	}
	return value, nil
}

func (s *TieredStore) lookup(ctx context.Context, layer domain.ContentStore, key string) ([]byte, bool) {
	if layer == nil {
		return nil, false
	}
	value, err := layer.Get(ctx, key)
	switch {
	case err == nil:
		s.observer.ObserveLookup(layer.Name(), LookupHit)
		return value, true
	case errors.Is(err, domain.ErrCacheMiss):
		s.observer.ObserveLookup(layer.Name(), LookupMiss)
	default:
		s.observer.ObserveLookup(layer.Name(), LookupError)
		s.logger.Warn("Cache layer read failed", "layer", layer.Name(), "key", key, "error", err)
	}
	return nil, false
}

// Set writes through to every layer. ttl applies to the durable layer; the
// ephemeral copy lives for at most cacheTTL. Failures are logged and joined.
func (s *TieredStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var errs []error
	if s.ephemeral != nil {
		ephemeralTTL := s.cacheTTL
		if ttl > 0 && (ephemeralTTL <= 0 || ttl < ephemeralTTL) {
			ephemeralTTL = ttl
		}
		if err := s.ephemeral.Set(ctx, key, value, ephemeralTTL); err != nil {
			s.logger.Warn("Cache layer write failed", "layer", s.ephemeral.Name(), "key", key, "error", err)
			errs = append(errs, err)
		}
	}
	if s.durable != nil {
		if err := s.durable.Set(ctx, key, value, ttl); err != nil {
			s.logger.Warn("Cache layer write failed", "layer", s.durable.Name(), "key", key, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
