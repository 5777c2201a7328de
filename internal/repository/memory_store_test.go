package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docpipe/internal/domain"
)

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	value := []byte(`{"a":1}`)
	require.NoError(t, s.Set(ctx, "k", value, time.Minute))
	value[0] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got), "stored value must be a copy")

	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, `{"a":1}`, string(again), "returned value must be a copy")
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "short", []byte("x"), time.Second))
	require.NoError(t, s.Set(ctx, "forever", []byte("y"), 0))

	now = now.Add(2 * time.Second)

	_, err := s.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.Equal(t, 1, s.Len(), "expired entry is evicted on read")

	got, err := s.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "y", string(got))
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()

	assert.ErrorIs(t, s.Set(ctx, "k", []byte("v"), 0), context.Canceled)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
