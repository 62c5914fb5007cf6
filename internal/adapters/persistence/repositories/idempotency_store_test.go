package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIdempotencyStore(t *testing.T) (IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewIdempotencyStore(client), mr
}

func TestIdempotencyStore_ReserveOnce(t *testing.T) {
	store, _ := newTestIdempotencyStore(t)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "req-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Same key cannot be reserved twice while held
	ok, err = store.Reserve(ctx, "req-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// A different key is unaffected
	ok, err = store.Reserve(ctx, "req-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyStore_ReleaseFreesKey(t *testing.T) {
	store, _ := newTestIdempotencyStore(t)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "req-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Release(ctx, "req-1"))

	ok, err = store.Reserve(ctx, "req-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "a released key is reservable again")
}

func TestIdempotencyStore_ReservationExpires(t *testing.T) {
	store, mr := newTestIdempotencyStore(t)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "req-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// A stale reservation from a crashed request must not fence forever
	mr.FastForward(2 * time.Minute)

	ok, err = store.Reserve(ctx, "req-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
