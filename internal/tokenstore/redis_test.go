package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := New(context.Background(), Config{
		Driver: DriverRedis,
		TTL:    time.Hour,
		Redis:  &RedisConfig{Addr: mr.Addr(), Prefix: "test:"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	attempt, err := store.Begin(ctx, "sid")
	require.NoError(t, err)
	require.Equal(t, Attempt(1), attempt)

	applied, err := store.Set(ctx, "sid", attempt, "tok123")
	require.NoError(t, err)
	require.True(t, applied)

	token, ok, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok123", token)
	require.Equal(t, "tok123", mr.HGet("test:sid", "token"))
	require.Greater(t, mr.TTL("test:sid"), time.Duration(0))

	require.NoError(t, store.Clear(ctx, "sid"))
	_, ok, err = store.Get(ctx, "sid")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisStoreLastStartedWins(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	first, err := store.Begin(ctx, "sid")
	require.NoError(t, err)
	second, err := store.Begin(ctx, "sid")
	require.NoError(t, err)

	applied, err := store.Set(ctx, "sid", second, "B")
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = store.Set(ctx, "sid", first, "A")
	require.NoError(t, err)
	require.False(t, applied)

	token, _, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	require.Equal(t, "B", token)
}

func TestRedisStoreClearInvalidatesInflightAttempts(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	attempt, err := store.Begin(ctx, "sid")
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, "sid"))

	applied, err := store.Set(ctx, "sid", attempt, "late")
	require.NoError(t, err)
	require.False(t, applied)
}

func TestRedisStoreExpiresWithTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	attempt, _ := store.Begin(ctx, "sid")
	_, err := store.Set(ctx, "sid", attempt, "tok")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, ok, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewRedisRequiresAddress(t *testing.T) {
	_, err := NewRedis(context.Background(), Config{Driver: DriverRedis})
	require.Error(t, err)
	_, err = NewRedis(context.Background(), Config{Driver: DriverRedis, Redis: &RedisConfig{}})
	require.Error(t, err)
}
