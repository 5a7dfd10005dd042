package redisstore_test

import (
	"context"
	"testing"
	"time"

	redisstore "agriprice-service/internal/infrastructure/redis"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestTryAcquireRelease(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	lock := redisstore.New(client, time.Minute)

	ctx := context.Background()
	ok, err := lock.TryAcquire(ctx, "sync")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = lock.TryAcquire(ctx, "sync")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, lock.Release(ctx, "sync"))

	ok, err = lock.TryAcquire(ctx, "sync")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLockExpires(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	lock := redisstore.New(client, 50*time.Millisecond)

	ctx := context.Background()
	ok, err := lock.TryAcquire(ctx, "sync")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(100 * time.Millisecond)

	ok, err = lock.TryAcquire(ctx, "sync")
	require.NoError(t, err)
	require.True(t, ok)
}
