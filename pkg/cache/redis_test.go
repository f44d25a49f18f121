package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a test Redis client using miniredis
func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := &Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestNewClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Ping(context.Background()))

	_, err = NewClient("not a url")
	assert.Error(t, err)
}

func TestClient_SetGetDelete(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "session:abc", "user-1", time.Hour))

	val, err := client.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", val)

	require.NoError(t, client.Delete(ctx, "session:abc"))

	_, err = client.Get(ctx, "session:abc")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestClient_ExistsAndExpire(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))

	ok, err := client.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, time.Minute, mr.TTL("k"))

	require.NoError(t, client.Expire(ctx, "k", 2*time.Minute))
	mr.FastForward(3 * time.Minute)

	ok, err = client.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
