package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jordanlanch/printfast/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := cache.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestTokenBlacklist(t *testing.T) {
	client, mr := setupTestRedis(t)
	blacklist := NewTokenBlacklist(client)
	ctx := context.Background()

	ok, err := blacklist.IsBlacklisted(ctx, "a.b.c")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, blacklist.Add(ctx, "a.b.c", time.Hour))

	ok, err = blacklist.IsBlacklisted(ctx, "a.b.c")
	require.NoError(t, err)
	assert.True(t, ok)

	// raw token never stored
	assert.False(t, mr.Exists("a.b.c"))

	mr.FastForward(2 * time.Hour)
	ok, err = blacklist.IsBlacklisted(ctx, "a.b.c")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenBlacklist_ExpiredTokenIgnored(t *testing.T) {
	client, mr := setupTestRedis(t)
	blacklist := NewTokenBlacklist(client)

	require.NoError(t, blacklist.Add(context.Background(), "old.token", -time.Second))
	assert.Empty(t, mr.Keys())
}
