package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewSessionStore(client, time.Hour)
	ctx := context.Background()

	id, err := store.Create(ctx, "user-42")
	require.NoError(t, err)
	assert.Len(t, id, 43)

	userID, err := store.Lookup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)

	require.NoError(t, store.Destroy(ctx, id))
	_, err = store.Lookup(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	id, err = store.Create(ctx, "user-43")
	require.NoError(t, err)
	mr.FastForward(61 * time.Minute)
	_, err = store.Lookup(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_LookupSlidesExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewSessionStore(client, time.Hour)
	ctx := context.Background()

	id, err := store.Create(ctx, "user-1")
	require.NoError(t, err)

	mr.FastForward(45 * time.Minute)
	_, err = store.Lookup(ctx, id)
	require.NoError(t, err)

	mr.FastForward(45 * time.Minute)
	userID, err := store.Lookup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}
