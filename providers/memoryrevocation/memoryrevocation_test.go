package memoryrevocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetAndExists(t *testing.T) {
	store := New()
	ctx := context.Background()

	exists, err := store.Exists(ctx, "phisec:revoked:jti-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.SetWithTTL(ctx, "phisec:revoked:jti-1", "revoked", time.Minute))

	exists, err = store.Exists(ctx, "phisec:revoked:jti-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, store.Len())
}

func TestStore_EntryExpires(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.SetWithTTL(ctx, "phisec:revoked:jti-1", "revoked", 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)

	exists, err := store.Exists(ctx, "phisec:revoked:jti-1")
	require.NoError(t, err)
	assert.False(t, exists, "entries must expire with their TTL")
}

func TestStore_NonPositiveTTL(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.SetWithTTL(ctx, "phisec:revoked:jti-1", "revoked", 0))
	require.NoError(t, store.SetWithTTL(ctx, "phisec:revoked:jti-2", "revoked", -time.Minute))

	assert.Equal(t, 0, store.Len())
}
