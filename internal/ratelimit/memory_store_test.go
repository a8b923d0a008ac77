package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreEvictsExpiredWindows(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		key := fmt.Sprintf("ratelimit:10.0.%d.%d:default", i/256, i%256)
		_, err := store.Hit(ctx, key, 100, time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, 10000, store.size())

	// Every window is past its time-to-live; the next hit, on a key never
	// seen before, must trigger eviction of all of them.
	now = now.Add(2 * time.Minute)
	hit, err := store.Hit(ctx, "ratelimit:10.1.0.1:default", 100, time.Minute)
	require.NoError(t, err)
	assert.True(t, hit.Allowed)

	assert.Equal(t, 1, store.size(), "expired windows must not outlive their window")
}

func TestMemoryStoreSweepKeepsLiveWindows(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := store.Hit(ctx, "ratelimit:10.0.0.1:login", 5, 10*time.Minute)
	require.NoError(t, err)
	_, err = store.Hit(ctx, "ratelimit:10.0.0.2:default", 100, time.Minute)
	require.NoError(t, err)

	// The default-class window expires, the login one does not.
	now = now.Add(2 * time.Minute)
	hit, err := store.Hit(ctx, "ratelimit:10.0.0.1:login", 5, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), hit.Count, "live window keeps its count across the sweep")

	assert.Equal(t, 1, store.size())
}
