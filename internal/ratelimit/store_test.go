package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexFilippov-it/scanrole-api/internal/ratelimit"
)

func TestHitWithinLimit(t *testing.T) {
	s := ratelimit.NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		st, err := s.Hit(ctx, "client", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, st.Allowed, "hit %d should be allowed", i+1)
		assert.Equal(t, 5-(i+1), st.Remaining)
	}
}

func TestHitExhaustedWindow(t *testing.T) {
	s := ratelimit.NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Hit(ctx, "client", 3, time.Minute)
		require.NoError(t, err)
	}

	st, err := s.Hit(ctx, "client", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, st.Allowed)
	assert.Equal(t, 0, st.Remaining)
	assert.Greater(t, st.RetryAfter, time.Duration(0))

	// Rejection must not consume the counter: the window still denies
	// with the same state.
	again, err := s.Hit(ctx, "client", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, again.Allowed)
	assert.Equal(t, st.ResetAt, again.ResetAt)
}

func TestWindowResets(t *testing.T) {
	s := ratelimit.NewMemoryStore()
	ctx := context.Background()

	_, err := s.Hit(ctx, "client", 1, 20*time.Millisecond)
	require.NoError(t, err)

	st, err := s.Hit(ctx, "client", 1, 20*time.Millisecond)
	require.NoError(t, err)
	require.False(t, st.Allowed)

	time.Sleep(30 * time.Millisecond)

	st, err = s.Hit(ctx, "client", 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, st.Allowed, "a fresh window should allow again")
	assert.Equal(t, 0, st.Remaining)
}

func TestKeysAreIndependent(t *testing.T) {
	s := ratelimit.NewMemoryStore()
	ctx := context.Background()

	_, err := s.Hit(ctx, "a", 1, time.Minute)
	require.NoError(t, err)

	st, err := s.Hit(ctx, "b", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, st.Allowed, "key b should have its own window")
}

func TestReset(t *testing.T) {
	s := ratelimit.NewMemoryStore()
	ctx := context.Background()

	_, err := s.Hit(ctx, "client", 1, time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx))

	st, err := s.Hit(ctx, "client", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, st.Allowed)
}

func TestPruneDropsOnlyExpiredWindows(t *testing.T) {
	s := ratelimit.NewMemoryStore()
	ctx := context.Background()

	_, err := s.Hit(ctx, "stale", 5, 10*time.Millisecond)
	require.NoError(t, err)
	_, err = s.Hit(ctx, "live", 5, time.Minute)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 1, s.Prune())

	// The live window survived pruning with its count intact.
	st, err := s.Hit(ctx, "live", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Remaining)
}
