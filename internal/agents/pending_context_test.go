package agents

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelmate/travelmate-ai/internal/trips"
)

func newPendingStore(t *testing.T, ttl time.Duration, maxTurns int) (*PendingContextStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewPendingContextStore(client, nil, ttl, maxTurns), mr
}

func TestPendingContextRoundTrip(t *testing.T) {
	store, _ := newPendingStore(t, time.Minute, 10)
	ctx := context.Background()

	reqs := trips.NewRequirements(trips.Requirements{Mode: trips.ModeMissing, Destination: "Goa"})
	pending := &PendingContext{
		Turns:        []string{"User: plan a trip", "Assistant: where to?", "User: Goa"},
		Requirements: &reqs,
	}
	require.NoError(t, store.Save(ctx, 42, pending))

	loaded, err := store.Load(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, pending.Turns, loaded.Turns)
	require.NotNil(t, loaded.Requirements)
	assert.Equal(t, "Goa", loaded.Requirements.Destination)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestPendingContextLoadMissingReturnsNil(t *testing.T) {
	store, _ := newPendingStore(t, time.Minute, 10)

	loaded, err := store.Load(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestPendingContextSaveTrimsOldTurns(t *testing.T) {
	store, _ := newPendingStore(t, time.Minute, 3)
	ctx := context.Background()

	pending := &PendingContext{Turns: []string{"one", "two", "three", "four", "five"}}
	require.NoError(t, store.Save(ctx, 42, pending))

	loaded, err := store.Load(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "four", "five"}, loaded.Turns)
}

func TestPendingContextExpires(t *testing.T) {
	store, mr := newPendingStore(t, time.Minute, 10)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 42, &PendingContext{Turns: []string{"User: hi"}}))

	mr.FastForward(2 * time.Minute)

	loaded, err := store.Load(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestPendingContextClear(t *testing.T) {
	store, _ := newPendingStore(t, time.Minute, 10)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 42, &PendingContext{Turns: []string{"User: hi"}}))
	require.NoError(t, store.Clear(ctx, 42))

	loaded, err := store.Load(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
