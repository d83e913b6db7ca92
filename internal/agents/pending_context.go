package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/travelmate/travelmate-ai/internal/trips"
)

// PendingContext holds the in-progress requirements gathering state for a
// user between turns. It exists only while requirements are incomplete; a
// completed extraction clears it.
type PendingContext struct {
	Turns        []string            `json:"turns"`
	Requirements *trips.Requirements `json:"requirements,omitempty"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// PendingContextStore keeps pending contexts in Redis with a TTL so an
// abandoned conversation expires on its own.
type PendingContextStore struct {
	redis    *redis.Client
	tracer   trace.Tracer
	ttl      time.Duration
	maxTurns int
}

// NewPendingContextStore creates a store. A non-positive TTL defaults to 30
// minutes, a non-positive maxTurns to 10.
func NewPendingContextStore(client *redis.Client, tracer trace.Tracer, ttl time.Duration, maxTurns int) *PendingContextStore {
	if client == nil {
		panic("agents: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("travelmate.internal.agents.pending")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &PendingContextStore{
		redis:    client,
		tracer:   tracer,
		ttl:      ttl,
		maxTurns: maxTurns,
	}
}

// Save persists the pending context, trimming to the newest maxTurns turns.
func (s *PendingContextStore) Save(ctx context.Context, userID int64, pending *PendingContext) error {
	ctx, span := s.tracer.Start(ctx, "agents.save_pending_context")
	defer span.End()

	if len(pending.Turns) > s.maxTurns {
		pending.Turns = pending.Turns[len(pending.Turns)-s.maxTurns:]
	}
	pending.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(pending)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("agents: failed to marshal pending context: %w", err)
	}
	if err := s.redis.Set(ctx, pendingKey(userID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("agents: failed to persist pending context: %w", err)
	}
	return nil
}

// Load retrieves the pending context for a user. A missing key returns nil
// without error.
func (s *PendingContextStore) Load(ctx context.Context, userID int64) (*PendingContext, error) {
	ctx, span := s.tracer.Start(ctx, "agents.load_pending_context")
	defer span.End()

	data, err := s.redis.Get(ctx, pendingKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("agents: failed to load pending context: %w", err)
	}

	var pending PendingContext
	if err := json.Unmarshal(data, &pending); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("agents: failed to decode pending context: %w", err)
	}
	return &pending, nil
}

// Clear removes the pending context once requirements are complete.
func (s *PendingContextStore) Clear(ctx context.Context, userID int64) error {
	ctx, span := s.tracer.Start(ctx, "agents.clear_pending_context")
	defer span.End()

	if err := s.redis.Del(ctx, pendingKey(userID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("agents: failed to clear pending context: %w", err)
	}
	return nil
}

func pendingKey(userID int64) string {
	return fmt.Sprintf("pending_context:%d", userID)
}
