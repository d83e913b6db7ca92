package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/travelmate/travelmate-ai/internal/chat"
	"github.com/travelmate/travelmate-ai/internal/observability/metrics"
	"github.com/travelmate/travelmate-ai/internal/plans"
	"github.com/travelmate/travelmate-ai/internal/trips"
	"github.com/travelmate/travelmate-ai/pkg/logging"
)

// Phase names accepted by the registry.
const (
	PhaseSequential = "sequential"
	PhaseGroupChat  = "groupchat"
	PhaseGraph      = "graph"
)

// Planning outcome statuses.
const (
	StatusIncomplete  = "INCOMPLETE"
	StatusPlanned     = "PLANNED"
	StatusOptimized   = "OPTIMIZED"
	StatusNoConsensus = "NO_CONSENSUS"
)

// ErrUnsupportedPhase is returned for phase names no orchestrator handles.
var ErrUnsupportedPhase = errors.New("orchestrator: unsupported phase")

// PlanResult is the outcome of one planning turn.
type PlanResult struct {
	Status        string                     `json:"status"`
	AgentMessage  string                     `json:"agent_message,omitempty"`
	MissingFields []string                   `json:"missing_fields,omitempty"`
	TripID        int64                      `json:"trip_id,omitempty"`
	PlanID        int64                      `json:"plan_id,omitempty"`
	Version       int                        `json:"version,omitempty"`
	Requirements  *trips.Requirements        `json:"requirements,omitempty"`
	Plan          *plans.TravelPlan          `json:"plan,omitempty"`
	Optimization  *plans.OptimizationResult  `json:"optimization,omitempty"`
	Summary       *plans.ConversationSummary `json:"conversation_summary,omitempty"`
}

// Orchestrator runs one planning strategy end to end.
type Orchestrator interface {
	Phase() string
	PlanTrip(ctx context.Context, userID int64, input string) (*PlanResult, error)
}

// ContextSource assembles the multi-turn transcript for extraction.
type ContextSource interface {
	Build(ctx context.Context, userID int64, newInput string) (string, error)
}

// Extractor turns a transcript into normalized requirements.
type Extractor interface {
	Extract(ctx context.Context, conversation string) (*trips.Requirements, error)
}

// Planner builds a travel plan for a created trip.
type Planner interface {
	BuildPlan(ctx context.Context, trip *trips.Trip) (*plans.TravelPlan, error)
}

// Optimizer reviews a plan for savings. It never fails.
type Optimizer interface {
	Optimize(ctx context.Context, plan *plans.TravelPlan, destination string) *plans.OptimizationResult
}

// TripStore persists trips.
type TripStore interface {
	Create(ctx context.Context, trip *trips.Trip) (*trips.Trip, error)
	GetByID(ctx context.Context, id int64) (*trips.Trip, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// PlanStore persists versioned plan records.
type PlanStore interface {
	Create(ctx context.Context, record *plans.Record) (*plans.Record, error)
	GetByTripID(ctx context.Context, tripID int64, version *int) (*plans.Record, error)
	NextVersion(ctx context.Context, tripID int64) (int, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// ChatLog appends messages to the conversation history.
type ChatLog interface {
	Save(ctx context.Context, msg *chat.Message) (*chat.Message, error)
}

// Deps are the collaborators shared by every orchestration phase.
type Deps struct {
	Context   ContextSource
	Extractor Extractor
	Planner   Planner
	Optimizer Optimizer
	Trips     TripStore
	Plans     PlanStore
	Chat      ChatLog
	Metrics   *metrics.PlanningMetrics
	Logger    *logging.Logger
}

func (d *Deps) logger() *logging.Logger {
	if d.Logger == nil {
		d.Logger = logging.Default()
	}
	return d.Logger
}

// Registry maps phase names to orchestrators. It is assembled once at
// startup; unknown phases are rejected rather than silently defaulted.
type Registry struct {
	orchestrators map[string]Orchestrator
	defaultPhase  string
}

// NewRegistry creates an empty registry with a default phase for requests
// that omit one.
func NewRegistry(defaultPhase string) *Registry {
	return &Registry{
		orchestrators: make(map[string]Orchestrator),
		defaultPhase:  normalizePhase(defaultPhase),
	}
}

// Register adds an orchestrator under its phase name.
func (r *Registry) Register(o Orchestrator) {
	r.orchestrators[normalizePhase(o.Phase())] = o
}

// Get resolves a phase name. An empty phase resolves to the default.
func (r *Registry) Get(phase string) (Orchestrator, error) {
	name := normalizePhase(phase)
	if name == "" {
		name = r.defaultPhase
	}
	o, ok := r.orchestrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPhase, name)
	}
	return o, nil
}

// Phases lists the registered phase names.
func (r *Registry) Phases() []string {
	names := make([]string, 0, len(r.orchestrators))
	for name := range r.orchestrators {
		names = append(names, name)
	}
	return names
}

func normalizePhase(phase string) string {
	return strings.ToLower(strings.TrimSpace(phase))
}
