package orchestrator

import (
	"context"
	"fmt"

	"github.com/travelmate/travelmate-ai/internal/plans"
	"github.com/travelmate/travelmate-ai/internal/trips"
)

// Graph node names. The planning flow is expressed as an explicit state
// machine so failures route through a recovery node instead of aborting.
const (
	nodeCollect  = "collect"
	nodePlan     = "plan"
	nodeRecover  = "recover"
	nodeOptimize = "optimize"
	nodeDone     = "done"
)

const maxPlanAttempts = 2

// graphState is the mutable state threaded through the nodes of one run.
type graphState struct {
	userID       int64
	input        string
	requirements *trips.Requirements
	trip         *trips.Trip
	plan         *plans.TravelPlan
	planErr      error
	planAttempts int
	result       *PlanResult
}

type nodeFunc func(ctx context.Context, st *graphState) (string, error)

// Graph runs the planning agents as a node graph with an error-recovery
// edge: a failed plan build is retried before the run is abandoned.
type Graph struct {
	deps  Deps
	nodes map[string]nodeFunc
}

// NewGraph creates the graph orchestrator.
func NewGraph(deps Deps) *Graph {
	mustHaveCore(deps)
	g := &Graph{deps: deps}
	g.nodes = map[string]nodeFunc{
		nodeCollect:  g.collect,
		nodePlan:     g.buildPlan,
		nodeRecover:  g.recover,
		nodeOptimize: g.optimize,
	}
	return g
}

// Phase returns the phase name.
func (g *Graph) Phase() string { return PhaseGraph }

// PlanTrip walks the graph from collect until a node reaches done.
func (g *Graph) PlanTrip(ctx context.Context, userID int64, input string) (*PlanResult, error) {
	st := &graphState{userID: userID, input: input}

	// Step bound guards against a wiring bug creating a cycle.
	current := nodeCollect
	for steps := 0; steps < 10; steps++ {
		node, ok := g.nodes[current]
		if !ok {
			g.deps.Metrics.ObservePlanning(PhaseGraph, "error")
			return nil, fmt.Errorf("orchestrator: unknown graph node %q", current)
		}
		next, err := node(ctx, st)
		if err != nil {
			g.deps.Metrics.ObservePlanning(PhaseGraph, "error")
			return nil, err
		}
		if next == nodeDone {
			return st.result, nil
		}
		current = next
	}
	g.deps.Metrics.ObservePlanning(PhaseGraph, "error")
	return nil, fmt.Errorf("orchestrator: graph did not terminate")
}

// collect runs intake and trip creation. Incomplete requirements finish the
// run with an INCOMPLETE result.
func (g *Graph) collect(ctx context.Context, st *graphState) (string, error) {
	d := &g.deps

	req, err := d.intake(ctx, st.userID, st.input, PhaseGraph)
	if err != nil {
		return "", err
	}
	st.requirements = req
	if !req.IsComplete() {
		st.result = d.incompleteResult(ctx, st.userID, PhaseGraph, req)
		return nodeDone, nil
	}

	trip, incomplete, err := d.createTrip(ctx, st.userID, PhaseGraph, req)
	if err != nil {
		return "", err
	}
	if incomplete != nil {
		st.result = incomplete
		return nodeDone, nil
	}
	st.trip = trip
	return nodePlan, nil
}

// buildPlan attempts one plan build. Failure routes to the recovery node.
func (g *Graph) buildPlan(ctx context.Context, st *graphState) (string, error) {
	st.planAttempts++
	plan, err := g.deps.buildPlan(ctx, st.trip)
	if err != nil {
		st.planErr = err
		return nodeRecover, nil
	}
	st.plan = plan
	st.planErr = nil
	return nodeOptimize, nil
}

// recover decides whether a failed build is retried. The retry budget is
// small; transient model failures recover, persistent ones surface.
func (g *Graph) recover(ctx context.Context, st *graphState) (string, error) {
	if st.planAttempts < maxPlanAttempts {
		g.deps.logger().Warn("plan build failed, retrying",
			"user_id", st.userID, "trip_id", st.trip.ID, "attempt", st.planAttempts, "error", st.planErr)
		return nodePlan, nil
	}
	return "", fmt.Errorf("orchestrator: plan build failed after %d attempts: %w", st.planAttempts, st.planErr)
}

// optimize persists the plan, runs the optimizer and finishes the run.
func (g *Graph) optimize(ctx context.Context, st *graphState) (string, error) {
	d := &g.deps

	record, err := d.persistPlan(ctx, st.trip.ID, st.plan)
	if err != nil {
		return "", err
	}

	opt := d.optimize(ctx, st.plan, st.trip.Destination)

	summary := planSummary(st.trip, st.plan, opt, record.Version)
	d.logAssistant(ctx, st.userID, &st.trip.ID, PhaseGraph, summary)
	d.Metrics.ObservePlanning(PhaseGraph, "optimized")
	d.logger().Info("graph planning complete",
		"user_id", st.userID, "trip_id", st.trip.ID, "plan_id", record.ID,
		"version", record.Version, "plan_attempts", st.planAttempts)

	st.result = &PlanResult{
		Status:       StatusOptimized,
		AgentMessage: summary,
		TripID:       st.trip.ID,
		PlanID:       record.ID,
		Version:      record.Version,
		Requirements: st.requirements,
		Plan:         st.plan,
		Optimization: opt,
	}
	return nodeDone, nil
}
