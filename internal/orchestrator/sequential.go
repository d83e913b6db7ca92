package orchestrator

import (
	"context"
)

// Sequential runs the agents as a fixed pipeline: extract, plan, optimize.
// It is the default phase and the baseline the other strategies build on.
type Sequential struct {
	deps Deps
}

// NewSequential creates the sequential orchestrator.
func NewSequential(deps Deps) *Sequential {
	mustHaveCore(deps)
	return &Sequential{deps: deps}
}

// Phase returns the phase name.
func (s *Sequential) Phase() string { return PhaseSequential }

// PlanTrip runs one planning turn. Incomplete requirements end the turn with
// a follow-up question; complete requirements flow through trip creation,
// plan building, persistence and optimization.
func (s *Sequential) PlanTrip(ctx context.Context, userID int64, input string) (*PlanResult, error) {
	d := &s.deps

	req, err := d.intake(ctx, userID, input, PhaseSequential)
	if err != nil {
		d.Metrics.ObservePlanning(PhaseSequential, "error")
		return nil, err
	}
	if !req.IsComplete() {
		return d.incompleteResult(ctx, userID, PhaseSequential, req), nil
	}

	trip, incomplete, err := d.createTrip(ctx, userID, PhaseSequential, req)
	if err != nil {
		d.Metrics.ObservePlanning(PhaseSequential, "error")
		return nil, err
	}
	if incomplete != nil {
		return incomplete, nil
	}

	plan, err := d.buildPlan(ctx, trip)
	if err != nil {
		d.Metrics.ObservePlanning(PhaseSequential, "error")
		return nil, err
	}

	record, err := d.persistPlan(ctx, trip.ID, plan)
	if err != nil {
		d.Metrics.ObservePlanning(PhaseSequential, "error")
		return nil, err
	}

	opt := d.optimize(ctx, plan, trip.Destination)

	summary := planSummary(trip, plan, opt, record.Version)
	d.logAssistant(ctx, userID, &trip.ID, PhaseSequential, summary)
	d.Metrics.ObservePlanning(PhaseSequential, "optimized")
	d.logger().Info("sequential planning complete",
		"user_id", userID, "trip_id", trip.ID, "plan_id", record.ID, "version", record.Version)

	return &PlanResult{
		Status:       StatusOptimized,
		AgentMessage: summary,
		TripID:       trip.ID,
		PlanID:       record.ID,
		Version:      record.Version,
		Requirements: req,
		Plan:         plan,
		Optimization: opt,
	}, nil
}

// mustHaveCore panics on missing collaborators shared by every phase.
// Wiring bugs should fail at startup, not on the first request.
func mustHaveCore(deps Deps) {
	if deps.Context == nil {
		panic("orchestrator: context source cannot be nil")
	}
	if deps.Extractor == nil {
		panic("orchestrator: extractor cannot be nil")
	}
	if deps.Planner == nil {
		panic("orchestrator: planner cannot be nil")
	}
	if deps.Optimizer == nil {
		panic("orchestrator: optimizer cannot be nil")
	}
	if deps.Trips == nil {
		panic("orchestrator: trip store cannot be nil")
	}
	if deps.Plans == nil {
		panic("orchestrator: plan store cannot be nil")
	}
	if deps.Chat == nil {
		panic("orchestrator: chat log cannot be nil")
	}
}
