package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/travelmate/travelmate-ai/internal/chat"
	"github.com/travelmate/travelmate-ai/internal/plans"
	"github.com/travelmate/travelmate-ai/internal/trips"
)

// intake logs the user's turn, assembles the multi-turn transcript and runs
// requirements extraction. Every phase starts here.
func (d *Deps) intake(ctx context.Context, userID int64, input, phase string) (*trips.Requirements, error) {
	return d.intakeWith(ctx, userID, input, phase, "")
}

// intakeWith is intake with an extra transcript preamble. The preamble
// carries turns cached from an earlier incomplete conversation, so they stay
// visible to the extractor even when the context builder resets on a trigger
// phrase.
func (d *Deps) intakeWith(ctx context.Context, userID int64, input, phase, preamble string) (*trips.Requirements, error) {
	if _, err := d.Chat.Save(ctx, &chat.Message{
		UserID:  userID,
		Role:    chat.RoleUser,
		Phase:   phase,
		Content: input,
	}); err != nil {
		return nil, fmt.Errorf("orchestrator: save user message: %w", err)
	}

	conversation, err := d.Context.Build(ctx, userID, input)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build context: %w", err)
	}
	if preamble != "" {
		conversation = preamble + "\n" + conversation
	}

	start := time.Now()
	req, err := d.Extractor.Extract(ctx, conversation)
	d.Metrics.ObserveLLMLatency("extractor", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("orchestrator: extract requirements: %w", err)
	}
	return req, nil
}

// buildPlan runs the planner and records its latency.
func (d *Deps) buildPlan(ctx context.Context, trip *trips.Trip) (*plans.TravelPlan, error) {
	start := time.Now()
	plan, err := d.Planner.BuildPlan(ctx, trip)
	d.Metrics.ObserveLLMLatency("planner", time.Since(start).Seconds())
	return plan, err
}

// optimize runs the optimizer and records its latency.
func (d *Deps) optimize(ctx context.Context, plan *plans.TravelPlan, destination string) *plans.OptimizationResult {
	start := time.Now()
	opt := d.Optimizer.Optimize(ctx, plan, destination)
	d.Metrics.ObserveLLMLatency("optimizer", time.Since(start).Seconds())
	return opt
}

// incompleteResult records the follow-up question as an assistant turn and
// returns the INCOMPLETE outcome the caller hands back to the client.
func (d *Deps) incompleteResult(ctx context.Context, userID int64, phase string, req *trips.Requirements) *PlanResult {
	d.logAssistant(ctx, userID, nil, phase, req.AgentMessage)
	d.Metrics.ObservePlanning(phase, "incomplete")
	return &PlanResult{
		Status:        StatusIncomplete,
		AgentMessage:  req.AgentMessage,
		MissingFields: req.MissingFields,
		Requirements:  req,
	}
}

// createTrip converts complete requirements into a persisted draft trip.
// Date validation failures are conversational, not fatal: the user gave us
// dates we cannot plan for, so we ask again instead of erroring.
func (d *Deps) createTrip(ctx context.Context, userID int64, phase string, req *trips.Requirements) (*trips.Trip, *PlanResult, error) {
	title := fmt.Sprintf("Trip to %s", req.Destination)
	trip, err := req.ToTrip(userID, phase, title)
	if err != nil {
		return nil, nil, fmt.Errorf("orchestrator: convert requirements: %w", err)
	}

	created, err := d.Trips.Create(ctx, trip)
	if err != nil {
		if result := d.dateProblemResult(ctx, userID, phase, err); result != nil {
			return nil, result, nil
		}
		return nil, nil, fmt.Errorf("orchestrator: create trip: %w", err)
	}
	return created, nil, nil
}

// dateProblemResult maps date validation errors to an INCOMPLETE result, or
// returns nil for errors that should propagate.
func (d *Deps) dateProblemResult(ctx context.Context, userID int64, phase string, err error) *PlanResult {
	var message string
	var fields []string
	switch {
	case errors.Is(err, trips.ErrStartNotFuture):
		message = "The trip start date must be in the future. When would you like to depart?"
		fields = []string{"trip_startdate"}
	case errors.Is(err, trips.ErrEndBeforeStart):
		message = "The trip end date must be after the start date. When would you like to return?"
		fields = []string{"trip_enddate"}
	default:
		return nil
	}

	d.logAssistant(ctx, userID, nil, phase, message)
	d.Metrics.ObservePlanning(phase, "incomplete")
	return &PlanResult{
		Status:        StatusIncomplete,
		AgentMessage:  message,
		MissingFields: fields,
	}
}

// persistPlan stores the plan as the trip's next version.
func (d *Deps) persistPlan(ctx context.Context, tripID int64, plan *plans.TravelPlan) (*plans.Record, error) {
	version, err := d.Plans.NextVersion(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: next plan version: %w", err)
	}
	record, err := plans.RecordFromTravelPlan(plan, tripID, version)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: serialize plan: %w", err)
	}
	saved, err := d.Plans.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: save plan: %w", err)
	}
	return saved, nil
}

// logAssistant appends an assistant turn to the chat history. History write
// failures are logged and swallowed; they must not abort a planning pass that
// already produced a result.
func (d *Deps) logAssistant(ctx context.Context, userID int64, tripID *int64, phase, content string) {
	if content == "" {
		return
	}
	if _, err := d.Chat.Save(ctx, &chat.Message{
		UserID:  userID,
		TripID:  tripID,
		Role:    chat.RoleAssistant,
		Phase:   phase,
		Content: content,
	}); err != nil {
		d.logger().Error("failed to save assistant message", "error", err, "user_id", userID)
	}
}

// planSummary renders the traveler-facing recap saved to the chat history
// after a successful planning pass.
func planSummary(trip *trips.Trip, plan *plans.TravelPlan, opt *plans.OptimizationResult, version int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your %s trip is planned! Route: %s, %s to %s.",
		trip.Purpose, trip.RouteDisplay(),
		trip.StartDate.Format("2006-01-02"), trip.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&b, " Estimated cost: %.2f %s for %d travelers.",
		plan.TotalEstimatedCost, trip.Currency, trip.TotalTravelers())
	fmt.Fprintf(&b, " %d hotel and %d flight options shortlisted (plan v%d).",
		plan.HotelCount(), plan.FlightCount(), version)
	if opt != nil && opt.HasSavings() {
		fmt.Fprintf(&b, " The optimizer found potential savings of %.2f %s.", opt.CostSavings, trip.Currency)
	}
	b.WriteString(" Reply to approve or request changes.")
	return b.String()
}
