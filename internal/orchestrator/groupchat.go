package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/travelmate/travelmate-ai/internal/agents"
	"github.com/travelmate/travelmate-ai/internal/plans"
	"github.com/travelmate/travelmate-ai/internal/trips"
)

// PendingStore caches in-progress requirements between turns so a group-chat
// conversation can be resumed cheaply. Implemented by agents.PendingContextStore.
type PendingStore interface {
	Load(ctx context.Context, userID int64) (*agents.PendingContext, error)
	Save(ctx context.Context, userID int64, pending *agents.PendingContext) error
	Clear(ctx context.Context, userID int64) error
}

const defaultDebateRounds = 3

const groupChatSystemPrompt = `You moderate a panel of three travel planning specialists debating a draft travel plan:
- Budget Analyst: challenges costs, finds cheaper alternatives, protects the traveler's budget.
- Itinerary Specialist: checks pacing, routing and that every day is well used.
- Local Experience Expert: pushes for authentic local food, culture and activities.

Given the trip details and the current draft plan, run one debate round and respond with ONLY a JSON object:
{
  "consensus_reached": true or false,
  "final_decision": "one sentence on where the panel stands",
  "debated_topics": ["topic", ...],
  "contributions": [
    {"agent_name": "Budget Analyst", "key_points": ["..."], "tools_used": []}
  ],
  "plan": { ... the full revised plan in the same shape as the draft, or omit if unchanged ... }
}

Declare consensus only when all three specialists accept the plan. Do not include markdown fences.`

// debateRound is one round of panel output.
type debateRound struct {
	ConsensusReached bool                      `json:"consensus_reached"`
	FinalDecision    string                    `json:"final_decision"`
	DebatedTopics    []string                  `json:"debated_topics"`
	Contributions    []plans.AgentContribution `json:"contributions"`
	Plan             json.RawMessage           `json:"plan"`
}

// GroupChat plans through a simulated specialist panel. The draft plan is
// debated for up to maxRounds rounds; without consensus nothing is persisted.
type GroupChat struct {
	deps        Deps
	llm         agents.LLMClient
	pending     PendingStore
	model       string
	maxTokens   int32
	temperature float32
	maxRounds   int
}

// GroupChatOptions tune the debate loop.
type GroupChatOptions struct {
	Model       string
	MaxTokens   int32
	Temperature float32
	MaxRounds   int
}

// NewGroupChat creates the group-chat orchestrator. The pending store is
// optional; without it multi-turn state lives only in the chat history.
func NewGroupChat(deps Deps, llm agents.LLMClient, pending PendingStore, opts GroupChatOptions) *GroupChat {
	mustHaveCore(deps)
	if llm == nil {
		panic("orchestrator: llm client cannot be nil")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 8192
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = defaultDebateRounds
	}
	return &GroupChat{
		deps:        deps,
		llm:         llm,
		pending:     pending,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		maxRounds:   opts.MaxRounds,
	}
}

// Phase returns the phase name.
func (g *GroupChat) Phase() string { return PhaseGroupChat }

// PlanTrip runs one group-chat planning turn.
func (g *GroupChat) PlanTrip(ctx context.Context, userID int64, input string) (*PlanResult, error) {
	d := &g.deps

	req, err := d.intakeWith(ctx, userID, input, PhaseGroupChat, g.pendingPreamble(ctx, userID))
	if err != nil {
		d.Metrics.ObservePlanning(PhaseGroupChat, "error")
		return nil, err
	}
	if !req.IsComplete() {
		g.rememberPending(ctx, userID, input, req)
		return d.incompleteResult(ctx, userID, PhaseGroupChat, req), nil
	}

	trip, incomplete, err := d.createTrip(ctx, userID, PhaseGroupChat, req)
	if err != nil {
		d.Metrics.ObservePlanning(PhaseGroupChat, "error")
		return nil, err
	}
	if incomplete != nil {
		g.rememberPending(ctx, userID, input, req)
		return incomplete, nil
	}
	g.clearPending(ctx, userID)

	draft, err := d.buildPlan(ctx, trip)
	if err != nil {
		d.Metrics.ObservePlanning(PhaseGroupChat, "error")
		return nil, err
	}

	plan, summary := g.debate(ctx, trip, draft)
	if !summary.ConsensusReached {
		message := fmt.Sprintf(
			"The planning panel could not agree on a plan for %s after %d rounds. %s Please adjust your requirements and try again.",
			trip.Destination, summary.Rounds, summary.FinalDecision)
		d.logAssistant(ctx, userID, &trip.ID, PhaseGroupChat, message)
		d.Metrics.ObservePlanning(PhaseGroupChat, "no_consensus")
		return &PlanResult{
			Status:       StatusNoConsensus,
			AgentMessage: message,
			TripID:       trip.ID,
			Requirements: req,
			Plan:         plan,
			Summary:      summary,
		}, nil
	}

	record, err := d.persistPlan(ctx, trip.ID, plan)
	if err != nil {
		d.Metrics.ObservePlanning(PhaseGroupChat, "error")
		return nil, err
	}

	message := planSummary(trip, plan, nil, record.Version)
	d.logAssistant(ctx, userID, &trip.ID, PhaseGroupChat, message)
	d.Metrics.ObservePlanning(PhaseGroupChat, "planned")
	d.logger().Info("group chat planning complete",
		"user_id", userID, "trip_id", trip.ID, "plan_id", record.ID, "rounds", summary.Rounds)

	return &PlanResult{
		Status:       StatusPlanned,
		AgentMessage: message,
		TripID:       trip.ID,
		PlanID:       record.ID,
		Version:      record.Version,
		Requirements: req,
		Plan:         plan,
		Summary:      summary,
	}, nil
}

// debate runs up to maxRounds panel rounds over the draft plan. Rounds that
// fail to produce parseable output count against the limit.
func (g *GroupChat) debate(ctx context.Context, trip *trips.Trip, draft *plans.TravelPlan) (*plans.TravelPlan, *plans.ConversationSummary) {
	plan := draft
	summary := &plans.ConversationSummary{FinalDecision: "No panel output produced"}

	tripJSON, err := json.Marshal(trip)
	if err != nil {
		tripJSON = []byte("{}")
	}

	for round := 1; round <= g.maxRounds; round++ {
		summary.Rounds = round

		planJSON, err := json.Marshal(plan)
		if err != nil {
			planJSON = []byte("{}")
		}
		prompt := fmt.Sprintf("Round %d of %d.\n\nTrip details:\n%s\n\nCurrent draft plan:\n%s",
			round, g.maxRounds, tripJSON, planJSON)

		resp, err := g.llm.Complete(ctx, agents.LLMRequest{
			Model:       g.model,
			System:      []string{groupChatSystemPrompt},
			Messages:    []agents.ChatMessage{{Role: agents.ChatRoleUser, Content: prompt}},
			MaxTokens:   g.maxTokens,
			Temperature: g.temperature,
		})
		if err != nil {
			g.deps.logger().Warn("debate round failed", "round", round, "error", err)
			continue
		}

		outcome, err := parseDebateRound(resp.Text)
		if err != nil {
			g.deps.logger().Warn("unparseable debate round", "round", round, "error", err)
			continue
		}

		summary.FinalDecision = outcome.FinalDecision
		summary.DebatedTopics = mergeTopics(summary.DebatedTopics, outcome.DebatedTopics)
		if len(outcome.Plan) > 0 {
			var revised plans.TravelPlan
			if err := json.Unmarshal(outcome.Plan, &revised); err == nil {
				plan = &revised
			}
		}
		if outcome.ConsensusReached {
			summary.ConsensusReached = true
			return plan, summary
		}
	}
	return plan, summary
}

func parseDebateRound(raw string) (*debateRound, error) {
	repaired, err := agents.RepairJSON(raw)
	if err != nil {
		return nil, err
	}
	var outcome debateRound
	if err := json.Unmarshal([]byte(repaired), &outcome); err != nil {
		return nil, fmt.Errorf("orchestrator: decode debate round: %w", err)
	}
	return &outcome, nil
}

// mergeTopics appends new topics, dropping duplicates case-insensitively.
func mergeTopics(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, topic := range existing {
		seen[strings.ToLower(topic)] = true
	}
	for _, topic := range incoming {
		key := strings.ToLower(topic)
		if topic == "" || seen[key] {
			continue
		}
		seen[key] = true
		existing = append(existing, topic)
	}
	return existing
}

// pendingPreamble renders the turns cached from an unfinished conversation
// as transcript lines for the extractor.
func (g *GroupChat) pendingPreamble(ctx context.Context, userID int64) string {
	if g.pending == nil {
		return ""
	}
	pending, err := g.pending.Load(ctx, userID)
	if err != nil {
		g.deps.logger().Warn("failed to load pending context", "error", err, "user_id", userID)
		return ""
	}
	if pending == nil || len(pending.Turns) == 0 {
		return ""
	}
	lines := make([]string, 0, len(pending.Turns))
	for _, turn := range pending.Turns {
		lines = append(lines, "User: "+turn)
	}
	return strings.Join(lines, "\n")
}

// rememberPending caches the turn and partial requirements. Failures only
// degrade the next turn's context, so they are logged and swallowed.
func (g *GroupChat) rememberPending(ctx context.Context, userID int64, input string, req *trips.Requirements) {
	if g.pending == nil {
		return
	}
	pending, err := g.pending.Load(ctx, userID)
	if err != nil {
		g.deps.logger().Warn("failed to load pending context", "error", err, "user_id", userID)
		pending = nil
	}
	if pending == nil {
		pending = &agents.PendingContext{}
	}
	pending.Turns = append(pending.Turns, input)
	pending.Requirements = req
	if err := g.pending.Save(ctx, userID, pending); err != nil {
		g.deps.logger().Warn("failed to save pending context", "error", err, "user_id", userID)
	}
}

func (g *GroupChat) clearPending(ctx context.Context, userID int64) {
	if g.pending == nil {
		return
	}
	if err := g.pending.Clear(ctx, userID); err != nil {
		g.deps.logger().Warn("failed to clear pending context", "error", err, "user_id", userID)
	}
}
