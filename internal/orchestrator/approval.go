package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/travelmate/travelmate-ai/internal/chat"
	"github.com/travelmate/travelmate-ai/internal/plans"
	"github.com/travelmate/travelmate-ai/internal/trips"
	"github.com/travelmate/travelmate-ai/internal/users"
	"github.com/travelmate/travelmate-ai/pkg/logging"
)

// ErrNoPlanToApprove is returned when a trip has no plan versions yet.
var ErrNoPlanToApprove = errors.New("orchestrator: trip has no plan to approve")

// UserLookup resolves users for approval notifications.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

// Notifier delivers the approval confirmation. Implemented by notify.Service.
type Notifier interface {
	NotifyPlanApproved(ctx context.Context, user *users.User, trip *trips.Trip, plan *plans.TravelPlan)
}

// ApprovalResult is the outcome of an approval decision.
type ApprovalResult struct {
	TripID       int64  `json:"trip_id"`
	PlanID       int64  `json:"plan_id"`
	Version      int    `json:"version"`
	PlanStatus   string `json:"plan_status"`
	TripStatus   string `json:"trip_status"`
	AgentMessage string `json:"agent_message"`
}

// Approvals applies a user's approve or reject decision to the latest plan
// version. It is shared across phases; the decision semantics do not depend
// on how the plan was produced.
type Approvals struct {
	trips    TripStore
	plans    PlanStore
	chat     ChatLog
	users    UserLookup
	notifier Notifier
	logger   *logging.Logger
}

// NewApprovals creates the approval service. The notifier and user lookup
// are optional; without them approval skips the confirmation email.
func NewApprovals(tripStore TripStore, planStore PlanStore, chatLog ChatLog, userLookup UserLookup, notifier Notifier, logger *logging.Logger) *Approvals {
	if tripStore == nil {
		panic("orchestrator: trip store cannot be nil")
	}
	if planStore == nil {
		panic("orchestrator: plan store cannot be nil")
	}
	if chatLog == nil {
		panic("orchestrator: chat log cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Approvals{
		trips:    tripStore,
		plans:    planStore,
		chat:     chatLog,
		users:    userLookup,
		notifier: notifier,
		logger:   logger,
	}
}

// Decide applies the decision to the trip's latest plan version. Approval
// confirms the trip; rejection puts it back in draft so planning can continue.
func (a *Approvals) Decide(ctx context.Context, userID, tripID int64, approved bool, feedback, phase string) (*ApprovalResult, error) {
	trip, err := a.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load trip: %w", err)
	}

	record, err := a.plans.GetByTripID(ctx, tripID, nil)
	if err != nil {
		if errors.Is(err, plans.ErrPlanNotFound) {
			return nil, fmt.Errorf("%w: trip %d", ErrNoPlanToApprove, tripID)
		}
		return nil, fmt.Errorf("orchestrator: load plan: %w", err)
	}

	a.logFeedback(ctx, userID, tripID, phase, approved, feedback)

	if !approved {
		if err := a.plans.UpdateStatus(ctx, record.ID, plans.StatusRejected); err != nil {
			return nil, fmt.Errorf("orchestrator: reject plan: %w", err)
		}
		if err := a.trips.UpdateStatus(ctx, tripID, trips.StatusDraft); err != nil {
			return nil, fmt.Errorf("orchestrator: revert trip: %w", err)
		}
		message := fmt.Sprintf("Plan v%d for your trip to %s was set aside. Tell me what to change and I will plan again.",
			record.Version, trip.Destination)
		a.logger.Info("plan rejected", "trip_id", tripID, "plan_id", record.ID, "version", record.Version)
		return &ApprovalResult{
			TripID:       tripID,
			PlanID:       record.ID,
			Version:      record.Version,
			PlanStatus:   plans.StatusRejected,
			TripStatus:   trips.StatusDraft,
			AgentMessage: message,
		}, nil
	}

	if err := a.plans.UpdateStatus(ctx, record.ID, plans.StatusApproved); err != nil {
		return nil, fmt.Errorf("orchestrator: approve plan: %w", err)
	}
	if err := a.trips.UpdateStatus(ctx, tripID, trips.StatusConfirmed); err != nil {
		return nil, fmt.Errorf("orchestrator: confirm trip: %w", err)
	}
	trip.Status = trips.StatusConfirmed

	a.notifyApproved(ctx, userID, trip, record)

	message := fmt.Sprintf("Plan v%d approved. Your trip to %s is confirmed!", record.Version, trip.Destination)
	a.logger.Info("plan approved", "trip_id", tripID, "plan_id", record.ID, "version", record.Version)
	return &ApprovalResult{
		TripID:       tripID,
		PlanID:       record.ID,
		Version:      record.Version,
		PlanStatus:   plans.StatusApproved,
		TripStatus:   trips.StatusConfirmed,
		AgentMessage: message,
	}, nil
}

// logFeedback appends the decision to the chat history. Failures do not
// block the decision itself.
func (a *Approvals) logFeedback(ctx context.Context, userID, tripID int64, phase string, approved bool, feedback string) {
	content := "Plan approved"
	if !approved {
		content = "Plan rejected"
	}
	if feedback != "" {
		content = fmt.Sprintf("%s: %s", content, feedback)
	}
	if _, err := a.chat.Save(ctx, &chat.Message{
		UserID:  userID,
		TripID:  &tripID,
		Role:    chat.RoleUser,
		Phase:   phase,
		Content: content,
	}); err != nil {
		a.logger.Error("failed to log approval feedback", "error", err, "trip_id", tripID)
	}
}

func (a *Approvals) notifyApproved(ctx context.Context, userID int64, trip *trips.Trip, record *plans.Record) {
	if a.notifier == nil || a.users == nil {
		return
	}
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		a.logger.Error("failed to load user for approval email", "error", err, "user_id", userID)
		return
	}
	a.notifier.NotifyPlanApproved(ctx, user, trip, record.TravelPlan())
}
