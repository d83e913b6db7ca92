package notify

import (
	"context"
	"fmt"

	"github.com/travelmate/travelmate-ai/internal/plans"
	"github.com/travelmate/travelmate-ai/internal/trips"
	"github.com/travelmate/travelmate-ai/internal/users"
	"github.com/travelmate/travelmate-ai/pkg/logging"
)

// Service sends traveler-facing notifications. A nil email sender disables
// it without affecting callers.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// NotifyPlanApproved emails the traveler after they approve a plan. Failures
// are logged, not returned; approval must not depend on email delivery.
func (s *Service) NotifyPlanApproved(ctx context.Context, user *users.User, trip *trips.Trip, plan *plans.TravelPlan) {
	if s == nil || s.email == nil || user == nil || user.Email == "" {
		return
	}

	subject := fmt.Sprintf("Your trip to %s is confirmed", trip.Destination)
	body := fmt.Sprintf(`Hi %s,

Your travel plan is approved and your trip is confirmed!

Route: %s
Dates: %s to %s (%d days)
Travelers: %d
Estimated cost: %.2f %s
Hotels shortlisted: %d
Flights shortlisted: %d

Have a great trip!

TravelMate AI`,
		user.Name,
		trip.RouteDisplay(),
		trip.StartDate.Format("2006-01-02"),
		trip.EndDate.Format("2006-01-02"),
		trip.DurationDays(),
		trip.TotalTravelers(),
		plan.TotalEstimatedCost,
		trip.Currency,
		plan.HotelCount(),
		plan.FlightCount(),
	)

	msg := EmailMessage{
		To:      user.Email,
		ToName:  user.Name,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send approval email", "error", err, "trip_id", trip.ID, "to", user.Email)
		return
	}
	s.logger.Info("approval email sent", "trip_id", trip.ID, "to", user.Email)
}
