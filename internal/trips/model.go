package trips

import (
	"fmt"
	"time"
)

// Trip lifecycle statuses.
const (
	StatusDraft      = "draft"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ValidStatus reports whether s is a recognized trip status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Trip represents one planning session for a user.
type Trip struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Phase             string    `json:"phase"`
	Title             string    `json:"title"`
	Origin            string    `json:"origin"`
	Destination       string    `json:"destination"`
	StartDate         time.Time `json:"trip_startdate"`
	EndDate           time.Time `json:"trip_enddate"`
	AccommodationType string    `json:"accommodation_type"`
	NoOfAdults        int       `json:"no_of_adults"`
	NoOfChildren      int       `json:"no_of_children"`
	Budget            float64   `json:"budget"`
	Currency          string    `json:"currency"`
	Status            string    `json:"trip_status"`
	Purpose           string    `json:"purpose"`
	TravelPreferences string    `json:"travel_preferences"`
	TravelConstraints string    `json:"travel_constraints"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Validate checks trip invariants. The future-start rule applies only to new
// trips; persisted trips with past dates re-validate cleanly.
func (t *Trip) Validate(isNew bool) error {
	if !t.EndDate.After(t.StartDate) {
		return ErrEndBeforeStart
	}
	if isNew && !t.StartDate.After(today()) {
		return ErrStartNotFuture
	}
	if t.NoOfAdults < 1 || t.NoOfChildren < 0 {
		return ErrInvalidTravelers
	}
	if t.Budget < 0 {
		return ErrNegativeBudget
	}
	if t.Status != "" && !ValidStatus(t.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// DurationDays returns the trip length in days, inclusive of both endpoints.
func (t *Trip) DurationDays() int {
	return int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
}

// TotalTravelers returns the number of travelers on the trip.
func (t *Trip) TotalTravelers() int {
	return t.NoOfAdults + t.NoOfChildren
}

// DailyBudget returns the budget per day, or 0 when no budget is set.
func (t *Trip) DailyBudget() float64 {
	if t.Budget <= 0 {
		return 0
	}
	return t.Budget / float64(t.DurationDays())
}

// RouteDisplay formats the trip route for summaries.
func (t *Trip) RouteDisplay() string {
	return fmt.Sprintf("%s -> %s", t.Origin, t.Destination)
}

// today returns the current date truncated to midnight UTC.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
