package plans

import (
	"encoding/json"
	"fmt"
	"time"
)

// Plan statuses. Confirmed exists only as an API-settable status; the
// planning flow itself moves draft -> approved or draft -> rejected.
const (
	StatusDraft     = "draft"
	StatusConfirmed = "confirmed"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// ValidStatus reports whether s is a settable plan status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Record is the persisted form of a TravelPlan: the structured parts are
// stored as JSON text blobs, plus versioning and approval state.
type Record struct {
	ID                 int64     `json:"id"`
	TripID             int64     `json:"trip_id"`
	ItineraryJSON      string    `json:"itinerary_json"`
	HotelsJSON         string    `json:"hotels_json"`
	FlightsJSON        string    `json:"flights_json"`
	DailyBudget        float64   `json:"daily_budget"`
	TotalEstimatedCost float64   `json:"total_estimated_cost"`
	GeneratedAt        time.Time `json:"generated_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Status             string    `json:"status"`
	Version            int       `json:"version"`
	AgentMetadata      string    `json:"agent_metadata,omitempty"`
}

// RecordFromTravelPlan serializes a TravelPlan for persistence as the given
// version, always in draft status.
func RecordFromTravelPlan(plan *TravelPlan, tripID int64, version int) (*Record, error) {
	itinerary, err := json.Marshal(plan.Itinerary)
	if err != nil {
		return nil, fmt.Errorf("plans: marshal itinerary: %w", err)
	}
	hotels, err := json.Marshal(plan.Hotels)
	if err != nil {
		return nil, fmt.Errorf("plans: marshal hotels: %w", err)
	}
	flights, err := json.Marshal(plan.Flights)
	if err != nil {
		return nil, fmt.Errorf("plans: marshal flights: %w", err)
	}

	return &Record{
		TripID:             tripID,
		ItineraryJSON:      string(itinerary),
		HotelsJSON:         string(hotels),
		FlightsJSON:        string(flights),
		DailyBudget:        plan.DailyBudget,
		TotalEstimatedCost: plan.TotalEstimatedCost,
		Status:             StatusDraft,
		Version:            version,
	}, nil
}

// TravelPlan deserializes the record back into its transfer shape. Empty or
// corrupt blobs degrade to placeholders rather than failing.
func (r *Record) TravelPlan() *TravelPlan {
	plan := &TravelPlan{
		Itinerary:          "Itinerary not available",
		Hotels:             []HotelSuggestion{},
		Flights:            []FlightSuggestion{},
		DailyBudget:        r.DailyBudget,
		TotalEstimatedCost: r.TotalEstimatedCost,
	}

	if r.ItineraryJSON != "" {
		var itinerary any
		if err := json.Unmarshal([]byte(r.ItineraryJSON), &itinerary); err == nil {
			plan.Itinerary = itinerary
		}
	}
	if r.HotelsJSON != "" {
		var hotels []HotelSuggestion
		if err := json.Unmarshal([]byte(r.HotelsJSON), &hotels); err == nil && hotels != nil {
			plan.Hotels = hotels
		}
	}
	if r.FlightsJSON != "" {
		var flights []FlightSuggestion
		if err := json.Unmarshal([]byte(r.FlightsJSON), &flights); err == nil && flights != nil {
			plan.Flights = flights
		}
	}
	return plan
}
