package trips

import (
	"fmt"
	"strings"
	"time"
)

// Requirement modes.
const (
	ModeTrip    = "trip"
	ModeMissing = "missing"
)

// errMissing is the machine-readable marker carried by incomplete requirements.
const errMissing = "MISSING"

// requiredFields lists the six fields that make requirements complete, in the
// order missing-field lists are reported.
var requiredFields = []string{
	"origin",
	"destination",
	"trip_startdate",
	"trip_enddate",
	"no_of_adults",
	"budget",
}

// Requirements is the possibly-incomplete extraction of a user's trip
// request. It is assembled over one or more conversation turns and converted
// to a Trip only once complete.
type Requirements struct {
	Mode              string     `json:"mode"`
	Origin            string     `json:"origin,omitempty"`
	Destination       string     `json:"destination,omitempty"`
	StartDate         *time.Time `json:"trip_startdate,omitempty"`
	EndDate           *time.Time `json:"trip_enddate,omitempty"`
	NoOfAdults        int        `json:"no_of_adults"`
	NoOfChildren      int        `json:"no_of_children"`
	Budget            *float64   `json:"budget,omitempty"`
	Currency          string     `json:"currency"`
	AccommodationType string     `json:"accommodation_type"`
	Purpose           string     `json:"purpose"`
	TravelPreferences string     `json:"travel_preferences"`
	TravelConstraints string     `json:"travel_constraints"`
	Error             string     `json:"error,omitempty"`
	MissingFields     []string   `json:"missing_fields,omitempty"`
	AgentMessage      string     `json:"agent_message,omitempty"`
}

// NewRequirements normalizes raw requirements into a valid value. It never
// fails: trip-mode input missing required fields is demoted to missing mode
// with the absent field names populated, and optional fields receive
// defaults.
func NewRequirements(raw Requirements) Requirements {
	r := raw

	if r.Mode != ModeTrip && r.Mode != ModeMissing {
		r.Mode = ModeTrip
	}

	if r.Mode == ModeTrip {
		missing := r.absentRequiredFields()
		if len(missing) > 0 {
			r.Mode = ModeMissing
			r.MissingFields = missing
			r.Error = errMissing
			r.AgentMessage = "Please provide: " + strings.Join(missing, ", ")
		}
	}

	if r.Mode == ModeMissing {
		if len(r.MissingFields) == 0 {
			r.MissingFields = []string{"origin", "destination"}
		}
		if r.Error == "" {
			r.Error = errMissing
		}
		if r.AgentMessage == "" {
			r.AgentMessage = "Additional information needed"
		}
	}

	if r.NoOfAdults < 1 {
		r.NoOfAdults = 1
	}
	if r.NoOfChildren < 0 {
		r.NoOfChildren = 0
	}
	if r.Currency == "" {
		r.Currency = "USD"
	}
	r.AccommodationType = NormalizeAccommodationType(r.AccommodationType)
	if r.Purpose == "" {
		r.Purpose = "leisure"
	}
	if r.TravelPreferences == "" {
		r.TravelPreferences = "none"
	}
	if r.TravelConstraints == "" {
		r.TravelConstraints = "none"
	}

	return r
}

// absentRequiredFields returns the names of required fields with no usable
// value, in canonical order.
func (r *Requirements) absentRequiredFields() []string {
	var missing []string
	for _, field := range requiredFields {
		switch field {
		case "origin":
			if strings.TrimSpace(r.Origin) == "" {
				missing = append(missing, field)
			}
		case "destination":
			if strings.TrimSpace(r.Destination) == "" {
				missing = append(missing, field)
			}
		case "trip_startdate":
			if r.StartDate == nil {
				missing = append(missing, field)
			}
		case "trip_enddate":
			if r.EndDate == nil {
				missing = append(missing, field)
			}
		case "no_of_adults":
			if r.NoOfAdults <= 0 {
				missing = append(missing, field)
			}
		case "budget":
			if r.Budget == nil || *r.Budget <= 0 {
				missing = append(missing, field)
			}
		}
	}
	return missing
}

// IsComplete reports whether the requirements can create a trip.
func (r *Requirements) IsComplete() bool {
	return r.Mode == ModeTrip && r.Error == ""
}

// MissingInfo returns a user-facing message about missing information.
func (r *Requirements) MissingInfo() string {
	if r.Mode == ModeMissing && len(r.MissingFields) > 0 {
		return "Please provide: " + strings.Join(r.MissingFields, ", ")
	}
	return "All information collected"
}

// ToTrip converts complete requirements into a new draft Trip. It fails
// explicitly when the requirements are incomplete.
func (r *Requirements) ToTrip(userID int64, phase, title string) (*Trip, error) {
	if !r.IsComplete() {
		return nil, fmt.Errorf("%w: missing %v", ErrIncompleteRequirements, r.MissingFields)
	}
	if title == "" {
		title = "My Trip"
	}

	budget := 500.0
	if r.Budget != nil {
		budget = *r.Budget
	}
	adults := r.NoOfAdults
	if adults < 1 {
		adults = 1
	}

	return &Trip{
		UserID:            userID,
		Phase:             phase,
		Title:             title,
		Origin:            r.Origin,
		Destination:       r.Destination,
		StartDate:         *r.StartDate,
		EndDate:           *r.EndDate,
		AccommodationType: r.AccommodationType,
		NoOfAdults:        adults,
		NoOfChildren:      r.NoOfChildren,
		Budget:            budget,
		Currency:          r.Currency,
		Status:            StatusDraft,
		Purpose:           r.Purpose,
		TravelPreferences: r.TravelPreferences,
		TravelConstraints: r.TravelConstraints,
	}, nil
}
