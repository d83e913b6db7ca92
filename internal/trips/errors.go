package trips

import "errors"

var (
	// ErrTripNotFound is returned when a trip is not found
	ErrTripNotFound = errors.New("trip not found")

	// ErrEndBeforeStart is returned when the end date is not after the start date
	ErrEndBeforeStart = errors.New("trip end date must be after start date")

	// ErrStartNotFuture is returned when a new trip starts today or in the past
	ErrStartNotFuture = errors.New("trip start date must be in the future")

	// ErrInvalidTravelers is returned when traveler counts are out of range
	ErrInvalidTravelers = errors.New("at least 1 adult required and children cannot be negative")

	// ErrNegativeBudget is returned when the budget is negative
	ErrNegativeBudget = errors.New("budget cannot be negative")

	// ErrInvalidStatus is returned when a trip status is not recognized
	ErrInvalidStatus = errors.New("invalid trip status")

	// ErrIncompleteRequirements is returned when incomplete requirements are converted to a trip
	ErrIncompleteRequirements = errors.New("cannot convert incomplete requirements to trip")
)
