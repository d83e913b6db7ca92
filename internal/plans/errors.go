package plans

import "errors"

var (
	// ErrPlanNotFound is returned when no plan exists for the query
	ErrPlanNotFound = errors.New("trip plan not found")

	// ErrInvalidStatus is returned when a plan status is not recognized
	ErrInvalidStatus = errors.New("invalid plan status")
)
