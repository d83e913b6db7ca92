package users

import (
	"strings"
	"time"
)

// User represents a registered traveler.
type User struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Profile           string    `json:"profile,omitempty"`
	TravelPreferences string    `json:"travel_preferences,omitempty"`
	TravelConstraints string    `json:"travel_constraints,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Profile           string `json:"profile"`
	TravelPreferences string `json:"travel_preferences"`
	TravelConstraints string `json:"travel_constraints"`
}

// Validate validates the create user request
func (r *CreateUserRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if !strings.Contains(r.Email, "@") || !strings.Contains(r.Email, ".") {
		return ErrInvalidEmail
	}
	return nil
}
