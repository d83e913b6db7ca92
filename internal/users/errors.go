package users

import "errors"

var (
	// ErrInvalidName is returned when the name is empty
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidEmail is returned when the email is not a plausible address
	ErrInvalidEmail = errors.New("email must contain '@' and '.'")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")
)
