package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidID          = errors.New("invalid id format")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrForbidden          = errors.New("permission denied")
	ErrTooManyAttempts    = errors.New("too many login attempts")

	ErrUserNotFound    = errors.New("user not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrStudentNotFound = errors.New("student not found")

	ErrUsernameTaken = errors.New("username already taken")
	ErrCenterTaken   = errors.New("center name already registered")
)

// UsernameTakenError is returned when a requested username collides with an
// existing one. Suggestions holds free alternatives the caller can offer.
type UsernameTakenError struct {
	Username    string
	Suggestions []string
}

func (e *UsernameTakenError) Error() string {
	return ErrUsernameTaken.Error() + ": " + e.Username
}

func (e *UsernameTakenError) Is(target error) bool {
	return target == ErrUsernameTaken
}

// Invalid wraps ErrValidation with a field-level message.
func Invalid(msg string) error {
	return &validationError{msg: msg}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
