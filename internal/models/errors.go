package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors matched with errors.Is by callers.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("forbidden")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// NotFoundError is returned when an operation references a record that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is makes NotFoundError match ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IssueNotFound builds the NotFoundError for an issue id.
func IssueNotFound(id string) error {
	return &NotFoundError{Resource: "issue", ID: id}
}

// UserNotFound builds the NotFoundError for a user id.
func UserNotFound(id string) error {
	return &NotFoundError{Resource: "user", ID: id}
}

// ValidationError is returned when input is missing or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RateLimitError is returned when an actor exceeds a submission quota.
type RateLimitError struct {
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit of %d exceeded, retry after %s", e.Limit, e.RetryAfter.Round(time.Second))
}

// Is makes RateLimitError match ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
