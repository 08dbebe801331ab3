package model

import (
	"errors"
	"fmt"
)

// ErrEmptyLottery is returned by a draw when no READY unit holds any tickets.
// The caller should treat it as "no unit selected" and idle.
var ErrEmptyLottery = errors.New("empty lottery: no ready unit holds tickets")

// ErrInvalidParams is returned when a policy cannot use the parameter block
// it was handed.
var ErrInvalidParams = errors.New("invalid scheduling parameters")

// ErrTicketOverflow is returned by a draw when the ready units hold more
// tickets than the ticket axis can represent.
var ErrTicketOverflow = errors.New("ticket total overflows the ticket axis")

// InvariantViolationError reports a winning ticket that no ready unit owns.
// It always indicates a distribution bug.
type InvariantViolationError struct {
	Ticket uint64
	Total  uint64
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("ticket %d of %d has no owner", e.Ticket, e.Total)
}

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrConflict   ErrorCode = "CONFLICT"
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
)

// APIError is a structured error returned by the lottsched API.
type APIError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewValidationError creates an APIError with validation details.
func NewValidationError(msg string, details ...FieldError) *APIError {
	return &APIError{Code: ErrValidation, Message: msg, Details: details}
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

// InvalidTransitionError is returned when a unit status transition is invalid.
type InvalidTransitionError struct {
	Unit string
	From UnitStatus
	To   UnitStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid unit status transition: %s → %s (unit %s)", e.From, e.To, e.Unit)
}
