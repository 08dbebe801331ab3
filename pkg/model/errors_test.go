package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Code: ErrNotFound, Message: "Run 'run_123' not found"}
	want := "NOT_FOUND: Run 'run_123' not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("Run", "run_abc")
	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Message != "Run 'run_abc' not found" {
		t.Errorf("Message = %q, want %q", err.Message, "Run 'run_abc' not found")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("Invalid workload",
		FieldError{Field: "units[0].tickets", Message: "required"},
		FieldError{Field: "quanta", Message: "must be > 0"},
	)
	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if len(err.Details) != 2 {
		t.Errorf("Details length = %d, want 2", len(err.Details))
	}
}

func TestInvalidTransitionError(t *testing.T) {
	err := &InvalidTransitionError{
		Unit: "editor",
		From: UnitStatusTerminated,
		To:   UnitStatusReady,
	}
	want := "invalid unit status transition: TERMINATED → READY (unit editor)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestInvariantViolationError_As(t *testing.T) {
	wrapped := fmt.Errorf("schedule: %w", &InvariantViolationError{Ticket: 12, Total: 10})

	var iv *InvariantViolationError
	if !errors.As(wrapped, &iv) {
		t.Fatal("errors.As did not find InvariantViolationError")
	}
	if iv.Ticket != 12 || iv.Total != 10 {
		t.Errorf("got ticket=%d total=%d, want 12/10", iv.Ticket, iv.Total)
	}
	if got, want := iv.Error(), "ticket 12 of 10 has no owner"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
