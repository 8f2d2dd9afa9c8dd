package router

import (
	"errors"
	"fmt"
)

// SelectionError represents a failure to produce a selection result.
//
// Selection errors include:
//   - No candidate: every registered provider was filtered out for the
//     requested level/token/constraints
//   - Estimation failure: a surviving candidate's cost query itself
//     failed, aborting the whole selection
//
// SelectionError includes structured fields so callers can branch on the
// kind and decide between relaxing constraints and surfacing a hard
// failure.
type SelectionError struct {
	// Code identifies the error category.
	Code SelectionErrorCode

	// Message is a human-readable description.
	Message string

	// Criteria summarizes the request that failed.
	Criteria string

	// ProviderID identifies the provider involved (estimation failures).
	ProviderID string

	// Err is the underlying provider error, if any.
	Err error
}

// SelectionErrorCode categorizes selection errors.
type SelectionErrorCode string

const (
	// ErrCodeNoCandidate indicates filtering removed every provider.
	ErrCodeNoCandidate SelectionErrorCode = "NO_CANDIDATE"

	// ErrCodeEstimation indicates a candidate's cost query failed.
	ErrCodeEstimation SelectionErrorCode = "ESTIMATION_FAILED"
)

// Error implements the error interface.
func (e *SelectionError) Error() string {
	if e.ProviderID != "" {
		return fmt.Sprintf("%s: %s (provider=%s, %s)", e.Code, e.Message, e.ProviderID, e.Criteria)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Criteria)
}

// Unwrap exposes the underlying provider error for errors.Is/As.
func (e *SelectionError) Unwrap() error {
	return e.Err
}

// IsNoCandidate returns true if the error is a no-candidate-available error.
// Uses errors.As to handle wrapped errors.
func IsNoCandidate(err error) bool {
	var se *SelectionError
	if errors.As(err, &se) {
		return se.Code == ErrCodeNoCandidate
	}
	return false
}

// IsEstimationFailure returns true if the error is an estimation failure.
// Uses errors.As to handle wrapped errors.
func IsEstimationFailure(err error) bool {
	var se *SelectionError
	if errors.As(err, &se) {
		return se.Code == ErrCodeEstimation
	}
	return false
}

// newNoCandidateError creates a SelectionError for an emptied candidate set.
func newNoCandidateError(c Criteria) *SelectionError {
	return &SelectionError{
		Code:     ErrCodeNoCandidate,
		Message:  "no provider satisfies the requested criteria",
		Criteria: c.summary(),
	}
}

// newEstimationError creates a SelectionError wrapping a failed cost query.
//
// An estimate failure aborts the entire selection rather than skipping
// the broken candidate. The typed wrapper names the provider so callers
// can deregister it and retry; silent skipping would hide a misbehaving
// connector behind a healthy-looking ranking.
func newEstimationError(c Criteria, providerID string, err error) *SelectionError {
	return &SelectionError{
		Code:       ErrCodeEstimation,
		Message:    "cost estimate failed",
		Criteria:   c.summary(),
		ProviderID: providerID,
		Err:        err,
	}
}
