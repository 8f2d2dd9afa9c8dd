package pipeline

import (
	"errors"
	"fmt"
)

// StepError tags a step failure with where in the pipeline it happened.
// The pipeline halts on the first StepError; callers inspect Index and
// Kind to decide what, if anything, already took effect on-chain.
type StepError struct {
	// Index is the zero-based position of the failing step.
	Index int

	// Kind is the failing step's variant.
	Kind StepKind

	// ProviderID names the bound provider, when the step had one.
	ProviderID string

	// Err is the underlying failure from the provider or closure.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.ProviderID != "" {
		return fmt.Sprintf("step %d (%s, provider=%s): %v", e.Index, e.Kind, e.ProviderID, e.Err)
	}
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Kind, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *StepError) Unwrap() error {
	return e.Err
}

// IsStepError returns true if err is (or wraps) a StepError.
func IsStepError(err error) bool {
	var se *StepError
	return errors.As(err, &se)
}

// ErrBusy is returned by Execute when the pipeline already has a run in
// flight. A pipeline instance is single-flight; build a second pipeline
// for concurrent work.
var ErrBusy = errors.New("pipeline: execution already in flight")
