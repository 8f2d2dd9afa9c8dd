package pipeline

import (
	"time"

	"github.com/veilio/veil/internal/provider"
)

// StepResult is the outcome of one attempted step. Exactly one of Op,
// Value, or Err is meaningful: Op for provider-bound steps, Value for
// custom steps, Err for the failing step. Wait steps produce none.
type StepResult struct {
	// Index is the step's zero-based position in the pipeline.
	Index int

	// Kind is the step's variant.
	Kind StepKind

	// Name is the step's display label (custom steps may override it).
	Name string

	// ProviderID names the bound provider, when the step had one.
	ProviderID string

	// Op is the raw capability-operation result.
	Op *provider.OpResult

	// Value is the custom closure's return value.
	Value any

	// Err is the failure that halted the pipeline, on the last entry of
	// a failed run.
	Err error
}

// Result is the outcome of one execution: one entry per ATTEMPTED step
// (steps after the first failure have no entry), the fee sum over
// successful steps only, and an overall success flag.
type Result struct {
	// RunToken correlates this execution across logs and the journal.
	RunToken string

	// Steps holds per-attempted-step outcomes in execution order.
	Steps []StepResult

	// TotalFee sums the settlement fees of successful steps.
	TotalFee float64

	// Success is true when no step failed.
	Success bool
}

// StepProjection is the dry-run cost projection for one step.
type StepProjection struct {
	Index      int
	Kind       StepKind
	Name       string
	ProviderID string

	// Fee and LatencyMS come from the provider's estimate for
	// provider-bound steps; wait steps contribute Duration to latency
	// only; custom steps contribute zero.
	Fee       float64
	LatencyMS int64
	Warnings  []string
}

// Projection is the dry-run outcome: per-step projections plus
// pipeline-wide totals. No side-effecting operation is invoked to
// produce one.
type Projection struct {
	Steps          []StepProjection
	TotalFee       float64
	TotalLatencyMS int64
}

// latencyOf converts a wait duration to projected milliseconds.
func latencyOf(d time.Duration) int64 {
	return d.Milliseconds()
}
