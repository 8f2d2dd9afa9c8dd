package pipeline

import (
	"context"
	"time"

	"github.com/veilio/veil/internal/provider"
)

// StepKind tags the variant of a pipeline step.
type StepKind string

const (
	StepDeposit  StepKind = "deposit"
	StepTransfer StepKind = "transfer"
	StepWithdraw StepKind = "withdraw"
	StepProve    StepKind = "prove"
	StepWait     StepKind = "wait"
	StepCustom   StepKind = "custom"
)

// CustomFunc is the closure a custom step runs. It receives a snapshot
// of the current context; its return value becomes the step result but
// is NOT merged back into the context automatically.
type CustomFunc func(ctx context.Context, snapshot map[string]any) (any, error)

// Step is one typed unit of work. Exactly one parameter group is
// populated, matching Kind. Provider-bound kinds (deposit, transfer,
// withdraw, prove) carry an explicit provider ID; the pipeline performs
// no implicit provider selection.
type Step struct {
	Kind StepKind

	// ProviderID names the bound provider for provider-bound kinds.
	ProviderID string

	Deposit  provider.DepositParams
	Transfer provider.TransferParams
	Withdraw provider.WithdrawParams
	Prove    provider.ProveParams

	// Duration is the suspension time for wait steps.
	Duration time.Duration

	// Name labels a custom step in results and logs.
	Name string

	// Custom is the closure for custom steps.
	Custom CustomFunc
}

// providerBound reports whether the step invokes a capability operation.
func (s Step) providerBound() bool {
	switch s.Kind {
	case StepDeposit, StepTransfer, StepWithdraw, StepProve:
		return true
	}
	return false
}

// label returns the step's display name for logs and results.
func (s Step) label() string {
	if s.Kind == StepCustom && s.Name != "" {
		return s.Name
	}
	return string(s.Kind)
}
