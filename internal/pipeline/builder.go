package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/veilio/veil/internal/provider"
)

// Pipeline accumulates typed steps and executes them in insertion
// order. Builder methods return the pipeline for chaining:
//
//	result, err := pipeline.New(reg).
//		AddDeposit("mixcoin", provider.DepositParams{Token: "ETH", Amount: 1}).
//		AddWait(30 * time.Second).
//		AddWithdraw("mixcoin", provider.WithdrawParams{Token: "ETH", Amount: 1, Recipient: "0xabc"}).
//		Execute(ctx)
//
// A Pipeline is single-flight: Execute refuses to start while a prior
// run is still in flight (ErrBusy). Each run gets a freshly constructed
// Context, so sequential re-runs never leak state into each other.
type Pipeline struct {
	registry *provider.Registry
	tokens   RunTokenGenerator

	steps     []Step
	initial   map[string]any
	observers []StepObserver

	inFlight atomic.Bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTokenGenerator replaces the run token generator.
// Tests use NewFixedGenerator for deterministic tokens.
func WithTokenGenerator(g RunTokenGenerator) Option {
	return func(p *Pipeline) {
		p.tokens = g
	}
}

// StepObserver receives each attempted step's outcome as it completes,
// the failing step included. There is no global emitter; observers are
// registered per pipeline at construction.
type StepObserver func(StepResult)

// WithObserver registers a progress callback. Observation is synchronous
// on the execution path, so a slow observer delays the next step.
func WithObserver(fn StepObserver) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, fn)
	}
}

// New creates an empty pipeline over registry.
func New(registry *provider.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: registry,
		tokens:   UUIDv7Generator{},
		initial:  make(map[string]any),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddDeposit appends a shielding deposit bound to providerID.
func (p *Pipeline) AddDeposit(providerID string, params provider.DepositParams) *Pipeline {
	p.steps = append(p.steps, Step{Kind: StepDeposit, ProviderID: providerID, Deposit: params})
	return p
}

// AddTransfer appends a confidential transfer bound to providerID.
func (p *Pipeline) AddTransfer(providerID string, params provider.TransferParams) *Pipeline {
	p.steps = append(p.steps, Step{Kind: StepTransfer, ProviderID: providerID, Transfer: params})
	return p
}

// AddWithdraw appends an unshielding withdrawal bound to providerID.
func (p *Pipeline) AddWithdraw(providerID string, params provider.WithdrawParams) *Pipeline {
	p.steps = append(p.steps, Step{Kind: StepWithdraw, ProviderID: providerID, Withdraw: params})
	return p
}

// AddProve appends standalone proof generation bound to providerID.
func (p *Pipeline) AddProve(providerID string, params provider.ProveParams) *Pipeline {
	p.steps = append(p.steps, Step{Kind: StepProve, ProviderID: providerID, Prove: params})
	return p
}

// AddWait appends a suspension for d. The executor yields during the
// wait; unrelated work keeps running, but this pipeline issues nothing.
func (p *Pipeline) AddWait(d time.Duration) *Pipeline {
	p.steps = append(p.steps, Step{Kind: StepWait, Duration: d})
	return p
}

// AddCustom appends a named closure step. The closure sees a snapshot
// of the execution context; its return value becomes the step result
// but is not merged back automatically.
func (p *Pipeline) AddCustom(name string, fn CustomFunc) *Pipeline {
	p.steps = append(p.steps, Step{Kind: StepCustom, Name: name, Custom: fn})
	return p
}

// SetContext seeds an initial context value for subsequent executions.
func (p *Pipeline) SetContext(key string, value any) *Pipeline {
	p.initial[key] = value
	return p
}

// Clear removes all steps and seeded context values.
func (p *Pipeline) Clear() *Pipeline {
	p.steps = nil
	p.initial = make(map[string]any)
	return p
}

// Len returns the number of queued steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Steps returns a copy of the queued steps, for inspection and output.
func (p *Pipeline) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}
