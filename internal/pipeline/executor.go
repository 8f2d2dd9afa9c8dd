package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/veilio/veil/internal/provider"
)

// Execute runs the queued steps strictly in insertion order against a
// freshly constructed Context and stops at the first failing step.
//
// The returned Result holds one entry per ATTEMPTED step; on failure the
// last entry carries the error, the remaining steps have no entries, and
// the error is a *StepError tagged with the step's index and kind.
// TotalFee sums successful steps only.
//
// Cancelling ctx between steps stops the run before the next step is
// issued. A step already applied (funds already moved) is NOT rolled
// back; the guarantee is only that no new step starts.
func (p *Pipeline) Execute(ctx context.Context) (*Result, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.inFlight.Store(false)

	run := newContext(p.initial)
	result := &Result{
		RunToken: p.tokens.Generate(),
		Steps:    make([]StepResult, 0, len(p.steps)),
	}

	slog.Info("pipeline starting", "run", result.RunToken, "steps", len(p.steps))

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return p.fail(result, run, i, step, fmt.Errorf("context cancelled: %w", err))
		}

		slog.Debug("executing step",
			"run", result.RunToken,
			"index", i,
			"kind", step.Kind,
			"provider", step.ProviderID,
		)

		sr := StepResult{
			Index:      i,
			Kind:       step.Kind,
			Name:       step.label(),
			ProviderID: step.ProviderID,
		}

		switch step.Kind {
		case StepWait:
			if err := sleep(ctx, step.Duration); err != nil {
				return p.fail(result, run, i, step, err)
			}

		case StepCustom:
			value, err := step.Custom(ctx, run.Snapshot())
			if err != nil {
				return p.fail(result, run, i, step, err)
			}
			sr.Value = value

		default:
			op, err := p.executeBound(ctx, step, run)
			if err != nil {
				return p.fail(result, run, i, step, err)
			}
			sr.Op = op
			mergeOp(run, op)
		}

		result.Steps = append(result.Steps, sr)
		p.notify(sr)
	}

	result.TotalFee = run.TotalFee()
	result.Success = true

	slog.Info("pipeline finished",
		"run", result.RunToken,
		"steps", len(result.Steps),
		"total_fee", result.TotalFee,
	)
	return result, nil
}

// executeBound resolves the step's provider and invokes the matching
// capability operation, filling omitted commitment/recipient fields from
// the execution context.
func (p *Pipeline) executeBound(ctx context.Context, step Step, run *Context) (*provider.OpResult, error) {
	prov, err := p.registry.Get(step.ProviderID)
	if err != nil {
		return nil, err
	}

	switch step.Kind {
	case StepDeposit:
		return prov.Deposit(ctx, step.Deposit)

	case StepTransfer:
		params := step.Transfer
		if params.Recipient == "" {
			if recipient, ok := run.GetString(KeyRecipient); ok {
				params.Recipient = recipient
			}
		}
		return prov.Transfer(ctx, params)

	case StepWithdraw:
		params := step.Withdraw
		if params.Commitment == "" {
			if commitment, ok := run.GetString(KeyLastCommitment); ok {
				params.Commitment = commitment
			}
		}
		if params.Recipient == "" {
			if recipient, ok := run.GetString(KeyRecipient); ok {
				params.Recipient = recipient
			}
		}
		return prov.Withdraw(ctx, params)

	case StepProve:
		params := step.Prove
		if params.Commitment == "" {
			if commitment, ok := run.GetString(KeyLastCommitment); ok {
				params.Commitment = commitment
			}
		}
		return prov.Prove(ctx, params)

	default:
		return nil, fmt.Errorf("unknown provider-bound step kind: %s", step.Kind)
	}
}

// fail records the failing step, tags the error with its position, and
// finalizes the result. No entries exist for unattempted steps.
func (p *Pipeline) fail(result *Result, run *Context, index int, step Step, err error) (*Result, error) {
	stepErr := &StepError{
		Index:      index,
		Kind:       step.Kind,
		ProviderID: step.ProviderID,
		Err:        err,
	}

	failed := StepResult{
		Index:      index,
		Kind:       step.Kind,
		Name:       step.label(),
		ProviderID: step.ProviderID,
		Err:        stepErr,
	}
	result.Steps = append(result.Steps, failed)
	result.TotalFee = run.TotalFee()
	result.Success = false
	p.notify(failed)

	slog.Error("pipeline halted",
		"run", result.RunToken,
		"index", index,
		"kind", step.Kind,
		"provider", step.ProviderID,
		"error", err,
	)
	return result, stepErr
}

// notify delivers a completed step to the registered observers, in
// registration order, on the execution goroutine.
func (p *Pipeline) notify(sr StepResult) {
	for _, fn := range p.observers {
		fn(sr)
	}
}

// mergeOp folds a successful operation's derived state into the
// execution context: fee into the running total, commitment and
// signature as the respective "last" values.
func mergeOp(run *Context, op *provider.OpResult) {
	run.AddFee(op.Fee)
	if op.Commitment != "" {
		run.Set(KeyLastCommitment, op.Commitment)
	}
	if op.Signature != "" {
		run.Set(KeyLastSignature, op.Signature)
	}
}

// sleep suspends for d without blocking unrelated work, returning early
// when ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
