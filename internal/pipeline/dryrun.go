package pipeline

import (
	"context"
	"log/slog"

	"github.com/veilio/veil/internal/provider"
)

// DryRun walks the identical step list without invoking any
// side-effecting operation and returns per-step cost projections plus
// pipeline-wide totals.
//
// Provider-bound steps invoke only the provider's estimate call, never
// the real operation. Wait steps contribute their duration to the
// projected latency. Custom steps contribute zero cost: their closures
// are NOT invoked, since a closure may have side effects of its own.
func (p *Pipeline) DryRun(ctx context.Context) (*Projection, error) {
	proj := &Projection{
		Steps: make([]StepProjection, 0, len(p.steps)),
	}

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sp := StepProjection{
			Index:      i,
			Kind:       step.Kind,
			Name:       step.label(),
			ProviderID: step.ProviderID,
		}

		switch {
		case step.Kind == StepWait:
			sp.LatencyMS = latencyOf(step.Duration)

		case step.providerBound():
			est, err := p.estimateStep(ctx, step)
			if err != nil {
				return nil, &StepError{
					Index:      i,
					Kind:       step.Kind,
					ProviderID: step.ProviderID,
					Err:        err,
				}
			}
			sp.Fee = est.Fee
			sp.LatencyMS = est.LatencyMS
			sp.Warnings = est.Warnings
		}

		proj.TotalFee += sp.Fee
		proj.TotalLatencyMS += sp.LatencyMS
		proj.Steps = append(proj.Steps, sp)
	}

	slog.Debug("dry run complete",
		"steps", len(proj.Steps),
		"total_fee", proj.TotalFee,
		"total_latency_ms", proj.TotalLatencyMS,
	)
	return proj, nil
}

// estimateStep maps a provider-bound step onto an estimate request.
func (p *Pipeline) estimateStep(ctx context.Context, step Step) (*provider.CostEstimate, error) {
	prov, err := p.registry.Get(step.ProviderID)
	if err != nil {
		return nil, err
	}

	var req provider.EstimateRequest
	switch step.Kind {
	case StepDeposit:
		req = provider.EstimateRequest{
			Operation: provider.OpDeposit,
			Token:     step.Deposit.Token,
			Amount:    step.Deposit.Amount,
		}
	case StepTransfer:
		req = provider.EstimateRequest{
			Operation: provider.OpTransfer,
			Token:     step.Transfer.Token,
			Amount:    step.Transfer.Amount,
			Level:     step.Transfer.Level,
		}
	case StepWithdraw:
		req = provider.EstimateRequest{
			Operation: provider.OpWithdraw,
			Token:     step.Withdraw.Token,
			Amount:    step.Withdraw.Amount,
		}
	case StepProve:
		req = provider.EstimateRequest{
			Operation: provider.OpProve,
		}
	}

	return prov.Estimate(ctx, req)
}
