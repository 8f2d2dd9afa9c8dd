package provider

import (
	"context"
	"fmt"
	"sync"
)

// SimConfig configures a simulated connector.
//
// Fees are modeled as FlatFee + Amount*FeePercent/100 in settlement units.
// FailOps forces the named operations to fail with the given message,
// which tests use to exercise stop-on-failure and dry-run behavior.
type SimConfig struct {
	Descriptor   Descriptor
	FeePercent   float64
	FlatFee      float64
	LatencyMS    int64
	AnonymitySet int64
	Warnings     []string
	Balances     map[string]float64
	FailOps      map[Operation]string
}

// Sim is a simulated connector: it satisfies the full capability contract
// without touching any real protocol library. The CLI uses it to route
// and execute against configured backends; tests use it as a controllable
// fixture.
//
// Commitments, signatures, and tx hashes are derived from a per-instance
// counter, so a fresh Sim produces the same artifact sequence on every
// run.
type Sim struct {
	cfg SimConfig

	mu       sync.Mutex
	ready    bool
	seq      int64
	balances map[string]float64
}

var _ Provider = (*Sim)(nil)

// NewSim creates a simulated connector from cfg.
// The connector is not ready until Init is called.
func NewSim(cfg SimConfig) *Sim {
	balances := make(map[string]float64, len(cfg.Balances))
	for token, amount := range cfg.Balances {
		balances[token] = amount
	}
	return &Sim{cfg: cfg, balances: balances}
}

// Descriptor returns the configured descriptor.
func (s *Sim) Descriptor() Descriptor {
	return s.cfg.Descriptor
}

// Init marks the connector ready. Idempotent.
func (s *Sim) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	return nil
}

// Ready reports whether Init has completed.
func (s *Sim) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Supports answers from the configured descriptor's declared sets.
func (s *Sim) Supports(op Operation, token string, level PrivacyLevel) bool {
	switch op {
	case OpEstimate, OpBalance, OpDeposit, OpTransfer, OpWithdraw, OpProve:
	default:
		return false
	}
	if token != "" && !s.cfg.Descriptor.SupportsToken(token) {
		return false
	}
	if level != "" && !s.cfg.Descriptor.SupportsLevel(level) {
		return false
	}
	return true
}

// Balance returns the configured shielded balance for token.
func (s *Sim) Balance(ctx context.Context, token string) (float64, error) {
	if err := s.check(ctx, OpBalance, token, ""); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[token], nil
}

// Estimate projects cost from the configured fee model. No side effects.
func (s *Sim) Estimate(ctx context.Context, req EstimateRequest) (*CostEstimate, error) {
	if err := s.check(ctx, OpEstimate, req.Token, req.Level); err != nil {
		return nil, err
	}

	fee := s.fee(req.Amount)
	warnings := make([]string, len(s.cfg.Warnings))
	copy(warnings, s.cfg.Warnings)

	return &CostEstimate{
		Fee:          fee,
		TokenFee:     fee,
		LatencyMS:    s.cfg.LatencyMS,
		AnonymitySet: s.cfg.AnonymitySet,
		Warnings:     warnings,
	}, nil
}

// Deposit simulates a shielding deposit and credits the balance.
func (s *Sim) Deposit(ctx context.Context, params DepositParams) (*OpResult, error) {
	if err := s.check(ctx, OpDeposit, params.Token, ""); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.balances[params.Token] += params.Amount

	commitment := params.Commitment
	if commitment == "" {
		commitment = s.artifact("cm")
	}
	return &OpResult{
		TxHash:     s.artifact("tx"),
		Fee:        s.fee(params.Amount),
		Commitment: commitment,
	}, nil
}

// Transfer simulates a confidential transfer.
func (s *Sim) Transfer(ctx context.Context, params TransferParams) (*OpResult, error) {
	if err := s.check(ctx, OpTransfer, params.Token, params.Level); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.balances[params.Token] -= params.Amount

	return &OpResult{
		TxHash:    s.artifact("tx"),
		Fee:       s.fee(params.Amount),
		Signature: s.artifact("sig"),
	}, nil
}

// Withdraw simulates an unshielding withdrawal against a commitment.
func (s *Sim) Withdraw(ctx context.Context, params WithdrawParams) (*OpResult, error) {
	if err := s.check(ctx, OpWithdraw, params.Token, ""); err != nil {
		return nil, err
	}
	if params.Commitment == "" {
		return nil, fmt.Errorf("sim withdraw: commitment is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.balances[params.Token] -= params.Amount

	return &OpResult{
		TxHash: s.artifact("tx"),
		Fee:    s.fee(params.Amount),
	}, nil
}

// Prove simulates standalone proof generation.
func (s *Sim) Prove(ctx context.Context, params ProveParams) (*OpResult, error) {
	if err := s.check(ctx, OpProve, "", ""); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++

	return &OpResult{
		Fee:   s.cfg.FlatFee,
		Proof: []byte(s.artifact("proof")),
	}, nil
}

// check enforces the contract preconditions shared by all operations:
// context liveness, readiness, declared support, and forced failures.
func (s *Sim) check(ctx context.Context, op Operation, token string, level PrivacyLevel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.Ready() {
		return NewNotReadyError(s.cfg.Descriptor.ID)
	}
	if !s.Supports(op, token, level) {
		return NewUnsupportedError(s.cfg.Descriptor.ID, op, token, level)
	}
	if msg, ok := s.cfg.FailOps[op]; ok {
		return fmt.Errorf("sim %s: %s", op, msg)
	}
	return nil
}

func (s *Sim) fee(amount float64) float64 {
	return s.cfg.FlatFee + amount*s.cfg.FeePercent/100
}

// artifact produces a deterministic per-instance artifact identifier.
// Callers must hold s.mu.
func (s *Sim) artifact(kind string) string {
	return fmt.Sprintf("%s-%s-%06d", kind, s.cfg.Descriptor.ID, s.seq)
}
