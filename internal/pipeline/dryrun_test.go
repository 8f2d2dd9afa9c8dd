package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilio/veil/internal/provider"
)

// estimateOnly wraps a connector and fails every side-effecting
// operation, proving that dry runs touch nothing but Estimate.
type estimateOnly struct {
	provider.Provider
}

var errSideEffect = errors.New("side-effecting operation invoked during dry run")

func (e estimateOnly) Deposit(context.Context, provider.DepositParams) (*provider.OpResult, error) {
	return nil, errSideEffect
}

func (e estimateOnly) Transfer(context.Context, provider.TransferParams) (*provider.OpResult, error) {
	return nil, errSideEffect
}

func (e estimateOnly) Withdraw(context.Context, provider.WithdrawParams) (*provider.OpResult, error) {
	return nil, errSideEffect
}

func (e estimateOnly) Prove(context.Context, provider.ProveParams) (*provider.OpResult, error) {
	return nil, errSideEffect
}

func TestDryRun_NeverInvokesSideEffectingOperations(t *testing.T) {
	sim := provider.NewSim(provider.SimConfig{
		Descriptor: provider.Descriptor{
			ID:     "strict",
			Levels: []provider.PrivacyLevel{provider.LevelAmountHidden},
			Tokens: []string{provider.TokenWildcard},
		},
		FlatFee:   0.05,
		LatencyMS: 2000,
	})
	require.NoError(t, sim.Init(context.Background()))

	reg := provider.NewRegistry()
	reg.Register(estimateOnly{sim})

	p := New(reg).
		AddDeposit("strict", provider.DepositParams{Token: "ETH", Amount: 1}).
		AddTransfer("strict", provider.TransferParams{Token: "ETH", Amount: 1, Level: provider.LevelAmountHidden}).
		AddWithdraw("strict", provider.WithdrawParams{Token: "ETH", Amount: 1}).
		AddProve("strict", provider.ProveParams{Kind: "membership"})

	proj, err := p.DryRun(context.Background())
	require.NoError(t, err)
	require.Len(t, proj.Steps, 4)

	// 4 estimates at FlatFee 0.05, LatencyMS 2000 each.
	assert.InDelta(t, 0.20, proj.TotalFee, 1e-9)
	assert.Equal(t, int64(8000), proj.TotalLatencyMS)
}

func TestDryRun_WaitContributesLatencyOnly(t *testing.T) {
	reg := testRegistry(t, simConfig("mixcoin", nil))
	p := New(reg).
		AddWait(30 * time.Second).
		AddDeposit("mixcoin", provider.DepositParams{Token: "ETH", Amount: 1})

	start := time.Now()
	proj, err := p.DryRun(context.Background())
	require.NoError(t, err)

	// Dry running a 30s wait must not actually wait.
	assert.Less(t, time.Since(start), time.Second)

	require.Len(t, proj.Steps, 2)
	assert.Equal(t, int64(30000), proj.Steps[0].LatencyMS)
	assert.Equal(t, 0.0, proj.Steps[0].Fee)
	assert.Equal(t, int64(31000), proj.TotalLatencyMS)
	assert.InDelta(t, 0.01, proj.TotalFee, 1e-9)
}

func TestDryRun_CustomContributesZeroAndIsNotInvoked(t *testing.T) {
	reg := testRegistry(t, simConfig("mixcoin", nil))

	invoked := false
	p := New(reg).AddCustom("mutate", func(context.Context, map[string]any) (any, error) {
		invoked = true
		return nil, nil
	})

	proj, err := p.DryRun(context.Background())
	require.NoError(t, err)

	assert.False(t, invoked)
	require.Len(t, proj.Steps, 1)
	assert.Equal(t, 0.0, proj.Steps[0].Fee)
	assert.Equal(t, int64(0), proj.Steps[0].LatencyMS)
}

func TestDryRun_ProviderNotFound(t *testing.T) {
	reg := testRegistry(t, simConfig("mixcoin", nil))
	p := New(reg).AddTransfer("ghost", provider.TransferParams{Token: "ETH", Amount: 1})

	_, err := p.DryRun(context.Background())
	require.Error(t, err)
	assert.True(t, provider.IsNotFound(err))

	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Index)
	assert.Equal(t, StepTransfer, se.Kind)
}

func TestDryRun_SurfacesEstimateWarnings(t *testing.T) {
	cfg := simConfig("warned", nil)
	cfg.Warnings = []string{"shallow pool"}
	reg := testRegistry(t, cfg)

	p := New(reg).AddDeposit("warned", provider.DepositParams{Token: "ETH", Amount: 1})

	proj, err := p.DryRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"shallow pool"}, proj.Steps[0].Warnings)
}
