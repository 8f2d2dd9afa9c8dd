package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilio/veil/internal/provider"
)

const validYAML = `
providers:
  - id: mixcoin
    name: MixCoin
    levels: [amount-hidden, full-encryption]
    tokens: ["*"]
    onchain_verification: true
    reference:
      avg_fee_percent: 0.5
      avg_latency_ms: 12000
    sim:
      fee_percent: 0.5
      latency_ms: 12000
      anonymity_set: 10000
      balances:
        ETH: 5
  - id: railgun
    levels: [amount-hidden]
    tokens: [ETH, DAI]
    compliance: true
    reference:
      avg_fee_percent: 1.5
      avg_latency_ms: 30000
`

func TestParse_Valid(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 2)

	assert.Equal(t, "MixCoin", cfg.Providers[0].Name)
	// Missing display name falls back to the ID.
	assert.Equal(t, "railgun", cfg.Providers[1].Name)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no providers", `providers: []`},
		{"missing id", "providers:\n  - levels: [none]\n    tokens: [\"*\"]"},
		{"duplicate id", "providers:\n  - id: a\n    levels: [none]\n    tokens: [\"*\"]\n  - id: a\n    levels: [none]\n    tokens: [\"*\"]"},
		{"unknown level", "providers:\n  - id: a\n    levels: [quantum]\n    tokens: [\"*\"]"},
		{"no tokens", "providers:\n  - id: a\n    levels: [none]"},
		{"unknown key", "providers:\n  - id: a\n    levels: [none]\n    tokens: [\"*\"]\n    turbo: true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "veil.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Providers, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Registry(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	reg := cfg.Registry()
	assert.Equal(t, 2, reg.Len())

	p, err := reg.Get("mixcoin")
	require.NoError(t, err)
	d := p.Descriptor()
	assert.True(t, d.SupportsLevel(provider.LevelFullEncryption))
	assert.True(t, d.SupportsToken("ANY"))
	assert.True(t, d.OnChainVerification)
	assert.False(t, p.Ready()) // not initialized by Registry()
}

func TestConfig_References(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	refs := cfg.References()
	assert.InDelta(t, 0.5, refs["mixcoin"].AvgFeePercent, 1e-9)
	assert.Equal(t, int64(30000), refs["railgun"].AvgLatencyMS)
}

func TestConfig_ScoringPolicyOverrides(t *testing.T) {
	cfg, err := Parse([]byte(validYAML + `
scoring:
  preferred_bonus: 10
  warning_penalty: 1
`))
	require.NoError(t, err)

	policy := cfg.ScoringPolicy()
	assert.InDelta(t, 10, policy.PreferredBonus, 1e-9)
	assert.InDelta(t, 1, policy.WarningPenalty, 1e-9)
	// Untouched weights keep their defaults.
	assert.InDelta(t, 100, policy.Base, 1e-9)
	assert.InDelta(t, 15, policy.AnonymityCap, 1e-9)
}

func TestConfig_DisplayNameNormalized(t *testing.T) {
	// "Café" with a combining acute accent (NFD) normalizes to the
	// precomposed form (NFC).
	cfg, err := Parse([]byte("providers:\n  - id: cafe\n    name: \"Cafe\\u0301\"\n    levels: [none]\n    tokens: [\"*\"]"))
	require.NoError(t, err)
	assert.Equal(t, "Café", cfg.Providers[0].Name)
}
