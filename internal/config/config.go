// Package config loads the YAML configuration that backs the CLI: the
// set of simulated backends, their static reference fee/latency tables,
// and optional scoring-weight overrides.
package config

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/veilio/veil/internal/provider"
	"github.com/veilio/veil/internal/router"
)

// Config is the parsed and validated configuration file.
type Config struct {
	Providers []ProviderConfig `yaml:"providers"`
	Scoring   *ScoringOverride `yaml:"scoring,omitempty"`
}

// ProviderConfig declares one backend: its descriptor, its scoring
// reference numbers, and the simulated connector's behavior.
type ProviderConfig struct {
	ID                  string   `yaml:"id"`
	Name                string   `yaml:"name"`
	Levels              []string `yaml:"levels"`
	Tokens              []string `yaml:"tokens"`
	Compliance          bool     `yaml:"compliance"`
	OnChainVerification bool     `yaml:"onchain_verification"`

	Reference ReferenceConfig `yaml:"reference"`
	Sim       SimConfig       `yaml:"sim"`
}

// ReferenceConfig feeds the router's static per-provider averages.
type ReferenceConfig struct {
	AvgFeePercent float64 `yaml:"avg_fee_percent"`
	AvgLatencyMS  int64   `yaml:"avg_latency_ms"`
}

// SimConfig shapes the simulated connector for a provider entry.
type SimConfig struct {
	FeePercent   float64            `yaml:"fee_percent"`
	FlatFee      float64            `yaml:"flat_fee"`
	LatencyMS    int64              `yaml:"latency_ms"`
	AnonymitySet int64              `yaml:"anonymity_set"`
	Warnings     []string           `yaml:"warnings"`
	Balances     map[string]float64 `yaml:"balances"`
}

// ScoringOverride optionally replaces individual scoring weights.
// Pointer fields distinguish "unset" from an explicit zero.
type ScoringOverride struct {
	Base           *float64 `yaml:"base,omitempty"`
	PreferredBonus *float64 `yaml:"preferred_bonus,omitempty"`
	FeeCeiling     *float64 `yaml:"fee_ceiling,omitempty"`
	FeeSlope       *float64 `yaml:"fee_slope,omitempty"`
	LatencyCeiling *float64 `yaml:"latency_ceiling,omitempty"`
	AnonymityCap   *float64 `yaml:"anonymity_cap,omitempty"`
	WarningPenalty *float64 `yaml:"warning_penalty,omitempty"`
}

// Load reads, strictly decodes, and validates a configuration file.
// Unknown YAML keys are errors so typos fail loudly.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("config: no providers declared")
	}

	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if p.ID == "" {
			return fmt.Errorf("config: provider %d has no id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("config: duplicate provider id %q", p.ID)
		}
		seen[p.ID] = true

		if len(p.Levels) == 0 {
			return fmt.Errorf("config: provider %q declares no privacy levels", p.ID)
		}
		for _, l := range p.Levels {
			if _, err := provider.ParseLevel(l); err != nil {
				return fmt.Errorf("config: provider %q: %w", p.ID, err)
			}
		}
		if len(p.Tokens) == 0 {
			return fmt.Errorf("config: provider %q declares no tokens", p.ID)
		}
	}
	return nil
}

// normalize NFC-normalizes user-supplied display names so visually
// identical names compare equal regardless of how the YAML encoded
// combining characters. Missing names fall back to the ID.
func (c *Config) normalize() {
	for i := range c.Providers {
		p := &c.Providers[i]
		if p.Name == "" {
			p.Name = p.ID
		}
		p.Name = norm.NFC.String(p.Name)
	}
}

// Registry builds the simulated connector registry declared by the
// config. Connectors are returned uninitialized; the caller decides
// when to Init them.
func (c *Config) Registry() *provider.Registry {
	reg := provider.NewRegistry()
	for _, pc := range c.Providers {
		levels := make([]provider.PrivacyLevel, len(pc.Levels))
		for i, l := range pc.Levels {
			levels[i] = provider.PrivacyLevel(l)
		}

		reg.Register(provider.NewSim(provider.SimConfig{
			Descriptor: provider.Descriptor{
				ID:                  pc.ID,
				Name:                pc.Name,
				Levels:              levels,
				Tokens:              pc.Tokens,
				Compliance:          pc.Compliance,
				OnChainVerification: pc.OnChainVerification,
			},
			FeePercent:   pc.Sim.FeePercent,
			FlatFee:      pc.Sim.FlatFee,
			LatencyMS:    pc.Sim.LatencyMS,
			AnonymitySet: pc.Sim.AnonymitySet,
			Warnings:     pc.Sim.Warnings,
			Balances:     pc.Sim.Balances,
		}))
	}
	return reg
}

// References returns the router's static per-provider averages.
func (c *Config) References() map[string]router.Reference {
	refs := make(map[string]router.Reference, len(c.Providers))
	for _, pc := range c.Providers {
		refs[pc.ID] = router.Reference{
			AvgFeePercent: pc.Reference.AvgFeePercent,
			AvgLatencyMS:  pc.Reference.AvgLatencyMS,
		}
	}
	return refs
}

// ScoringPolicy returns the stock scoring policy with any configured
// overrides applied.
func (c *Config) ScoringPolicy() router.ScoringConfig {
	cfg := router.DefaultScoring()
	o := c.Scoring
	if o == nil {
		return cfg
	}
	if o.Base != nil {
		cfg.Base = *o.Base
	}
	if o.PreferredBonus != nil {
		cfg.PreferredBonus = *o.PreferredBonus
	}
	if o.FeeCeiling != nil {
		cfg.FeeCeiling = *o.FeeCeiling
	}
	if o.FeeSlope != nil {
		cfg.FeeSlope = *o.FeeSlope
	}
	if o.LatencyCeiling != nil {
		cfg.LatencyCeiling = *o.LatencyCeiling
	}
	if o.AnonymityCap != nil {
		cfg.AnonymityCap = *o.AnonymityCap
	}
	if o.WarningPenalty != nil {
		cfg.WarningPenalty = *o.WarningPenalty
	}
	return cfg
}
