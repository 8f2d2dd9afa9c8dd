package router

import (
	"math"

	"github.com/veilio/veil/internal/provider"
)

// Reference holds the static per-provider averages the scorer rewards
// structurally cheap and fast providers with. These are configuration
// values, not live estimates: the live estimate gates candidates through
// the max-fee/max-latency filters, while the reference numbers feed the
// score.
type Reference struct {
	// AvgFeePercent is the provider's typical fee as a percentage of
	// the transferred amount.
	AvgFeePercent float64

	// AvgLatencyMS is the provider's typical end-to-end latency.
	AvgLatencyMS int64
}

// ScoringConfig is the replaceable scoring policy. The weights are
// hand-tuned; tests substitute synthetic values through WithScoring.
type ScoringConfig struct {
	// Base is every candidate's starting score.
	Base float64

	// PreferredBonus is added when the criteria name the candidate as
	// preferred.
	PreferredBonus float64

	// FeeCeiling and FeeSlope shape the fee component:
	// max(0, FeeCeiling - AvgFeePercent*FeeSlope).
	FeeCeiling float64
	FeeSlope   float64

	// LatencyCeiling and LatencyDivisorMS shape the latency component:
	// max(0, LatencyCeiling - AvgLatencyMS/LatencyDivisorMS).
	LatencyCeiling   float64
	LatencyDivisorMS float64

	// AnonymityCap and AnonymityScale shape the anonymity component:
	// min(AnonymityCap, log10(set)*AnonymityScale), 0 when the estimate
	// reports no set size.
	AnonymityCap   float64
	AnonymityScale float64

	// WarningPenalty is subtracted per advisory warning in the estimate.
	WarningPenalty float64

	// LevelScores is the fixed lookup keyed by requested privacy level.
	// Stronger guarantees score higher regardless of which provider
	// supplies them; LevelNone scores zero.
	LevelScores map[provider.PrivacyLevel]float64
}

// DefaultScoring returns the stock scoring policy.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Base:             100,
		PreferredBonus:   50,
		FeeCeiling:       20,
		FeeSlope:         10,
		LatencyCeiling:   20,
		LatencyDivisorMS: 1000,
		AnonymityCap:     15,
		AnonymityScale:   5,
		WarningPenalty:   5,
		LevelScores: map[provider.PrivacyLevel]float64{
			provider.LevelNone:           0,
			provider.LevelAmountHidden:   10,
			provider.LevelSenderHidden:   15,
			provider.LevelCompliantPool:  18,
			provider.LevelProofBased:     20,
			provider.LevelFullEncryption: 25,
		},
	}
}

// score computes a candidate's score. Pure: no randomness, no history,
// no call-order dependence. The result is floored at zero.
func (cfg ScoringConfig) score(c *candidate, criteria Criteria, ref Reference) float64 {
	s := cfg.Base

	if criteria.Preferred != "" && criteria.Preferred == c.desc.ID {
		s += cfg.PreferredBonus
	}

	s += math.Max(0, cfg.FeeCeiling-ref.AvgFeePercent*cfg.FeeSlope)
	s += math.Max(0, cfg.LatencyCeiling-float64(ref.AvgLatencyMS)/cfg.LatencyDivisorMS)
	s += cfg.LevelScores[criteria.Level]

	if c.estimate.AnonymitySet > 0 {
		s += math.Min(cfg.AnonymityCap, math.Log10(float64(c.estimate.AnonymitySet))*cfg.AnonymityScale)
	}

	s -= cfg.WarningPenalty * float64(len(c.estimate.Warnings))

	return math.Max(0, s)
}
