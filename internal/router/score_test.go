package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veilio/veil/internal/provider"
)

func scoreCandidate(cfg ScoringConfig, est provider.CostEstimate, criteria Criteria, ref Reference, id string) float64 {
	c := &candidate{
		desc:     provider.Descriptor{ID: id},
		estimate: &est,
	}
	return cfg.score(c, criteria, ref)
}

func TestScore_Components(t *testing.T) {
	cfg := DefaultScoring()
	criteria := Criteria{Level: provider.LevelFullEncryption, Token: "ETH"}

	tests := []struct {
		name string
		est  provider.CostEstimate
		ref  Reference
		want float64
	}{
		{
			name: "zero reference gets full fee and latency components",
			est:  provider.CostEstimate{},
			ref:  Reference{},
			// 100 + 20 + 20 + 25
			want: 165,
		},
		{
			name: "expensive slow provider loses both components",
			est:  provider.CostEstimate{},
			ref:  Reference{AvgFeePercent: 5, AvgLatencyMS: 60000},
			// 100 + 0 + 0 + 25
			want: 125,
		},
		{
			name: "anonymity component scales by log10",
			est:  provider.CostEstimate{AnonymitySet: 100},
			ref:  Reference{AvgFeePercent: 2, AvgLatencyMS: 20000},
			// 100 + 0 + 0 + 25 + 10
			want: 135,
		},
		{
			name: "anonymity component is capped",
			est:  provider.CostEstimate{AnonymitySet: 10_000_000},
			ref:  Reference{AvgFeePercent: 2, AvgLatencyMS: 20000},
			// 100 + 0 + 0 + 25 + 15 (cap, not 35)
			want: 140,
		},
		{
			name: "warnings subtract per entry",
			est:  provider.CostEstimate{Warnings: []string{"a", "b", "c"}},
			ref:  Reference{AvgFeePercent: 2, AvgLatencyMS: 20000},
			// 100 + 25 - 15
			want: 110,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreCandidate(cfg, tt.est, criteria, tt.ref, "p")
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScore_PreferredBonusAppliesByID(t *testing.T) {
	cfg := DefaultScoring()
	criteria := Criteria{Level: provider.LevelNone, Token: "ETH", Preferred: "fav"}

	fav := scoreCandidate(cfg, provider.CostEstimate{}, criteria, Reference{}, "fav")
	other := scoreCandidate(cfg, provider.CostEstimate{}, criteria, Reference{}, "other")

	assert.InDelta(t, 50, fav-other, 1e-9)
}

func TestScore_LevelNoneScoresZeroComponent(t *testing.T) {
	cfg := DefaultScoring()
	none := scoreCandidate(cfg, provider.CostEstimate{},
		Criteria{Level: provider.LevelNone}, Reference{AvgFeePercent: 2, AvgLatencyMS: 20000}, "p")
	full := scoreCandidate(cfg, provider.CostEstimate{},
		Criteria{Level: provider.LevelFullEncryption}, Reference{AvgFeePercent: 2, AvgLatencyMS: 20000}, "p")

	assert.InDelta(t, 100, none, 1e-9)
	assert.InDelta(t, 125, full, 1e-9)
}

func TestScore_FlooredAtZero(t *testing.T) {
	cfg := DefaultScoring()
	cfg.Base = 0
	cfg.WarningPenalty = 1000

	got := scoreCandidate(cfg, provider.CostEstimate{Warnings: []string{"w"}},
		Criteria{Level: provider.LevelNone}, Reference{AvgFeePercent: 10, AvgLatencyMS: 100000}, "p")

	assert.Equal(t, 0.0, got)
}

func TestScore_SyntheticPolicyIsHonored(t *testing.T) {
	cfg := ScoringConfig{
		Base:             1,
		PreferredBonus:   2,
		FeeCeiling:       0,
		LatencyCeiling:   0,
		LatencyDivisorMS: 1,
		AnonymityCap:     0,
		AnonymityScale:   0,
		WarningPenalty:   0,
		LevelScores:      map[provider.PrivacyLevel]float64{provider.LevelProofBased: 4},
	}
	criteria := Criteria{Level: provider.LevelProofBased, Preferred: "p"}

	got := scoreCandidate(cfg, provider.CostEstimate{AnonymitySet: 999}, criteria, Reference{}, "p")
	assert.InDelta(t, 7, got, 1e-9) // 1 + 2 + 4
}
