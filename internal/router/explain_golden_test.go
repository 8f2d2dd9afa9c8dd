package router

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/veilio/veil/internal/provider"
)

// The explanation is deterministic text, so golden files detect any
// accidental wording or ordering drift. Regenerate with:
//
//	go test ./internal/router -update
func TestRecommend_ExplanationGolden(t *testing.T) {
	reg := provider.NewRegistry()
	reg.Register(readySim(t, provider.SimConfig{
		Descriptor: provider.Descriptor{
			ID:     "mixcoin",
			Name:   "MixCoin",
			Levels: []provider.PrivacyLevel{provider.LevelFullEncryption},
			Tokens: []string{provider.TokenWildcard},
		},
		FeePercent:   0.5,
		LatencyMS:    12000,
		AnonymitySet: 10000,
	}))
	reg.Register(readySim(t, provider.SimConfig{
		Descriptor: provider.Descriptor{
			ID:     "aztec",
			Name:   "Aztec",
			Levels: []provider.PrivacyLevel{provider.LevelFullEncryption},
			Tokens: []string{provider.TokenWildcard},
		},
		FeePercent:   1.0,
		LatencyMS:    8000,
		AnonymitySet: 100,
	}))
	reg.Register(readySim(t, provider.SimConfig{
		Descriptor: provider.Descriptor{
			ID:     "railgun",
			Name:   "Railgun",
			Levels: []provider.PrivacyLevel{provider.LevelFullEncryption},
			Tokens: []string{provider.TokenWildcard},
		},
		FeePercent:   2.5,
		LatencyMS:    30000,
		AnonymitySet: 1000000,
		Warnings:     []string{"shallow pool"},
	}))

	s := NewSelector(reg, WithReferences(map[string]Reference{
		"mixcoin": {AvgFeePercent: 0.5, AvgLatencyMS: 12000},
		"aztec":   {AvgFeePercent: 1.0, AvgLatencyMS: 8000},
		"railgun": {AvgFeePercent: 2.5, AvgLatencyMS: 30000},
	}))

	rec, err := s.Recommend(context.Background(), Criteria{
		Level:  provider.LevelFullEncryption,
		Token:  "ETH",
		Amount: 10,
	})
	require.NoError(t, err)
	require.Equal(t, "mixcoin", rec.Recommended.ProviderID)
	require.Len(t, rec.Alternatives, 2)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "recommend_explanation", []byte(rec.Explanation))
}

func TestRecommend_ExplanationNoAlternativesGolden(t *testing.T) {
	s := NewSelector(twoProviderRegistry(t), WithReferences(map[string]Reference{
		"mixcoin": {AvgFeePercent: 0.2, AvgLatencyMS: 5000},
	}))

	rec, err := s.Recommend(context.Background(), Criteria{
		Level:  provider.LevelFullEncryption,
		Token:  "ETH",
		Amount: 5,
		MaxFee: 0.05,
	})
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "recommend_explanation_single", []byte(rec.Explanation))
}
