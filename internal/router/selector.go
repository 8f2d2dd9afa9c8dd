package router

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/veilio/veil/internal/provider"
)

// Reasons attached to every surviving candidate.
const (
	reasonSupportsLevel = "supports requested privacy level"
	reasonSupportsToken = "supports requested token"
	reasonPreferred     = "named as preferred provider"
)

// candidate is a provider that survived the hard filters, paired with
// its fresh estimate. Internal to selection; callers see Result.
type candidate struct {
	p        provider.Provider
	desc     provider.Descriptor
	estimate *provider.CostEstimate
	reasons  []string
	score    float64
}

// Result is one ranked selection outcome. Ephemeral: built per call and
// returned to the caller, never retained by the engine.
type Result struct {
	ProviderID string
	Provider   provider.Provider
	Descriptor provider.Descriptor
	Estimate   *provider.CostEstimate
	Score      float64
	Reasons    []string
}

// Recommendation bundles the best match with the full ranked remainder
// and an assembled rationale.
type Recommendation struct {
	Recommended  Result
	Alternatives []Result
	Explanation  string
}

// Selector filters and ranks registered providers for a request.
//
// The registry is read-only during selection; reference tables and the
// scoring policy are injected at construction so tests can substitute
// synthetic values.
type Selector struct {
	registry *provider.Registry
	scoring  ScoringConfig
	refs     map[string]Reference
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithScoring replaces the default scoring policy.
func WithScoring(cfg ScoringConfig) SelectorOption {
	return func(s *Selector) {
		s.scoring = cfg
	}
}

// WithReferences installs the static per-provider fee/latency averages.
// Providers without an entry score with zero-value references, which is
// the most favorable fee/latency assumption; supply real numbers in
// production configuration.
func WithReferences(refs map[string]Reference) SelectorOption {
	return func(s *Selector) {
		s.refs = refs
	}
}

// NewSelector creates a selector over registry.
func NewSelector(registry *provider.Registry, opts ...SelectorOption) *Selector {
	s := &Selector{
		registry: registry,
		scoring:  DefaultScoring(),
		refs:     make(map[string]Reference),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectBest returns the highest-scoring usable provider for the
// criteria. Returns a SelectionError with ErrCodeNoCandidate when
// filtering removes every registered provider.
func (s *Selector) SelectBest(ctx context.Context, criteria Criteria) (*Result, error) {
	ranked, err := s.rank(ctx, criteria)
	if err != nil {
		return nil, err
	}

	best := ranked[0]
	slog.Info("provider selected",
		"provider", best.ProviderID,
		"score", best.Score,
		"level", criteria.Level,
		"token", criteria.Token,
	)
	return &best, nil
}

// Recommend runs the same filtering and scoring as SelectBest and also
// returns the ranked remainder plus rationale text. The explanation is
// advisory prose for humans; nothing machine-parses it.
func (s *Selector) Recommend(ctx context.Context, criteria Criteria) (*Recommendation, error) {
	ranked, err := s.rank(ctx, criteria)
	if err != nil {
		return nil, err
	}

	rec := &Recommendation{
		Recommended:  ranked[0],
		Alternatives: ranked[1:],
	}
	rec.Explanation = explain(rec, criteria)
	return rec, nil
}

// rank produces the scored, descending-ordered candidate list.
// Returns ErrCodeNoCandidate when the list would be empty.
func (s *Selector) rank(ctx context.Context, criteria Criteria) ([]Result, error) {
	candidates, err := s.candidates(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, newNoCandidateError(criteria)
	}

	for _, c := range candidates {
		if criteria.Preferred != "" && criteria.Preferred == c.desc.ID {
			c.reasons = append(c.reasons, reasonPreferred)
		}
		c.score = s.scoring.score(c, criteria, s.refs[c.desc.ID])
	}

	// Stable sort keeps the registry's ID order on score ties, so
	// repeated calls against identical state rank identically.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{
			ProviderID: c.desc.ID,
			Provider:   c.p,
			Descriptor: c.desc,
			Estimate:   c.estimate,
			Score:      c.score,
			Reasons:    c.reasons,
		}
	}
	return results, nil
}

// candidates applies the hard filters in declared order, then issues
// cost estimates for the survivors and applies the numeric constraints.
//
// The declared support sets filter BEFORE any cost query is issued: a
// provider that cannot serve the level or token never sees the request.
//
// Estimate calls fan out concurrently; each candidate's slot is written
// by exactly one goroutine, and ranking depends only on the returned
// numbers, so the fan-out cannot affect the final order. An estimate
// failure aborts the whole selection (see newEstimationError).
func (s *Selector) candidates(ctx context.Context, criteria Criteria) ([]*candidate, error) {
	var survivors []*candidate

	for _, p := range s.registry.List() {
		desc := p.Descriptor()

		if !p.Ready() {
			slog.Debug("candidate dropped: not ready", "provider", desc.ID)
			continue
		}
		if !desc.SupportsLevel(criteria.Level) {
			slog.Debug("candidate dropped: level not declared",
				"provider", desc.ID, "level", criteria.Level)
			continue
		}
		if !desc.SupportsToken(criteria.Token) {
			slog.Debug("candidate dropped: token not declared",
				"provider", desc.ID, "token", criteria.Token)
			continue
		}
		if criteria.RequireCompliance && !desc.Compliance {
			slog.Debug("candidate dropped: compliance required", "provider", desc.ID)
			continue
		}
		if criteria.RequireOnChainVerification && !desc.OnChainVerification {
			slog.Debug("candidate dropped: on-chain verification required", "provider", desc.ID)
			continue
		}

		survivors = append(survivors, &candidate{
			p:       p,
			desc:    desc,
			reasons: []string{reasonSupportsLevel, reasonSupportsToken},
		})
	}

	if len(survivors) == 0 {
		return nil, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range survivors {
		g.Go(func() error {
			est, err := c.p.Estimate(gctx, provider.EstimateRequest{
				Operation: provider.OpTransfer,
				Token:     criteria.Token,
				Amount:    criteria.Amount,
				Level:     criteria.Level,
			})
			if err != nil {
				return newEstimationError(criteria, c.desc.ID, err)
			}
			c.estimate = est
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := survivors[:0]
	for _, c := range survivors {
		if criteria.MaxFee > 0 && c.estimate.Fee > criteria.MaxFee {
			slog.Debug("candidate dropped: fee above cap",
				"provider", c.desc.ID, "fee", c.estimate.Fee, "max_fee", criteria.MaxFee)
			continue
		}
		if criteria.MaxLatencyMS > 0 && c.estimate.LatencyMS > criteria.MaxLatencyMS {
			slog.Debug("candidate dropped: latency above cap",
				"provider", c.desc.ID, "latency_ms", c.estimate.LatencyMS, "max_latency_ms", criteria.MaxLatencyMS)
			continue
		}
		kept = append(kept, c)
	}
	return kept, nil
}
