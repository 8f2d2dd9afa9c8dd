package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/veilio/veil/internal/journal"
	"github.com/veilio/veil/internal/provider"
	"github.com/veilio/veil/internal/router"
)

// resultView is the JSON shape of one ranked selection result.
type resultView struct {
	ProviderID   string   `json:"provider_id"`
	Name         string   `json:"name"`
	Score        float64  `json:"score"`
	Fee          float64  `json:"fee"`
	TokenFee     float64  `json:"token_fee,omitempty"`
	LatencyMS    int64    `json:"latency_ms"`
	AnonymitySet int64    `json:"anonymity_set,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	Reasons      []string `json:"reasons"`
}

// routeView is the JSON shape of `veil route`.
type routeView struct {
	Recommended  resultView   `json:"recommended"`
	Alternatives []resultView `json:"alternatives,omitempty"`
	Explanation  string       `json:"explanation"`
}

// NewRouteCommand selects the best provider for a set of criteria.
func NewRouteCommand(opts *RootOptions) *cobra.Command {
	var (
		level          string
		token          string
		amount         float64
		maxFee         float64
		maxLatencyMS   int64
		prefer         string
		requireComply  bool
		requireOnChain bool
		journalPath    string
	)

	cmd := &cobra.Command{
		Use:           "route",
		Short:         "Recommend the best provider for a confidential transfer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			lvl, err := provider.ParseLevel(level)
			if err != nil {
				f.Fail("CRITERIA", err.Error())
				return WrapExitError(ExitCommandError, "parse level", err)
			}

			env, err := loadEnvironment(ctx, opts)
			if err != nil {
				f.Fail("CONFIG", err.Error())
				return WrapExitError(ExitCommandError, "load environment", err)
			}

			criteria := router.Criteria{
				Level:                      lvl,
				Token:                      token,
				Amount:                     amount,
				MaxFee:                     maxFee,
				MaxLatencyMS:               maxLatencyMS,
				Preferred:                  prefer,
				RequireCompliance:          requireComply,
				RequireOnChainVerification: requireOnChain,
			}

			rec, err := env.Selector.Recommend(ctx, criteria)
			if err != nil {
				code := "SELECTION"
				if router.IsNoCandidate(err) {
					code = "NO_CANDIDATE"
				} else if router.IsEstimationFailure(err) {
					code = "ESTIMATION_FAILED"
				}
				f.Fail(code, err.Error())
				return WrapExitError(ExitFailure, "route", err)
			}

			if journalPath != "" {
				if err := recordSelection(ctx, journalPath, criteria, rec); err != nil {
					slog.Warn("journal write failed", "error", err)
				}
			}

			if f.JSON() {
				view := routeView{
					Recommended: viewOf(rec.Recommended),
					Explanation: rec.Explanation,
				}
				for _, alt := range rec.Alternatives {
					view.Alternatives = append(view.Alternatives, viewOf(alt))
				}
				return f.Success(view)
			}
			return f.Success(rec.Explanation)
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "required privacy level")
	cmd.Flags().StringVar(&token, "token", "", "token to transfer")
	cmd.Flags().Float64Var(&amount, "amount", 0, "transfer amount")
	cmd.Flags().Float64Var(&maxFee, "max-fee", 0, "maximum acceptable fee (0 = no cap)")
	cmd.Flags().Int64Var(&maxLatencyMS, "max-latency-ms", 0, "maximum acceptable latency (0 = no cap)")
	cmd.Flags().StringVar(&prefer, "prefer", "", "preferred provider ID")
	cmd.Flags().BoolVar(&requireComply, "require-compliance", false, "require compliant-pool support")
	cmd.Flags().BoolVar(&requireOnChain, "require-onchain", false, "require on-chain proof verification")
	cmd.Flags().StringVar(&journalPath, "journal", "", "record the selection in this journal database")
	_ = cmd.MarkFlagRequired("level")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func viewOf(r router.Result) resultView {
	v := resultView{
		ProviderID: r.ProviderID,
		Name:       r.Descriptor.Name,
		Score:      r.Score,
		Reasons:    r.Reasons,
	}
	if r.Estimate != nil {
		v.Fee = r.Estimate.Fee
		v.TokenFee = r.Estimate.TokenFee
		v.LatencyMS = r.Estimate.LatencyMS
		v.AnonymitySet = r.Estimate.AnonymitySet
		v.Warnings = r.Estimate.Warnings
	}
	return v
}

// recordSelection appends the decision to the journal. Best effort from
// the command's perspective: a journal failure never fails the route.
func recordSelection(ctx context.Context, path string, criteria router.Criteria, rec *router.Recommendation) error {
	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	r := rec.Recommended
	sel := journal.SelectionRecord{
		Level:      string(criteria.Level),
		Token:      criteria.Token,
		Amount:     criteria.Amount,
		ProviderID: r.ProviderID,
		Score:      r.Score,
	}
	if r.Estimate != nil {
		sel.Fee = r.Estimate.Fee
		sel.LatencyMS = r.Estimate.LatencyMS
	}
	_, err = j.WriteSelection(ctx, sel)
	return err
}
