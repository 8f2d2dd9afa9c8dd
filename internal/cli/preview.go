package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veilio/veil/internal/pipeline"
	"github.com/veilio/veil/internal/plan"
)

// stepProjectionView is the JSON shape of one projected step.
type stepProjectionView struct {
	Index      int      `json:"index"`
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	ProviderID string   `json:"provider_id,omitempty"`
	Fee        float64  `json:"fee"`
	LatencyMS  int64    `json:"latency_ms"`
	Warnings   []string `json:"warnings,omitempty"`
}

// projectionView is the JSON shape of `veil preview`.
type projectionView struct {
	Plan           string               `json:"plan"`
	Steps          []stepProjectionView `json:"steps"`
	TotalFee       float64              `json:"total_fee"`
	TotalLatencyMS int64                `json:"total_latency_ms"`
}

// NewPreviewCommand dry-runs a plan file: cost and latency projection
// without touching any chain state.
func NewPreviewCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "preview <plan-file>",
		Short:         "Project the cost of a plan without executing it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			pl, err := plan.CompileFile(args[0])
			if err != nil {
				f.Fail("PLAN", err.Error())
				return WrapExitError(ExitCommandError, "compile plan", err)
			}

			env, err := loadEnvironment(ctx, opts)
			if err != nil {
				f.Fail("CONFIG", err.Error())
				return WrapExitError(ExitCommandError, "load environment", err)
			}

			proj, err := pl.Pipeline(env.Registry).DryRun(ctx)
			if err != nil {
				f.Fail("PREVIEW", err.Error())
				return WrapExitError(ExitFailure, "preview plan", err)
			}

			view := projectionOf(pl.Name, proj)
			if f.JSON() {
				return f.Success(view)
			}
			return f.Success(renderProjection(view))
		},
	}

	return cmd
}

func projectionOf(name string, proj *pipeline.Projection) projectionView {
	view := projectionView{
		Plan:           name,
		TotalFee:       proj.TotalFee,
		TotalLatencyMS: proj.TotalLatencyMS,
	}
	for _, s := range proj.Steps {
		view.Steps = append(view.Steps, stepProjectionView{
			Index:      s.Index,
			Kind:       string(s.Kind),
			Name:       s.Name,
			ProviderID: s.ProviderID,
			Fee:        s.Fee,
			LatencyMS:  s.LatencyMS,
			Warnings:   s.Warnings,
		})
	}
	return view
}

func renderProjection(view projectionView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan: %s\n", view.Plan)
	for _, s := range view.Steps {
		fmt.Fprintf(&b, "  %d. %s", s.Index+1, s.Name)
		if s.ProviderID != "" {
			fmt.Fprintf(&b, " via %s", s.ProviderID)
		}
		fmt.Fprintf(&b, ": fee %.4f, latency %.1fs\n", s.Fee, float64(s.LatencyMS)/1000)
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "     warning: %s\n", w)
		}
	}
	fmt.Fprintf(&b, "Total: fee %.4f, latency %.1fs",
		view.TotalFee, float64(view.TotalLatencyMS)/1000)
	return b.String()
}
