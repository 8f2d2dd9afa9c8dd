package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veilio/veil/internal/journal"
	"github.com/veilio/veil/internal/pipeline"
	"github.com/veilio/veil/internal/plan"
)

// stepResultView is the JSON shape of one executed step.
type stepResultView struct {
	Index      int     `json:"index"`
	Kind       string  `json:"kind"`
	Name       string  `json:"name"`
	ProviderID string  `json:"provider_id,omitempty"`
	TxHash     string  `json:"tx_hash,omitempty"`
	Fee        float64 `json:"fee,omitempty"`
	Commitment string  `json:"commitment,omitempty"`
	Signature  string  `json:"signature,omitempty"`
	Proof      string  `json:"proof,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// runView is the JSON shape of `veil run`.
type runView struct {
	Plan     string           `json:"plan"`
	RunToken string           `json:"run_token"`
	Success  bool             `json:"success"`
	TotalFee float64          `json:"total_fee"`
	Steps    []stepResultView `json:"steps"`
}

// NewRunCommand executes a plan file against the configured providers.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	var journalPath string

	cmd := &cobra.Command{
		Use:           "run <plan-file>",
		Short:         "Execute a plan as a pipeline",
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

			result, execErr := pl.Pipeline(env.Registry).Execute(ctx)
			if result == nil {
				// Execution never started. No run token, nothing to
				// journal.
				f.Fail("RUN", execErr.Error())
				return WrapExitError(ExitFailure, "run plan", execErr)
			}

			if journalPath != "" {
				if err := recordRun(ctx, journalPath, result); err != nil {
					slog.Warn("journal write failed", "error", err)
				}
			}

			view := runViewOf(pl.Name, result)
			if f.JSON() {
				if err := f.Success(view); err != nil {
					return err
				}
			} else {
				if err := f.Success(renderRun(view)); err != nil {
					return err
				}
			}

			if !result.Success {
				return WrapExitError(ExitFailure, "run plan", execErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&journalPath, "journal", "", "record the run in this journal database")

	return cmd
}

func runViewOf(name string, result *pipeline.Result) runView {
	view := runView{
		Plan:     name,
		RunToken: result.RunToken,
		Success:  result.Success,
		TotalFee: result.TotalFee,
	}
	for _, s := range result.Steps {
		sv := stepResultView{
			Index:      s.Index,
			Kind:       string(s.Kind),
			Name:       s.Name,
			ProviderID: s.ProviderID,
		}
		if s.Op != nil {
			sv.TxHash = s.Op.TxHash
			sv.Fee = s.Op.Fee
			sv.Commitment = s.Op.Commitment
			sv.Signature = s.Op.Signature
			sv.Proof = string(s.Op.Proof)
		}
		if s.Err != nil {
			sv.Error = s.Err.Error()
		}
		view.Steps = append(view.Steps, sv)
	}
	return view
}

func renderRun(view runView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan: %s (run %s)\n", view.Plan, view.RunToken)
	for _, s := range view.Steps {
		if s.Error != "" {
			fmt.Fprintf(&b, "  %d. %s: FAILED: %s\n", s.Index+1, s.Name, s.Error)
			continue
		}
		fmt.Fprintf(&b, "  %d. %s", s.Index+1, s.Name)
		if s.TxHash != "" {
			fmt.Fprintf(&b, " tx=%s fee=%.4f", s.TxHash, s.Fee)
		}
		b.WriteString("\n")
	}
	status := "completed"
	if !view.Success {
		status = "failed"
	}
	fmt.Fprintf(&b, "Run %s: total fee %.4f", status, view.TotalFee)
	return b.String()
}

// recordRun persists the run and its steps. Journal failures are logged
// by the caller, never fatal to the run itself.
func recordRun(ctx context.Context, path string, result *pipeline.Result) error {
	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	run := journal.RunRecord{
		RunToken: result.RunToken,
		Steps:    len(result.Steps),
		TotalFee: result.TotalFee,
		Success:  result.Success,
	}
	steps := make([]journal.StepRecord, 0, len(result.Steps))
	for _, s := range result.Steps {
		rec := journal.StepRecord{
			RunToken:   result.RunToken,
			Index:      s.Index,
			Kind:       string(s.Kind),
			Name:       s.Name,
			ProviderID: s.ProviderID,
		}
		if s.Op != nil {
			rec.Fee = s.Op.Fee
			rec.Commitment = s.Op.Commitment
			rec.Signature = s.Op.Signature
		}
		if s.Err != nil {
			rec.Error = s.Err.Error()
		}
		steps = append(steps, rec)
	}
	return j.WriteRun(ctx, run, steps)
}
