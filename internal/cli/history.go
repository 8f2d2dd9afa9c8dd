package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/veilio/veil/internal/journal"
)

// NewHistoryCommand reads past selections and runs from a journal.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	var (
		journalPath string
		limit       int
		runToken    string
	)

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "Show recorded selections and runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			j, err := journal.Open(journalPath)
			if err != nil {
				f.Fail("JOURNAL", err.Error())
				return WrapExitError(ExitCommandError, "open journal", err)
			}
			defer j.Close()

			if runToken != "" {
				run, steps, err := j.ReadRun(ctx, runToken)
				if err != nil {
					code := "JOURNAL"
					if errors.Is(err, sql.ErrNoRows) {
						code = "RUN_NOT_FOUND"
					}
					f.Fail(code, err.Error())
					return WrapExitError(ExitFailure, "read run", err)
				}
				if f.JSON() {
					return f.Success(map[string]any{"run": run, "steps": steps})
				}
				return f.Success(renderRunRecord(run, steps))
			}

			selections, err := j.ReadSelections(ctx, limit)
			if err != nil {
				f.Fail("JOURNAL", err.Error())
				return WrapExitError(ExitFailure, "read selections", err)
			}
			if f.JSON() {
				return f.Success(selections)
			}
			return f.Success(renderSelections(selections))
		},
	}

	cmd.Flags().StringVar(&journalPath, "journal", "veil.db", "journal database path")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum selections to show (0 = all)")
	cmd.Flags().StringVar(&runToken, "run", "", "show one run by its token instead")

	return cmd
}

func renderSelections(selections []journal.SelectionRecord) string {
	if len(selections) == 0 {
		return "No selections recorded."
	}
	var b strings.Builder
	for i, s := range selections {
		if i > 0 {
			b.WriteString("\n")
		}
		ts := time.Unix(s.CreatedAt, 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(&b, "#%d %s level=%s token=%s amount=%g -> %s (score %.0f, fee %.4f, latency %.1fs)",
			s.Seq, ts, s.Level, s.Token, s.Amount, s.ProviderID,
			s.Score, s.Fee, float64(s.LatencyMS)/1000)
	}
	return b.String()
}

func renderRunRecord(run journal.RunRecord, steps []journal.StepRecord) string {
	var b strings.Builder
	status := "completed"
	if !run.Success {
		status = "failed"
	}
	ts := time.Unix(run.CreatedAt, 0).UTC().Format(time.RFC3339)
	fmt.Fprintf(&b, "Run %s (%s, %s): %d steps, total fee %.4f\n",
		run.RunToken, status, ts, run.Steps, run.TotalFee)
	for _, s := range steps {
		fmt.Fprintf(&b, "  %d. %s [%s]", s.Index+1, s.Name, s.Kind)
		if s.ProviderID != "" {
			fmt.Fprintf(&b, " via %s", s.ProviderID)
		}
		if s.Error != "" {
			fmt.Fprintf(&b, " FAILED: %s", s.Error)
		} else if s.Fee > 0 {
			fmt.Fprintf(&b, " fee=%.4f", s.Fee)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
