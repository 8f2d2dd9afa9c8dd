package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veilio/veil/internal/provider"
)

// providerView is the JSON shape of one connector in `veil providers`.
type providerView struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Ready               bool     `json:"ready"`
	Levels              []string `json:"levels"`
	Tokens              []string `json:"tokens"`
	Compliance          bool     `json:"compliance"`
	OnChainVerification bool     `json:"onchain_verification"`
	Balance             *float64 `json:"balance,omitempty"`
}

// NewProvidersCommand lists the configured connectors and their declared
// capabilities.
func NewProvidersCommand(opts *RootOptions) *cobra.Command {
	var (
		balances bool
		token    string
	)

	cmd := &cobra.Command{
		Use:           "providers",
		Short:         "List configured privacy providers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			env, err := loadEnvironment(ctx, opts)
			if err != nil {
				f.Fail("CONFIG", err.Error())
				return WrapExitError(ExitCommandError, "load environment", err)
			}

			views := make([]providerView, 0, env.Registry.Len())
			for _, p := range env.Registry.List() {
				v := describeProvider(p)
				if balances {
					b, err := p.Balance(ctx, token)
					if err != nil {
						f.Fail("BALANCE", err.Error())
						return WrapExitError(ExitFailure, "query balance", err)
					}
					v.Balance = &b
				}
				views = append(views, v)
			}

			if f.JSON() {
				return f.Success(views)
			}
			return f.Success(renderProviders(views, token))
		},
	}

	cmd.Flags().BoolVar(&balances, "balances", false, "include shielded balances")
	cmd.Flags().StringVar(&token, "token", "", "token to query balances for (with --balances)")

	return cmd
}

func describeProvider(p provider.Provider) providerView {
	d := p.Descriptor()
	levels := make([]string, len(d.Levels))
	for i, l := range d.Levels {
		levels[i] = string(l)
	}
	return providerView{
		ID:                  d.ID,
		Name:                d.Name,
		Ready:               p.Ready(),
		Levels:              levels,
		Tokens:              d.Tokens,
		Compliance:          d.Compliance,
		OnChainVerification: d.OnChainVerification,
	}
}

func renderProviders(views []providerView, token string) string {
	var b strings.Builder
	for i, v := range views {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%s)\n", v.Name, v.ID)
		fmt.Fprintf(&b, "  ready: %t\n", v.Ready)
		fmt.Fprintf(&b, "  levels: %s\n", strings.Join(v.Levels, ", "))
		fmt.Fprintf(&b, "  tokens: %s\n", strings.Join(v.Tokens, ", "))
		fmt.Fprintf(&b, "  compliance: %t, onchain verification: %t\n",
			v.Compliance, v.OnChainVerification)
		if v.Balance != nil {
			fmt.Fprintf(&b, "  balance (%s): %.4f\n", token, *v.Balance)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
