// Package plan compiles declarative pipeline definitions written in CUE
// into executable pipelines.
//
// A plan file declares a named, ordered list of steps:
//
//	plan: {
//		name: "cashout"
//		context: recipient: "0xabc"
//		steps: [
//			{kind: "deposit", provider: "mixcoin", token: "ETH", amount: 1.5},
//			{kind: "wait", duration: "30s"},
//			{kind: "withdraw", provider: "mixcoin", token: "ETH", amount: 1.5},
//		]
//	}
//
// Custom steps carry Go closures and therefore cannot be expressed in a
// plan file; they exist only on the programmatic builder.
package plan

import (
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/veilio/veil/internal/pipeline"
	"github.com/veilio/veil/internal/provider"
)

// Plan is a compiled pipeline definition.
type Plan struct {
	// Name labels the plan in output and the journal.
	Name string

	// Context seeds the execution context (string values only; richer
	// seeding belongs to the programmatic builder).
	Context map[string]string

	// Steps are the compiled steps in declaration order.
	Steps []pipeline.Step
}

// rawPlan mirrors the CUE structure for decoding.
type rawPlan struct {
	Name    string            `json:"name"`
	Context map[string]string `json:"context"`
	Steps   []rawStep         `json:"steps"`
}

type rawStep struct {
	Kind       string  `json:"kind"`
	Provider   string  `json:"provider"`
	Token      string  `json:"token"`
	Amount     float64 `json:"amount"`
	Recipient  string  `json:"recipient"`
	Level      string  `json:"level"`
	Commitment string  `json:"commitment"`
	Memo       string  `json:"memo"`
	Proof      string  `json:"proof"`
	Duration   string  `json:"duration"`
}

// CompileFile reads and compiles a plan file.
func CompileFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return Compile(data, path)
}

// Compile parses CUE source into a Plan. filename is used for error
// positions only.
func Compile(src []byte, filename string) (*Plan, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	planVal := v.LookupPath(cue.ParsePath("plan"))
	if !planVal.Exists() {
		return nil, &CompileError{Field: "plan", Message: "top-level plan struct is required"}
	}
	if err := planVal.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var raw rawPlan
	if err := planVal.Decode(&raw); err != nil {
		return nil, formatCUEError(err)
	}

	if raw.Name == "" {
		return nil, &CompileError{Field: "plan.name", Message: "name is required", Pos: planVal.Pos()}
	}
	if len(raw.Steps) == 0 {
		return nil, &CompileError{Field: "plan.steps", Message: "at least one step is required", Pos: planVal.Pos()}
	}

	p := &Plan{
		Name:    raw.Name,
		Context: raw.Context,
		Steps:   make([]pipeline.Step, 0, len(raw.Steps)),
	}
	for i, rs := range raw.Steps {
		step, err := compileStep(rs, i)
		if err != nil {
			return nil, err
		}
		p.Steps = append(p.Steps, step)
	}
	return p, nil
}

// compileStep converts one declared step, validating its kind, provider
// binding, and parameters.
func compileStep(rs rawStep, index int) (pipeline.Step, error) {
	field := fmt.Sprintf("plan.steps[%d]", index)

	switch pipeline.StepKind(rs.Kind) {
	case pipeline.StepDeposit, pipeline.StepTransfer, pipeline.StepWithdraw, pipeline.StepProve:
		if rs.Provider == "" {
			return pipeline.Step{}, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("%s step requires an explicit provider", rs.Kind),
			}
		}
	case pipeline.StepWait:
		if rs.Duration == "" {
			return pipeline.Step{}, &CompileError{
				Field:   field,
				Message: "wait step requires a duration",
			}
		}
	case pipeline.StepCustom:
		return pipeline.Step{}, &CompileError{
			Field:   field,
			Message: "custom steps cannot be declared in plan files",
		}
	default:
		return pipeline.Step{}, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unknown step kind %q", rs.Kind),
		}
	}

	var level provider.PrivacyLevel
	if rs.Level != "" {
		parsed, err := provider.ParseLevel(rs.Level)
		if err != nil {
			return pipeline.Step{}, &CompileError{Field: field, Message: err.Error()}
		}
		level = parsed
	}

	switch pipeline.StepKind(rs.Kind) {
	case pipeline.StepDeposit:
		return pipeline.Step{
			Kind:       pipeline.StepDeposit,
			ProviderID: rs.Provider,
			Deposit: provider.DepositParams{
				Token:      rs.Token,
				Amount:     rs.Amount,
				Commitment: rs.Commitment,
			},
		}, nil

	case pipeline.StepTransfer:
		return pipeline.Step{
			Kind:       pipeline.StepTransfer,
			ProviderID: rs.Provider,
			Transfer: provider.TransferParams{
				Token:     rs.Token,
				Amount:    rs.Amount,
				Recipient: rs.Recipient,
				Level:     level,
				Memo:      rs.Memo,
			},
		}, nil

	case pipeline.StepWithdraw:
		return pipeline.Step{
			Kind:       pipeline.StepWithdraw,
			ProviderID: rs.Provider,
			Withdraw: provider.WithdrawParams{
				Token:      rs.Token,
				Amount:     rs.Amount,
				Recipient:  rs.Recipient,
				Commitment: rs.Commitment,
			},
		}, nil

	case pipeline.StepProve:
		return pipeline.Step{
			Kind:       pipeline.StepProve,
			ProviderID: rs.Provider,
			Prove: provider.ProveParams{
				Kind:       rs.Proof,
				Commitment: rs.Commitment,
			},
		}, nil

	default: // wait, validated above
		d, err := time.ParseDuration(rs.Duration)
		if err != nil {
			return pipeline.Step{}, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("invalid duration %q", rs.Duration),
			}
		}
		if d < 0 {
			return pipeline.Step{}, &CompileError{
				Field:   field,
				Message: "duration must not be negative",
			}
		}
		return pipeline.Step{Kind: pipeline.StepWait, Duration: d}, nil
	}
}

// Pipeline assembles an executable pipeline from the plan over registry.
func (p *Plan) Pipeline(registry *provider.Registry, opts ...pipeline.Option) *pipeline.Pipeline {
	pl := pipeline.New(registry, opts...)
	for key, value := range p.Context {
		pl.SetContext(key, value)
	}
	for _, step := range p.Steps {
		switch step.Kind {
		case pipeline.StepDeposit:
			pl.AddDeposit(step.ProviderID, step.Deposit)
		case pipeline.StepTransfer:
			pl.AddTransfer(step.ProviderID, step.Transfer)
		case pipeline.StepWithdraw:
			pl.AddWithdraw(step.ProviderID, step.Withdraw)
		case pipeline.StepProve:
			pl.AddProve(step.ProviderID, step.Prove)
		case pipeline.StepWait:
			pl.AddWait(step.Duration)
		}
	}
	return pl
}
