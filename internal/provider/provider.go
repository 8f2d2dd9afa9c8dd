package provider

import (
	"context"
	"fmt"
)

// Operation identifies one capability-contract operation.
type Operation string

const (
	OpEstimate Operation = "estimate"
	OpBalance  Operation = "balance"
	OpDeposit  Operation = "deposit"
	OpTransfer Operation = "transfer"
	OpWithdraw Operation = "withdraw"
	OpProve    Operation = "prove"
)

// PrivacyLevel is the requested confidentiality mode for an operation.
//
// Levels form a rough strength ordering from LevelNone (no privacy) up to
// LevelFullEncryption. The ordering matters only to the router's scoring
// lookup; connectors treat levels as opaque set members.
type PrivacyLevel string

const (
	LevelNone           PrivacyLevel = "none"
	LevelAmountHidden   PrivacyLevel = "amount-hidden"
	LevelSenderHidden   PrivacyLevel = "sender-hidden"
	LevelCompliantPool  PrivacyLevel = "compliant-pool"
	LevelProofBased     PrivacyLevel = "proof-based"
	LevelFullEncryption PrivacyLevel = "full-encryption"
)

// TokenWildcard in a descriptor's token set matches any token.
const TokenWildcard = "*"

// Levels lists every known privacy level, weakest first.
func Levels() []PrivacyLevel {
	return []PrivacyLevel{
		LevelNone,
		LevelAmountHidden,
		LevelSenderHidden,
		LevelCompliantPool,
		LevelProofBased,
		LevelFullEncryption,
	}
}

// ParseLevel converts a configuration or flag string into a
// PrivacyLevel, rejecting unknown values.
func ParseLevel(s string) (PrivacyLevel, error) {
	for _, l := range Levels() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown privacy level %q", s)
}

// Descriptor is the static, declared shape of a connector: identity plus
// the support sets the router uses as hard filters before any cost query
// is issued.
type Descriptor struct {
	// ID is the registry key. Re-registering under the same ID replaces
	// the previous connector wholesale.
	ID string

	// Name is the human-readable display name used in explanations.
	Name string

	// Levels is the declared set of supported privacy levels.
	Levels []PrivacyLevel

	// Tokens is the declared set of supported tokens. A TokenWildcard
	// entry matches any token.
	Tokens []string

	// Compliance reports whether the connector supports compliant pools
	// (view keys, exit proofs, or equivalent).
	Compliance bool

	// OnChainVerification reports whether the connector's proofs are
	// verified on-chain rather than by a coordinator.
	OnChainVerification bool
}

// SupportsLevel reports whether level is in the declared level set.
func (d Descriptor) SupportsLevel(level PrivacyLevel) bool {
	for _, l := range d.Levels {
		if l == level {
			return true
		}
	}
	return false
}

// SupportsToken reports whether token is in the declared token set.
// A wildcard entry matches any token.
func (d Descriptor) SupportsToken(token string) bool {
	for _, t := range d.Tokens {
		if t == TokenWildcard || t == token {
			return true
		}
	}
	return false
}

// EstimateRequest describes the operation a cost estimate is wanted for.
type EstimateRequest struct {
	Operation Operation
	Token     string
	Amount    float64
	Level     PrivacyLevel
}

// CostEstimate is a connector's projection of what an operation would
// cost. Estimates are produced fresh on every call and never cached by
// the engine.
type CostEstimate struct {
	// Fee is denominated in settlement-currency units.
	Fee float64

	// TokenFee, when non-zero, is the same fee denominated in the
	// requested token.
	TokenFee float64

	// LatencyMS is the projected wall time for the operation.
	LatencyMS int64

	// AnonymitySet is the estimated number of indistinguishable
	// participants the operation would mix among. Zero means unknown.
	AnonymitySet int64

	// Warnings are advisory strings (low liquidity, degraded relayer,
	// shallow pool). They reduce score but never hard-filter.
	Warnings []string
}

// TransferParams carries the inputs for a confidential transfer.
type TransferParams struct {
	Token     string
	Amount    float64
	Recipient string
	Level     PrivacyLevel
	Memo      string
}

// DepositParams carries the inputs for a shielding deposit.
type DepositParams struct {
	Token      string
	Amount     float64
	Commitment string
}

// WithdrawParams carries the inputs for an unshielding withdrawal.
type WithdrawParams struct {
	Token      string
	Amount     float64
	Recipient  string
	Commitment string
}

// ProveParams carries the inputs for standalone proof generation.
type ProveParams struct {
	Kind       string
	Commitment string
	Statement  map[string]string
}

// OpResult is the outcome of a side-effecting capability operation.
// Every result carries at least the settlement fee actually paid;
// commitment and signature are populated where the protocol produces
// them.
type OpResult struct {
	TxHash     string
	Fee        float64
	Commitment string
	Signature  string
	Proof      []byte
}

// Provider is the capability contract every privacy backend satisfies.
//
// Init must succeed before Ready may report true. Supports answers from
// the declared sets only; it never performs I/O. All other methods may
// block on the underlying protocol library and must honor ctx.
type Provider interface {
	// Descriptor returns the connector's declared identity and support
	// sets. The returned value is a copy; mutating it has no effect.
	Descriptor() Descriptor

	// Init prepares the connector (key material, pool parameters,
	// relayer handshake). Idempotent.
	Init(ctx context.Context) error

	// Ready reports whether the connector can currently serve
	// operations. Always false before a successful Init.
	Ready() bool

	// Supports reports whether the connector declares support for the
	// given operation/token/level combination.
	Supports(op Operation, token string, level PrivacyLevel) bool

	// Balance returns the shielded balance for a token.
	Balance(ctx context.Context, token string) (float64, error)

	// Estimate projects the cost of an operation without side effects.
	Estimate(ctx context.Context, req EstimateRequest) (*CostEstimate, error)

	Deposit(ctx context.Context, params DepositParams) (*OpResult, error)
	Transfer(ctx context.Context, params TransferParams) (*OpResult, error)
	Withdraw(ctx context.Context, params WithdrawParams) (*OpResult, error)
	Prove(ctx context.Context, params ProveParams) (*OpResult, error)
}
