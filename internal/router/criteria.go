package router

import (
	"fmt"

	"github.com/veilio/veil/internal/provider"
)

// Criteria describes one selection request. Constructed per call and
// never mutated by the engine.
//
// Zero values mean "unset" for the optional constraints: MaxFee 0 means
// no fee ceiling, MaxLatencyMS 0 means no latency ceiling, Preferred ""
// means no preference.
type Criteria struct {
	// Level is the requested privacy level. Required.
	Level provider.PrivacyLevel

	// Token is the asset to operate on. Required.
	Token string

	// Amount is the transfer amount, used for cost estimation.
	Amount float64

	// MaxFee caps the estimated settlement fee. 0 disables the cap.
	MaxFee float64

	// MaxLatencyMS caps the estimated latency. 0 disables the cap.
	MaxLatencyMS int64

	// Preferred names a provider ID to favor in scoring. It is a bonus,
	// not a filter: the preferred provider still must survive all hard
	// filters.
	Preferred string

	// RequireCompliance drops providers without compliant-pool support.
	RequireCompliance bool

	// RequireOnChainVerification drops providers whose proofs are not
	// verified on-chain.
	RequireOnChainVerification bool
}

// summary renders the criteria for error messages and logs.
func (c Criteria) summary() string {
	s := fmt.Sprintf("level=%s token=%s", c.Level, c.Token)
	if c.MaxFee > 0 {
		s += fmt.Sprintf(" max_fee=%g", c.MaxFee)
	}
	if c.MaxLatencyMS > 0 {
		s += fmt.Sprintf(" max_latency_ms=%d", c.MaxLatencyMS)
	}
	if c.RequireCompliance {
		s += " compliance=required"
	}
	if c.RequireOnChainVerification {
		s += " onchain_verification=required"
	}
	return s
}
