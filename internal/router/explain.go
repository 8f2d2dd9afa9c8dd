package router

import (
	"fmt"
	"strings"
)

// maxExplainedAlternatives bounds how many runners-up the rationale
// names. The full ranked list is still returned on the Recommendation.
const maxExplainedAlternatives = 2

// explain assembles the recommendation rationale: recommended name and
// reasons, the estimate summary, and up to two alternatives with scores.
//
// Deterministic text concatenation only. The output is advisory and may
// change between releases; nothing is allowed to parse it.
func explain(rec *Recommendation, criteria Criteria) string {
	var b strings.Builder

	r := rec.Recommended
	fmt.Fprintf(&b, "Recommended: %s (score %.0f)\n", r.Descriptor.Name, r.Score)
	for _, reason := range r.Reasons {
		fmt.Fprintf(&b, "  - %s\n", reason)
	}

	fmt.Fprintf(&b, "Estimated fee: %.4f settlement units", r.Estimate.Fee)
	if r.Estimate.TokenFee > 0 {
		fmt.Fprintf(&b, " (%.4f %s)", r.Estimate.TokenFee, criteria.Token)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Estimated latency: %.1fs\n", float64(r.Estimate.LatencyMS)/1000)

	if r.Estimate.AnonymitySet > 0 {
		fmt.Fprintf(&b, "Anonymity set: ~%d participants\n", r.Estimate.AnonymitySet)
	}
	for _, w := range r.Estimate.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}

	if len(rec.Alternatives) == 0 {
		b.WriteString("No alternatives matched the criteria.\n")
		return b.String()
	}

	b.WriteString("Alternatives:\n")
	for i, alt := range rec.Alternatives {
		if i == maxExplainedAlternatives {
			fmt.Fprintf(&b, "  (and %d more)\n", len(rec.Alternatives)-maxExplainedAlternatives)
			break
		}
		fmt.Fprintf(&b, "  %d. %s (score %.0f)\n", i+1, alt.Descriptor.Name, alt.Score)
	}
	return b.String()
}
