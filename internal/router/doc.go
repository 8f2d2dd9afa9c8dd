// Package router implements provider selection: filtering registered
// connectors against per-request criteria, scoring the survivors with a
// deterministic policy, and assembling a ranked recommendation with a
// human-readable rationale.
//
// Selection is pure with respect to engine state: the same registry
// contents and criteria always produce the same ranking. The only inputs
// are each candidate's declared descriptor, the injected reference
// tables, and the numbers its own estimate call returns. Estimate calls
// fan out concurrently as a latency optimization; results are keyed by
// candidate index so call order never affects the ranking.
package router
