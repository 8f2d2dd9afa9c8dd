// Package pipeline chains typed privacy operations across explicitly
// bound providers.
//
// A Pipeline is built step by step (deposit, transfer, withdraw, prove,
// wait, custom), then either executed or dry-run. Execution is strictly
// sequential: steps run in insertion order, derived state (running fee
// total, last commitment, last signature) is threaded through an
// execution-scoped Context, and the first failing step halts the run
// with no entries for the steps that never got a chance.
//
// The pipeline never selects providers. Every provider-bound step names
// its provider ID explicitly; routing decisions belong to the router
// package and happen before a pipeline is assembled.
package pipeline
