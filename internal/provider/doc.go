// Package provider defines the capability contract every privacy backend
// connector must satisfy, plus the keyed registry that holds registered
// connectors.
//
// This package contains contract types and the registry only. Both the
// router and the pipeline packages import provider; provider imports no
// other internal package. This keeps the capability contract the
// foundational layer with no circular dependencies.
//
// A connector wraps exactly one privacy-preserving transfer protocol and
// delegates all proof generation, MPC, and commitment-scheme work to its
// external protocol library. Nothing in this module implements
// cryptography; connectors are orchestrated, never inspected.
package provider
