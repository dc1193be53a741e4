// Package domain holds the core types of the refund conversation:
// the per-session state, order records, analysis verdicts and the
// durable ledger entry. It has no dependencies and no behavior beyond
// small invariant-preserving helpers on the state.
package domain
