// Package workflow implements the refund conversation core: a small
// interpreter over a declared graph of five stages (intent review,
// collector, image analysis, decision, finalizer) joined by pure
// routers. One inbound message drives one bounded walk; a walk pauses
// whenever a stage needs more input and terminates at the finalizer.
package workflow
