// Package performance measures how long units of work take.
//
// A Guard runs a function under its own span, always records
// function.duration_ms on it, and logs a warning when the function runs
// past its threshold. Run is the blocking form, Go starts the work on its
// own goroutine and returns a Future, and Wrap turns a function into its
// guarded equivalent. Errors and panics from the work pass through
// unchanged after being recorded.
//
// A Tracker covers checkpoints inside an operation: CheckAndLog warns when
// the time since the tracker started exceeds its threshold.
package performance
