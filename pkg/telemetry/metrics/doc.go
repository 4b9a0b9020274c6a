// Package metrics exposes the item service's Prometheus metrics.
//
// The collector counts HTTP requests and their durations, operations the
// instrumentation flagged as slow, exceptions that passed the logging
// policy, and item cache hits and misses. Path labels are capped by a
// cardinality limiter; paths past the cap are reported as "other".
package metrics
