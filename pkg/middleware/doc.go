// Package middleware provides the HTTP middleware of the item service.
//
// # Middleware Chain
//
//	handler = Recovery(Tracing(CORS(mux)))
//
// Order (innermost to outermost):
//  1. CORS: Cross-Origin Resource Sharing headers and preflight answers
//  2. Tracing: one span per request, X-Process-Time, request metrics,
//     slow-response warnings and failure logging
//  3. Recovery: turns a panic into a 500 failure envelope
//
// Tracing sits inside Recovery so it observes a failing request before the
// panic is converted into a response. A panic reaches the logs once, through
// logger.Exception and its class filter: from Tracing, or from Recovery when
// Tracing never saw it. Paths under the skip prefixes (/health, /metrics,
// /static, /favicon.ico by default) bypass Tracing entirely. Prefixes match
// whole path segments.
package middleware
