// Package api holds the HTTP plumbing shared by the item service handlers:
// the JSON envelopes, request body decoding and the error-returning handler
// adapter.
package api
