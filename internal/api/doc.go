// Package api provides the REST client for the upstream scanner API.
//
// One endpoint matters: GET /scanner, a paginated, ranked snapshot of
// tradable pairs. The client retries transient failures (5xx, 429)
// with jittered exponential backoff; everything else surfaces to the
// caller as a retryable query error.
package api
