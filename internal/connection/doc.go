// Package connection maintains the single websocket connection to the
// streaming endpoint.
//
// The manager dials, reconnects with exponential backoff (base delay
// doubling per consecutive failure, capped, reset once open), decodes
// inbound frames at the boundary and fans them out to registered
// listeners. Sends issued while the socket is down are retried on a
// fixed cadence until it opens again.
package connection
