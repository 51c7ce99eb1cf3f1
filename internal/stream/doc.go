// Package stream defines the wire protocol of the streaming channel
// and the batching layer between it and the entity store.
//
// Inbound frames are decoded at the channel boundary into a closed set
// of message variants (tick, pair-stats, scanner-pairs); anything else
// is discarded. The Batcher buffers decoded updates and flushes them
// to the store on a fixed cadence so render-facing state changes at a
// bounded rate regardless of message arrival frequency.
package stream
