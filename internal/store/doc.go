// Package store owns the canonical in-memory state of every known
// pair: entities, per-entity metadata, and the page indexes of each
// view.
//
// State transitions are copy-on-write. Writers serialize on a mutex,
// build a new immutable State and publish it through an atomic
// pointer; readers grab the current pointer and never block. Records
// are replaced whole, so a reader can never observe a partially
// updated entity. A batch that applies nothing leaves the published
// pointer untouched.
package store
