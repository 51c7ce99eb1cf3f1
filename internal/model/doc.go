// Package model defines the canonical domain types shared across the
// scanner: pair identity, the reconciled pair entity, and the derived
// display metadata (price history, cell effects).
package model
