// Package view orchestrates the scanner views: it runs the paginated
// snapshot queries, keeps the streaming subscriptions in step with the
// visible pages, and routes decoded stream messages into the batcher.
package view
