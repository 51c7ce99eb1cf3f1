// Package metrics exposes Prometheus collectors for the scanner
// pipeline: stream decode, connection health, batching and REST
// fetch outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WSMessages counts decoded inbound messages by event kind.
	WSMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenscan_ws_messages_total",
		Help: "Inbound websocket messages decoded, by event kind.",
	}, []string{"event"})

	// WSDecodeErrors counts inbound payloads dropped at the decode boundary.
	WSDecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokenscan_ws_decode_errors_total",
		Help: "Inbound websocket payloads discarded as malformed or unknown.",
	})

	// WSReconnects counts reconnection attempts after a dropped connection.
	WSReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokenscan_ws_reconnects_total",
		Help: "Websocket reconnection attempts.",
	})

	// WSConnected reports the current connection state (1 = open).
	WSConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tokenscan_ws_connected",
		Help: "Whether the streaming connection is currently open.",
	})

	// BatchFlushes counts non-empty batch flushes by payload kind.
	BatchFlushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenscan_batch_flushes_total",
		Help: "Non-empty batch flushes handed to the reconciler, by kind.",
	}, []string{"kind"})

	// BatchItems counts items delivered through batch flushes by kind.
	BatchItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenscan_batch_items_total",
		Help: "Items delivered to the reconciler through batch flushes, by kind.",
	}, []string{"kind"})

	// ScannerFetches counts paginated snapshot fetches by view and outcome.
	ScannerFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenscan_scanner_fetches_total",
		Help: "Paginated scanner fetches, by view and outcome.",
	}, []string{"view", "outcome"})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
