package stream

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tokenscan/internal/metrics"
	"tokenscan/internal/model"
)

// DefaultFlushInterval is the cadence at which buffered updates are
// handed to the sink.
const DefaultFlushInterval = 500 * time.Millisecond

// TickUpdate is one buffered price update, already reduced to the
// latest usable swap for its pair. Swap is nil when the tick carried
// no usable trade details.
type TickUpdate struct {
	ID       model.PairID
	NewPrice float64
	Swap     *Swap
}

// StatsUpdate is one buffered pair-stats payload.
type StatsUpdate struct {
	ID   model.PairID
	Data PairStatsData
}

// Sink receives drained batches. Updates within a batch are in arrival
// order and a pair may appear more than once; the sink applies them in
// sequence, so the last price wins while every swap's volume and
// transaction delta still lands.
type Sink interface {
	ApplyTickBatch(ticks []TickUpdate)
	ApplyPairStatsBatch(stats []StatsUpdate)
}

// BatcherConfig holds the tunables of a Batcher.
type BatcherConfig struct {
	FlushInterval time.Duration
}

// DefaultBatcherConfig returns the standard batching cadence.
func DefaultBatcherConfig() BatcherConfig {
	return BatcherConfig{FlushInterval: DefaultFlushInterval}
}

// Batcher buffers high frequency stream updates and flushes them to
// the sink on a fixed interval. Buffers are append-only so no update's
// side effects are lost between flushes.
type Batcher struct {
	cfg    BatcherConfig
	sink   Sink
	logger *zap.Logger

	mu    sync.Mutex
	ticks []TickUpdate
	stats []StatsUpdate

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBatcher creates a Batcher flushing into sink.
func NewBatcher(cfg BatcherConfig, sink Sink, logger *zap.Logger) *Batcher {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batcher{
		cfg:    cfg,
		sink:   sink,
		logger: logger,
	}
}

// Start launches the flush loop. It runs until ctx is cancelled or
// Stop is called.
func (b *Batcher) Start(ctx context.Context) {
	ctx, b.cancel = context.WithCancel(ctx)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		ticker := time.NewTicker(b.cfg.FlushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.Flush()
			}
		}
	}()

	b.logger.Info("batcher started",
		zap.Duration("flush_interval", b.cfg.FlushInterval))
}

// Stop halts the flush loop and drains whatever is still buffered.
func (b *Batcher) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	b.Flush()
}

// AddTick buffers a tick update. Ticks for the same pair are kept
// individually: the reconciler applies them in sequence, accumulating
// each swap's volume and buy/sell contribution.
func (b *Batcher) AddTick(u TickUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ticks = append(b.ticks, u)
}

// AddStats buffers a pair-stats update.
func (b *Batcher) AddStats(u StatsUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = append(b.stats, u)
}

// Flush drains the buffers and hands non-empty batches to the sink.
// The buffers are swapped out under the lock so producers never wait
// on the sink.
func (b *Batcher) Flush() {
	b.mu.Lock()
	ticks, stats := b.ticks, b.stats
	b.ticks, b.stats = nil, nil
	b.mu.Unlock()

	if len(ticks) > 0 {
		b.sink.ApplyTickBatch(ticks)
		metrics.BatchFlushes.WithLabelValues("tick").Inc()
		metrics.BatchItems.WithLabelValues("tick").Add(float64(len(ticks)))
	}
	if len(stats) > 0 {
		b.sink.ApplyPairStatsBatch(stats)
		metrics.BatchFlushes.WithLabelValues("pair_stats").Inc()
		metrics.BatchItems.WithLabelValues("pair_stats").Add(float64(len(stats)))
	}
}

// Pending reports how many updates are currently buffered.
func (b *Batcher) Pending() (ticks, stats int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ticks), len(b.stats)
}
