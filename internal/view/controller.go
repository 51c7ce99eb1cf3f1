package view

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tokenscan/internal/api"
	"tokenscan/internal/connection"
	"tokenscan/internal/metrics"
	"tokenscan/internal/model"
	"tokenscan/internal/store"
	"tokenscan/internal/stream"
	"tokenscan/internal/subs"
)

// Fetcher runs paginated snapshot queries.
type Fetcher interface {
	GetScannerPage(ctx context.Context, params api.ScannerParams) (*api.ScannerResponse, error)
}

// Conn is the streaming connection surface the controller needs.
type Conn interface {
	Send(out stream.Outbound) error
	AddListener(l connection.Listener) uuid.UUID
	RemoveListener(id uuid.UUID)
	OnOpen(f func()) uuid.UUID
	RemoveOnOpen(id uuid.UUID)
}

// DefaultFilters returns the standard query parameters per view:
// trending ranks by volume, fresh by token age, both descending.
func DefaultFilters() map[model.View]api.ScannerParams {
	return map[model.View]api.ScannerParams{
		model.ViewTrending: {RankBy: api.RankByVolume, OrderBy: api.OrderDesc, Page: 1},
		model.ViewFresh:    {RankBy: api.RankByAge, OrderBy: api.OrderDesc, Page: 1},
	}
}

// Config holds the controller tunables.
type Config struct {
	// Filters are the initial query parameters per view. Defaults to
	// DefaultFilters when empty.
	Filters map[model.View]api.ScannerParams

	// Pages is how many pages to load per view on startup.
	Pages int

	// FlushInterval is the batching cadence for streamed updates.
	FlushInterval time.Duration

	// RefreshInterval re-runs the page-1 snapshot query per view.
	// Zero disables periodic refresh; streamed pushes still land.
	RefreshInterval time.Duration
}

// DefaultConfig returns the standard controller settings.
func DefaultConfig() Config {
	return Config{
		Filters:       DefaultFilters(),
		Pages:         1,
		FlushInterval: stream.DefaultFlushInterval,
	}
}

// Deps are the collaborators a controller drives.
type Deps struct {
	Fetcher Fetcher
	Conn    Conn
	Store   *store.Store
}

// Controller keeps both scanner views live: snapshot pages merged into
// the store, per-pair subscriptions matching exactly the union of
// visible pages, streamed updates batched into the store on a fixed
// cadence.
type Controller struct {
	cfg     Config
	fetcher Fetcher
	conn    Conn
	store   *store.Store
	tracker *subs.Tracker
	batcher *stream.Batcher
	logger  *zap.Logger

	mu         sync.Mutex
	filters    map[model.View]api.ScannerParams
	generation map[model.View]uint64

	listenerID uuid.UUID
	openID     uuid.UUID

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a controller. The store doubles as the batcher sink.
func New(cfg Config, deps Deps, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Filters) == 0 {
		cfg.Filters = DefaultFilters()
	}
	if cfg.Pages <= 0 {
		cfg.Pages = 1
	}

	filters := make(map[model.View]api.ScannerParams, len(cfg.Filters))
	for v, p := range cfg.Filters {
		filters[v] = p
	}

	return &Controller{
		cfg:        cfg,
		fetcher:    deps.Fetcher,
		conn:       deps.Conn,
		store:      deps.Store,
		tracker:    subs.NewTracker(),
		batcher:    stream.NewBatcher(stream.BatcherConfig{FlushInterval: cfg.FlushInterval}, deps.Store, logger),
		logger:     logger,
		filters:    filters,
		generation: make(map[model.View]uint64),
	}
}

// Start registers on the connection, loads the initial pages for every
// view, and begins batching streamed updates.
func (c *Controller) Start(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.batcher.Start(c.ctx)
	c.listenerID = c.conn.AddListener(c.onMessage)
	c.openID = c.conn.OnOpen(c.onOpen)

	for view := range c.filters {
		c.subscribeFilter(view)
		for page := 1; page <= c.cfg.Pages; page++ {
			c.LoadPage(view, page)
		}
	}

	if c.cfg.RefreshInterval > 0 {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.refreshLoop(c.ctx)
		}()
	}
}

// Stop tears down the streaming footprint: the listener, the filter
// subscriptions, and every per-pair subscription still tracked.
func (c *Controller) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.batcher.Stop()

	c.conn.RemoveListener(c.listenerID)
	c.conn.RemoveOnOpen(c.openID)

	c.mu.Lock()
	filters := make([]api.ScannerParams, 0, len(c.filters))
	for _, p := range c.filters {
		filters = append(filters, p)
	}
	c.mu.Unlock()

	for _, p := range filters {
		c.conn.Send(stream.UnsubscribeScannerFilter(p))
	}
	st := c.store.Snapshot()
	for _, id := range c.tracker.Clear() {
		c.conn.Send(stream.UnsubscribePair(c.room(st, id)))
		c.conn.Send(stream.UnsubscribePairStats(c.room(st, id)))
	}
}

// Filters returns the current query parameters for one view.
func (c *Controller) Filters(view model.View) api.ScannerParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters[view]
}

// SetFilters replaces one view's query parameters. The view's pages
// are cleared, the server-side filter subscription is swapped, and
// page 1 is re-fetched. In-flight fetches for the old filter are
// discarded on arrival.
func (c *Controller) SetFilters(view model.View, params api.ScannerParams) {
	c.mu.Lock()
	old := c.filters[view]
	c.filters[view] = params
	c.generation[view]++
	c.mu.Unlock()

	c.conn.Send(stream.UnsubscribeScannerFilter(old))
	c.store.ResetView(view)
	c.subscribeFilter(view)
	c.LoadPage(view, 1)
	c.resync()

	c.logger.Info("filters changed", zap.String("view", string(view)))
}

// LoadPage fetches one snapshot page for a view and merges it. Stale
// responses, those started before a filter change, are dropped. The
// returned error is retryable by calling again.
func (c *Controller) LoadPage(view model.View, page int) error {
	c.mu.Lock()
	params := c.filters[view]
	gen := c.generation[view]
	c.mu.Unlock()
	params.Page = page

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := c.fetcher.GetScannerPage(ctx, params)
	if err != nil {
		metrics.ScannerFetches.WithLabelValues(string(view), "error").Inc()
		c.logger.Warn("snapshot fetch failed",
			zap.String("view", string(view)),
			zap.Int("page", page),
			zap.Error(err))
		return err
	}

	c.mu.Lock()
	stale := c.generation[view] != gen
	c.mu.Unlock()
	if stale {
		metrics.ScannerFetches.WithLabelValues(string(view), "stale").Inc()
		return nil
	}
	metrics.ScannerFetches.WithLabelValues(string(view), "ok").Inc()

	c.merge(view, page, resp.Pairs)
	return nil
}

// merge converts raw rows, upserts them and reconciles subscriptions.
func (c *Controller) merge(view model.View, page int, rows []api.ScannerRow) {
	items := make([]store.SnapshotItem, 0, len(rows))
	for _, row := range rows {
		pair, supply := row.ToModel()
		items = append(items, store.SnapshotItem{Pair: pair, TotalSupply: supply})
	}
	c.store.UpsertFromScanner(view, page, items)
	c.resync()
}

func (c *Controller) subscribeFilter(view model.View) {
	c.mu.Lock()
	params := c.filters[view]
	c.mu.Unlock()
	c.conn.Send(stream.ScannerFilter(params))
}

// resync reconciles the subscription set against the union of visible
// page identifiers across all views.
func (c *Controller) resync() {
	st := c.store.Snapshot()
	subscribe, unsubscribe := c.tracker.Diff(st.VisibleIDs())

	for _, id := range unsubscribe {
		room := c.room(st, id)
		c.conn.Send(stream.UnsubscribePair(room))
		c.conn.Send(stream.UnsubscribePairStats(room))
	}
	for _, id := range subscribe {
		room := c.room(st, id)
		c.conn.Send(stream.SubscribePair(room))
		c.conn.Send(stream.SubscribePairStats(room))
	}

	if len(subscribe) > 0 || len(unsubscribe) > 0 {
		c.logger.Debug("subscriptions reconciled",
			zap.Int("subscribed", len(subscribe)),
			zap.Int("unsubscribed", len(unsubscribe)))
	}
}

func (c *Controller) room(st *store.State, id model.PairID) stream.PairRoom {
	room := stream.PairRoom{Pair: id.PairAddress, Chain: string(id.Chain)}
	if entity, ok := st.Entities[id]; ok {
		room.Token = entity.TokenAddress
	}
	return room
}

// onMessage routes one decoded stream message.
func (c *Controller) onMessage(msg stream.Message) {
	switch m := msg.(type) {
	case stream.TickMessage:
		swap, ok := m.Data.LatestSwap()
		if !ok {
			return
		}
		c.batcher.AddTick(stream.TickUpdate{
			ID:       m.Data.PairID(),
			NewPrice: api.ParseNumber(swap.PriceToken1Usd),
			Swap:     &swap,
		})

	case stream.PairStatsMessage:
		c.batcher.AddStats(stream.StatsUpdate{
			ID:   m.Data.PairID(),
			Data: m.Data,
		})

	case stream.ScannerPairsMessage:
		c.onScannerPairs(m.Data)
	}
}

// onScannerPairs applies a server-pushed dataset replacement. The
// push names the filter it answers; it maps to a view through the
// rank mode and replaces that view's dataset wholesale.
func (c *Controller) onScannerPairs(data stream.ScannerPairsData) {
	view, ok := data.Filter.View()
	if !ok {
		c.logger.Debug("scanner-pairs for unknown rank mode",
			zap.String("rank_by", string(data.Filter.RankBy)))
		return
	}

	c.store.ResetView(view)
	c.merge(view, 1, data.Results.Pairs)

	c.logger.Debug("view replaced from stream",
		zap.String("view", string(view)),
		zap.Int("pairs", len(data.Results.Pairs)))
}

// onOpen re-establishes the server-side footprint after a reconnect:
// filter subscriptions plus every tracked pair.
func (c *Controller) onOpen() {
	c.mu.Lock()
	filters := make([]api.ScannerParams, 0, len(c.filters))
	for _, p := range c.filters {
		filters = append(filters, p)
	}
	c.mu.Unlock()

	for _, p := range filters {
		c.conn.Send(stream.ScannerFilter(p))
	}

	st := c.store.Snapshot()
	for id := range c.tracker.Tracked() {
		room := c.room(st, id)
		c.conn.Send(stream.SubscribePair(room))
		c.conn.Send(stream.SubscribePairStats(room))
	}
}

func (c *Controller) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			views := make([]model.View, 0, len(c.filters))
			for view := range c.filters {
				views = append(views, view)
			}
			c.mu.Unlock()

			for _, view := range views {
				c.LoadPage(view, 1)
			}
		}
	}
}
