package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tokenscan/internal/metrics"
	"tokenscan/internal/stream"
)

// Manager owns the single streaming connection. It dials, reconnects
// with exponential backoff, decodes inbound frames and fans them out
// to registered listeners, and accepts sends at any time: a frame sent
// while the connection is down is retried on a fixed cadence until the
// socket is open again.
type Manager struct {
	cfg    ManagerConfig
	logger *zap.Logger

	// newClient is swappable in tests.
	newClient func(ClientConfig, *zap.Logger) Client

	mu            sync.RWMutex
	state         State
	client        Client
	listeners     map[uuid.UUID]Listener
	openListeners map[uuid.UUID]func()
	openCh        chan struct{} // closed on each Open transition, then replaced

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a manager for the configured endpoint.
func NewManager(cfg ManagerConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReconnectBaseDelay <= 0 {
		cfg.ReconnectBaseDelay = DefaultManagerConfig().ReconnectBaseDelay
	}
	if cfg.ReconnectMaxDelay <= 0 {
		cfg.ReconnectMaxDelay = DefaultManagerConfig().ReconnectMaxDelay
	}
	if cfg.SendRetryInterval <= 0 {
		cfg.SendRetryInterval = DefaultManagerConfig().SendRetryInterval
	}
	if cfg.SendRetryTimeout <= 0 {
		cfg.SendRetryTimeout = DefaultManagerConfig().SendRetryTimeout
	}
	cfg.Client.URL = cfg.URL

	return &Manager{
		cfg:           cfg,
		logger:        logger,
		newClient:     NewClient,
		state:         StateDisconnected,
		listeners:     make(map[uuid.UUID]Listener),
		openListeners: make(map[uuid.UUID]func()),
		openCh:        make(chan struct{}),
	}
}

// Start launches the connect/reconnect loop.
func (m *Manager) Start(ctx context.Context) {
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(m.ctx)
	}()
}

// Stop tears the connection down and waits for the loop to exit.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// AddListener registers a handler for every decoded inbound message
// and returns a token for removal.
func (m *Manager) AddListener(l Listener) uuid.UUID {
	id := uuid.New()
	m.mu.Lock()
	m.listeners[id] = l
	m.mu.Unlock()
	return id
}

// RemoveListener unregisters a message listener.
func (m *Manager) RemoveListener(id uuid.UUID) {
	m.mu.Lock()
	delete(m.listeners, id)
	m.mu.Unlock()
}

// OnOpen registers a handler invoked each time the connection reaches
// the open state, including after reconnects. Subscribers use it to
// re-establish their server-side subscriptions.
func (m *Manager) OnOpen(f func()) uuid.UUID {
	id := uuid.New()
	m.mu.Lock()
	m.openListeners[id] = f
	m.mu.Unlock()
	return id
}

// RemoveOnOpen unregisters an open handler.
func (m *Manager) RemoveOnOpen(id uuid.UUID) {
	m.mu.Lock()
	delete(m.openListeners, id)
	m.mu.Unlock()
}

// Send marshals and transmits one outbound frame. If the connection is
// not open the frame is retried in the background on the configured
// cadence until the socket opens, the retry window lapses, or the
// manager stops. When open handlers are registered they own recovery:
// a frame still parked at the Open transition is discarded rather than
// duplicating the footprint the handlers re-establish. Returns
// ErrManagerClosed once the manager has stopped.
func (m *Manager) Send(out stream.Outbound) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding %s frame: %w", out.Event, err)
	}

	// Capture the open signal before the send attempt so an Open
	// transition racing the attempt always invalidates the retry.
	m.mu.RLock()
	opened := m.openCh
	m.mu.RUnlock()

	err = m.trySend(data)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotConnected) {
		return err
	}

	ctx := m.ctx
	if ctx == nil {
		return ErrNotConnected
	}
	if ctx.Err() != nil {
		return ErrManagerClosed
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.retrySend(ctx, out.Event, data, opened)
	}()
	return nil
}

func (m *Manager) trySend(data []byte) error {
	m.mu.RLock()
	cli, state := m.client, m.state
	m.mu.RUnlock()

	if state != StateOpen || cli == nil {
		return ErrNotConnected
	}
	return cli.Send(data)
}

func (m *Manager) retrySend(ctx context.Context, event string, data []byte, opened <-chan struct{}) {
	deadline := time.NewTimer(m.cfg.SendRetryTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(m.cfg.SendRetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			m.logger.Warn("dropping outbound frame, connection never opened",
				zap.String("event", event))
			return
		case <-opened:
			if m.hasOpenHandlers() {
				m.logger.Debug("dropping parked frame, open handlers restore the footprint",
					zap.String("event", event))
				return
			}
			// Nobody re-establishes state on open; keep ticking and
			// deliver on the now-open socket.
			opened = nil
		case <-ticker.C:
			err := m.trySend(data)
			if err == nil {
				return
			}
			if !errors.Is(err, ErrNotConnected) {
				m.logger.Warn("outbound frame failed",
					zap.String("event", event), zap.Error(err))
				return
			}
		}
	}
}

func (m *Manager) run(ctx context.Context) {
	attempt := 0

	for {
		if ctx.Err() != nil {
			m.setState(StateClosed)
			return
		}

		m.setState(StateConnecting)
		cli := m.newClient(m.cfg.Client, m.logger)

		if err := cli.Connect(ctx); err != nil {
			m.setState(StateErrored)
			m.logger.Warn("connect failed",
				zap.String("url", m.cfg.URL),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
		} else {
			attempt = 0
			m.mu.Lock()
			m.client = cli
			close(m.openCh)
			m.openCh = make(chan struct{})
			m.mu.Unlock()
			m.setState(StateOpen)
			metrics.WSConnected.Set(1)
			m.notifyOpen()

			shuttingDown := m.consume(ctx, cli)
			cli.Close()
			m.mu.Lock()
			m.client = nil
			m.mu.Unlock()
			metrics.WSConnected.Set(0)

			if shuttingDown {
				m.setState(StateClosed)
				return
			}
			m.setState(StateDisconnected)
		}

		metrics.WSReconnects.Inc()
		delay := nextDelay(m.cfg.ReconnectBaseDelay, m.cfg.ReconnectMaxDelay, attempt)
		attempt++

		m.logger.Info("reconnecting", zap.Duration("delay", delay))
		select {
		case <-ctx.Done():
			m.setState(StateClosed)
			return
		case <-time.After(delay):
		}
	}
}

// consume pumps the client until the connection dies. True means the
// manager itself is shutting down rather than the socket dropping.
func (m *Manager) consume(ctx context.Context, cli Client) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case data := <-cli.Messages():
			m.dispatch(data)
		case err := <-cli.Errors():
			m.logger.Warn("connection lost", zap.Error(err))
			return false
		}
	}
}

// dispatch decodes one raw frame and fans it out. A malformed or
// unknown frame is dropped; it never interrupts the read loop.
func (m *Manager) dispatch(data []byte) {
	msg, err := stream.Decode(data)
	if err != nil {
		metrics.WSDecodeErrors.Inc()
		if errors.Is(err, stream.ErrUnknownEvent) {
			m.logger.Debug("ignoring frame", zap.Error(err))
		} else {
			m.logger.Warn("discarding malformed frame", zap.Error(err))
		}
		return
	}
	metrics.WSMessages.WithLabelValues(msg.Event()).Inc()

	m.mu.RLock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.RUnlock()

	for _, l := range listeners {
		m.invoke(l, msg)
	}
}

// invoke runs one listener, containing any panic to that listener.
func (m *Manager) invoke(l Listener, msg stream.Message) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("listener panicked",
				zap.String("event", msg.Event()),
				zap.Any("panic", r))
		}
	}()
	l(msg)
}

func (m *Manager) hasOpenHandlers() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.openListeners) > 0
}

func (m *Manager) notifyOpen() {
	m.mu.RLock()
	handlers := make([]func(), 0, len(m.openListeners))
	for _, f := range m.openListeners {
		handlers = append(handlers, f)
	}
	m.mu.RUnlock()

	for _, f := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("open handler panicked", zap.Any("panic", r))
				}
			}()
			f()
		}()
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// nextDelay computes the reconnect wait for the given consecutive
// failure count: base doubling per attempt, capped at max.
func nextDelay(base, max time.Duration, attempt int) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}
