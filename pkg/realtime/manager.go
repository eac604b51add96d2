package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/twilight/pkg/logger"
)

// Channel names.
const (
	ChannelClients  = "clients"
	ChannelFlashAll = "flash:all"

	PingFrame = "ping"
	PongFrame = "pong"
)

// FlashChannel returns the channel carrying flash messages for identity.
func FlashChannel(identity string) string {
	return "flash:" + identity
}

// Flash is the frame pushed to flash sockets.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Manager is the connection registry. The zero value is not usable; use
// NewManager.
type Manager struct {
	cfg Config
	now func() time.Time
	log *slog.Logger

	mu       sync.Mutex
	clients  map[*Client]struct{}
	channels map[string]map[*Client]struct{}
}

type Option func(*Manager)

func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		log:      logger.Noop(),
		clients:  make(map[*Client]struct{}),
		channels: make(map[string]map[*Client]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("realtime"))
	return m
}

func (m *Manager) Config() Config { return m.cfg }

// Register adds conn to the registry under identity and subscribes it to
// channels. The connection counts as alive from this moment.
func (m *Manager) Register(conn Conn, identity string, channels ...string) *Client {
	c := &Client{
		conn:     conn,
		identity: identity,
		channels: make(map[string]struct{}, len(channels)),
	}

	m.mu.Lock()
	c.lastPongAt = m.now()
	m.clients[c] = struct{}{}
	for _, ch := range channels {
		m.subscribeLocked(c, ch)
	}
	m.mu.Unlock()

	m.log.Debug("connection registered", logger.Identity(identity), logger.Count(len(channels)))
	return c
}

// Subscribe adds c to channel. Unregistered clients are ignored.
func (m *Manager) Subscribe(c *Client, channel string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.closed {
		return
	}
	m.subscribeLocked(c, channel)
}

func (m *Manager) subscribeLocked(c *Client, channel string) {
	subs, ok := m.channels[channel]
	if !ok {
		subs = make(map[*Client]struct{})
		m.channels[channel] = subs
	}
	subs[c] = struct{}{}
	c.channels[channel] = struct{}{}
}

// Unregister removes c from the registry and every channel and closes its
// socket. Calling it more than once is a no-op.
func (m *Manager) Unregister(c *Client) {
	m.mu.Lock()
	if c.closed {
		m.mu.Unlock()
		return
	}
	c.closed = true
	delete(m.clients, c)
	for ch := range c.channels {
		if subs, ok := m.channels[ch]; ok {
			delete(subs, c)
			if len(subs) == 0 {
				delete(m.channels, ch)
			}
		}
	}
	c.channels = nil
	m.mu.Unlock()

	if err := c.conn.Close(); err != nil {
		m.log.Debug("close connection", logger.Identity(c.identity), logger.Error(err))
	}
	m.log.Debug("connection unregistered", logger.Identity(c.identity))
}

// Pong records a liveness answer from c.
func (m *Manager) Pong(c *Client) {
	m.mu.Lock()
	if !c.closed {
		c.lastPongAt = m.now()
	}
	m.mu.Unlock()
}

// Broadcast sends text to every subscriber of channel and returns how many
// received it. Subscribers whose send fails are unregistered.
func (m *Manager) Broadcast(ctx context.Context, channel, text string) int {
	return m.publish(ctx, channel, []byte(text))
}

// PublishFlash delivers message to every live flash socket of identity.
// Zero means the identity has no live connection.
func (m *Manager) PublishFlash(ctx context.Context, identity, message string) int {
	n := m.publishFlash(ctx, FlashChannel(identity), message)
	if n == 0 {
		m.log.InfoContext(ctx, "flash not delivered, no live connection", logger.Identity(identity))
	}
	return n
}

// PublishFlashAll delivers message to every flash socket.
func (m *Manager) PublishFlashAll(ctx context.Context, message string) int {
	return m.publishFlash(ctx, ChannelFlashAll, message)
}

func (m *Manager) publishFlash(ctx context.Context, channel, message string) int {
	frame, err := json.Marshal(Flash{Type: "flash", Message: message})
	if err != nil {
		m.log.ErrorContext(ctx, "encode flash", logger.Channel(channel), logger.Error(err))
		return 0
	}
	return m.publish(ctx, channel, frame)
}

func (m *Manager) publish(ctx context.Context, channel string, frame []byte) int {
	targets := m.snapshot(channel)
	delivered := 0
	for _, c := range targets {
		if err := m.send(c, frame); err != nil {
			m.log.DebugContext(ctx, "drop connection after failed send",
				logger.Channel(channel), logger.Identity(c.identity), logger.Error(err))
			m.Unregister(c)
			continue
		}
		delivered++
	}
	return delivered
}

func (m *Manager) snapshot(channel string) []*Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.channels[channel]
	out := make([]*Client, 0, len(subs))
	for c := range subs {
		out = append(out, c)
	}
	return out
}

func (m *Manager) send(c *Client, frame []byte) error {
	m.mu.Lock()
	closed := c.closed
	m.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if err := c.write(frame, m.cfg.WriteTimeout, m.now()); err != nil {
		return errors.Join(ErrSendFailure, err)
	}
	return nil
}

// Sweep runs one liveness pass at now. Connections idle for longer than
// Config.IdleLimit are closed; every other connection is pinged.
func (m *Manager) Sweep(now time.Time) (pinged, closed int) {
	limit := m.cfg.IdleLimit()

	var alive, stale []*Client
	m.mu.Lock()
	for c := range m.clients {
		if now.Sub(c.lastPongAt) > limit {
			stale = append(stale, c)
			continue
		}
		alive = append(alive, c)
	}
	m.mu.Unlock()

	for _, c := range stale {
		m.log.Info("connection timed out", logger.Identity(c.identity))
		m.Unregister(c)
		closed++
	}
	ping := []byte(PingFrame)
	for _, c := range alive {
		if err := m.send(c, ping); err != nil {
			m.Unregister(c)
			closed++
			continue
		}
		pinged++
	}
	return pinged, closed
}

// Run sweeps every PingInterval until ctx is done. One Run per process.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.PingInterval)
	defer ticker.Stop()

	m.log.InfoContext(ctx, "liveness sweep started", logger.Duration(m.cfg.PingInterval))
	for {
		select {
		case <-ctx.Done():
			m.log.InfoContext(ctx, "liveness sweep stopped")
			return nil
		case <-ticker.C:
			start := m.now()
			pinged, closed := m.Sweep(start)
			m.log.DebugContext(ctx, "liveness sweep",
				slog.Int("pinged", pinged), slog.Int("closed", closed), logger.Duration(m.now().Sub(start)))
		}
	}
}

// Count returns the number of registered connections.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// Subscribers returns the number of connections subscribed to channel.
func (m *Manager) Subscribers(channel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels[channel])
}

// CloseAll unregisters every connection and returns how many were closed.
func (m *Manager) CloseAll() int {
	m.mu.Lock()
	all := make([]*Client, 0, len(m.clients))
	for c := range m.clients {
		all = append(all, c)
	}
	m.mu.Unlock()

	for _, c := range all {
		m.Unregister(c)
	}
	return len(all)
}
