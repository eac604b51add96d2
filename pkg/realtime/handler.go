package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/twilight/pkg/logger"
)

// IdentityFunc resolves the identity label of an upgrade request. An error
// means the identity could not be determined and the upgrade is refused.
type IdentityFunc func(r *http.Request) (string, error)

// ErrorFunc writes the response for a refused upgrade.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// Handlers serves the chat and flash sockets.
type Handlers struct {
	mgr      *Manager
	identify IdentityFunc
	onError  ErrorFunc
	upgrader websocket.Upgrader
	log      *slog.Logger
}

type HandlerOption func(*Handlers)

func WithErrorHandler(fn ErrorFunc) HandlerOption {
	return func(h *Handlers) {
		if fn != nil {
			h.onError = fn
		}
	}
}

func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *Handlers) {
		if log != nil {
			h.log = log
		}
	}
}

func WithBufferSizes(read, write int) HandlerOption {
	return func(h *Handlers) {
		h.upgrader.ReadBufferSize = read
		h.upgrader.WriteBufferSize = write
	}
}

func NewHandlers(mgr *Manager, identify IdentityFunc, opts ...HandlerOption) *Handlers {
	cfg := mgr.Config()
	h := &Handlers{
		mgr:      mgr,
		identify: identify,
		onError: func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      originChecker(cfg.AllowedOrigins),
		},
		log: logger.Noop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("realtime"))
	return h
}

// ChatHandler upgrades to a socket subscribed to the clients channel. Every
// inbound text frame other than "pong" is sent to all clients prefixed with
// the sender's identity.
func (h *Handlers) ChatHandler() http.HandlerFunc {
	return h.serve("chat", func(identity string) []string {
		return []string{ChannelClients}
	}, func(ctx context.Context, c *Client, text string) {
		h.mgr.Broadcast(ctx, ChannelClients, c.Identity()+": "+text)
	})
}

// FlashHandler upgrades to a receive-only socket subscribed to the caller's
// flash channel and to flash:all.
func (h *Handlers) FlashHandler() http.HandlerFunc {
	return h.serve("flash", func(identity string) []string {
		return []string{FlashChannel(identity), ChannelFlashAll}
	}, nil)
}

func (h *Handlers) serve(
	name string,
	channels func(identity string) []string,
	onText func(ctx context.Context, c *Client, text string),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.identify(r)
		if err != nil {
			h.log.ErrorContext(r.Context(), "resolve socket identity", logger.Handler(name), logger.Error(err))
			h.onError(w, r, err)
			return
		}
		if identity == "" {
			identity = h.mgr.Config().GuestLabel
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the HTTP error.
			h.log.DebugContext(r.Context(), "websocket upgrade failed", logger.Handler(name), logger.Error(err))
			return
		}
		conn.SetReadLimit(h.mgr.Config().ReadLimit)

		client := h.mgr.Register(conn, identity, channels(identity)...)
		defer h.mgr.Unregister(client)

		h.log.InfoContext(r.Context(), "socket connected", logger.Handler(name), logger.Identity(identity))
		h.readLoop(r.Context(), conn, client, onText)
		h.log.InfoContext(r.Context(), "socket disconnected", logger.Handler(name), logger.Identity(identity))
	}
}

// readLoop processes the frames of one connection in arrival order.
func (h *Handlers) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	c *Client,
	onText func(ctx context.Context, c *Client, text string),
) {
	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.DebugContext(ctx, "socket read", logger.Identity(c.Identity()), logger.Error(err))
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		text := string(data)
		if text == PongFrame {
			h.mgr.Pong(c)
			continue
		}
		if onText != nil {
			onText(ctx, c, text)
		}
	}
}

// originChecker allows any origin for "*", the listed origins otherwise, and
// falls back to the same-host check when nothing is configured.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	normalized := make([]string, 0, len(allowed))
	for _, o := range allowed {
		normalized = append(normalized, strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/"))
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return slices.Contains(normalized, strings.ToLower(u.Scheme+"://"+u.Host))
	}
}
