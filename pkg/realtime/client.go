package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the part of *websocket.Conn the registry writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is a registered connection.
type Client struct {
	conn     Conn
	identity string

	writeMu sync.Mutex

	// guarded by Manager.mu
	lastPongAt time.Time
	channels   map[string]struct{}
	closed     bool
}

func (c *Client) Identity() string { return c.identity }

func (c *Client) write(data []byte, timeout time.Duration, now time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if timeout > 0 {
		if err := c.conn.SetWriteDeadline(now.Add(timeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
