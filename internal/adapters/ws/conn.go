package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ducvu/chatserver/internal/core"
	"github.com/ducvu/chatserver/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// wsConn implements core.Conn on top of a gorilla websocket. Frames are
// queued on a buffered channel drained by the write pump; TrySend never
// blocks.
type wsConn struct {
	id     core.ConnID
	userID domain.UserID
	conn   *websocket.Conn
	send   chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsConn(id core.ConnID, userID domain.UserID, conn *websocket.Conn, buffer int) *wsConn {
	return &wsConn{
		id:     id,
		userID: userID,
		conn:   conn,
		send:   make(chan core.Frame, buffer),
	}
}

func (c *wsConn) ID() core.ConnID       { return c.id }
func (c *wsConn) UserID() domain.UserID { return c.userID }

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}
