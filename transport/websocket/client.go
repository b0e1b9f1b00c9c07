package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Outbound queue depth per connection.
	sendBuffer = 64
)

// Client wraps one WebSocket connection. The owning flow reads from it
// sequentially; any goroutine may queue outbound events through Send, which
// the write pump drains in order.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *Client {
	c := &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	return c
}

// ID returns the connection's correlation id, used only for logging.
func (c *Client) ID() string {
	return c.id
}

// Send queues a payload for delivery and reports false when the connection
// is closing; callers treat that as a skipped delivery, never as a fatal
// condition. A consumer whose queue overflows is closed on the spot: it can
// no longer observe a complete event stream, and a visible disconnect beats
// a silently diverging view.
func (c *Client) Send(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		log.Warn().Str("conn", c.id).Msg("Outbound queue full, closing connection")
		c.closed = true
		close(c.send)
		return false
	}
}

// sendEvent marshals and queues one event.
func (c *Client) sendEvent(ev Event) bool {
	return c.Send(marshalEvent(ev))
}

// readEvent blocks for the next inbound client message. A transport close
// or a malformed payload both surface as an error; the caller terminates the
// connection's flow either way.
func (c *Client) readEvent() (Event, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return Event{}, err
	}
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	return decodeEvent(data)
}

// close marks the client closed and shuts the outbound queue. Queued events
// are still flushed by the write pump before the connection drops. Safe to
// call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump drains the outbound queue onto the connection and keeps the peer
// alive with pings. It exits when the queue is closed or a write fails, and
// owns closing the underlying connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
