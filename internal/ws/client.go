package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single write to a peer.
	writeWait = 10 * time.Second
	// pongWait is how long a peer may stay silent before the read loop
	// gives up on it.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize bounds inbound frames.
	maxMessageSize = 8 * 1024
	// sendBuffer is the per-connection outbound queue depth.
	sendBuffer = 32
)

// Client is one live websocket bound to exactly one session. All writes
// to the socket go through the send queue and a single write pump, so
// broadcasters never touch the connection concurrently.
type Client struct {
	sessionID string
	role      string
	conn      *websocket.Conn
	send      chan interface{}
	done      chan struct{}
	once      sync.Once
}

func newClient(sessionID, role string, conn *websocket.Conn) *Client {
	return &Client{
		sessionID: sessionID,
		role:      role,
		conn:      conn,
		send:      make(chan interface{}, sendBuffer),
		done:      make(chan struct{}),
	}
}

// Role implements Sender.
func (c *Client) Role() string {
	return c.role
}

// Enqueue implements Sender. It never blocks: a full queue or a closed
// client drops the envelope, keeping one slow peer from stalling a
// session-wide broadcast.
func (c *Client) Enqueue(v interface{}) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- v:
		return true
	default:
		return false
	}
}

// shutdown stops the write pump. Safe to call more than once.
func (c *Client) shutdown() {
	c.once.Do(func() {
		close(c.done)
	})
}

// writePump drains the send queue onto the socket and keeps the peer
// alive with pings. It owns all writes to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case v := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(v); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
