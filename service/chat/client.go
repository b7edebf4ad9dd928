package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"PairChat/logger"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one live connection to the gateway. A single user may have
// several of these open at once (devices/tabs); each keeps its own outbound
// queue consumed by a single writer goroutine.
type Client struct {
	ConnID string
	UserID string // set exactly once by Registry.Register; empty = unbound

	Send chan []byte

	ws        *websocket.Conn // nil for in-memory clients in tests
	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(connID string, ws *websocket.Conn, sendQueueSize int) *Client {
	return &Client{
		ConnID: connID,
		Send:   make(chan []byte, sendQueueSize),
		ws:     ws,
		done:   make(chan struct{}),
	}
}

// Enqueue puts a payload on the outbound queue without blocking. A full
// queue means a slow client; the payload is dropped and false returned.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// Close marks the connection dead and wakes the writer pump. Safe to call
// more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// WritePump drains the Send queue onto the websocket. gorilla/websocket does
// not allow concurrent writes, so this is the only goroutine writing to ws.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case payload, ok := <-c.Send:
			if !ok {
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Infof("[WritePump] write failed conn=%s err=%v", c.ConnID, err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
