package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relaymeet/backend/internal/logging"
)

// outboundBuffer bounds the per-connection send queue (spec.md §5: "a slow
// or disconnected peer must not block the sender").
const outboundBuffer = 256

// Client represents one duplex connection: a stable opaque connection-id,
// a buffered outbound queue, and the room/nickname it is currently bound
// to, if any (spec.md §4.6). Mirrors the corpus's readPump/writePump
// split across two goroutines for full-duplex handling.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	id string

	mu       sync.RWMutex
	roomCode string
	nickname string
}

func newClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, outboundBuffer),
		hub:  hub,
		id:   id,
	}
}

// ID returns the client's stable connection-id.
func (c *Client) ID() string { return c.id }

func (c *Client) bind(roomCode, nickname string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = roomCode
	c.nickname = nickname
}

func (c *Client) room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

func (c *Client) nick() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nickname
}

// enqueue attempts a non-blocking send; a full queue means the client is
// too slow or stuck, so the connection is torn down (spec.md §9: "overflow
// policy: drop the connection").
func (c *Client) enqueue(event string, payload any) {
	raw, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		logging.Error(context.Background(), "failed to marshal outbound event", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case c.send <- raw:
	default:
		logging.Warn(context.Background(), "outbound queue full, dropping connection", zap.String("connection_id", c.id))
		c.conn.Close()
	}
}

// readPump reads inbound frames and dispatches them until the connection
// closes, then runs disconnect cleanup (spec.md §4.6 teardown).
func (c *Client) readPump() {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(context.Background(), "panic in connection handler",
				zap.String("connection_id", c.id), zap.Any("panic", r), zap.Stack("stack"))
		}
		c.hub.handleDisconnect(c)
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn(context.Background(), "unexpected client close", zap.String("connection_id", c.id), zap.Error(err))
			}
			return
		}

		var env inboundEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			logging.Warn(context.Background(), "failed to unmarshal inbound event", zap.String("connection_id", c.id), zap.Error(err))
			continue
		}

		c.hub.dispatch(c, env.Event, env.Payload)
	}
}

// writePump drains the outbound queue to the socket.
func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
