package ws

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relaymeet/backend/internal/logging"
	"github.com/relaymeet/backend/internal/metrics"
	"github.com/relaymeet/backend/internal/ratelimit"
	"github.com/relaymeet/backend/internal/registry"
	"github.com/relaymeet/backend/internal/upload"
)

// Hub is the central coordinator for every duplex connection: it owns the
// connection-id -> Client directory needed to relay signaling events to a
// specific recipient, and holds the shared Room Registry and Upload
// Manager that handlers act on (spec.md §2 "Connection Dispatcher").
type Hub struct {
	reg     *registry.Registry
	uploads *upload.Manager
	limiter *ratelimit.Limiter
	origin  string

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub wires a Hub to its Room Registry, Upload Manager, and join-rate
// limiter. limiter may be nil in tests, in which case join attempts are
// never throttled.
func NewHub(reg *registry.Registry, uploads *upload.Manager, limiter *ratelimit.Limiter, allowedOrigin string) *Hub {
	return &Hub{
		reg:     reg,
		uploads: uploads,
		limiter: limiter,
		origin:  allowedOrigin,
		clients: make(map[string]*Client),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// ServeWs upgrades an HTTP request to a duplex WebSocket connection,
// validating Origin against the single configured CLIENT_ORIGIN before the
// upgrade (SPEC_FULL.md §4.6 supplement). Non-browser clients without an
// Origin header are allowed through.
func (h *Hub) ServeWs(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if origin != "" && !h.originAllowed(origin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
		return
	}

	if h.limiter != nil && !h.limiter.AllowJoin(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many connection attempts"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error(c.Request.Context(), "websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	client := newClient(h, conn, connID)

	h.mu.Lock()
	h.clients[connID] = client
	h.mu.Unlock()

	metrics.ActiveConnections.Inc()
	logging.Info(logging.WithConnection(context.Background(), connID), "connection established")

	go client.writePump()
	go client.readPump()
}

func (h *Hub) originAllowed(origin string) bool {
	if h.origin == "" {
		return true
	}
	want, err := url.Parse(h.origin)
	if err != nil {
		return false
	}
	got, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return got.Scheme == want.Scheme && got.Host == want.Host
}

// clientByID returns the client for connID, if still connected.
func (h *Hub) clientByID(connID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[connID]
	return c, ok
}

// handleDisconnect performs the cascading teardown spec.md §4.6 describes:
// Upload Manager cleanup and Room Registry Leave (which fans out
// user-left), independent of each other's ordering.
func (h *Hub) handleDisconnect(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	metrics.ActiveConnections.Dec()

	h.uploads.AbortOwnedBy(c.id)

	roomCode := c.room()
	if roomCode == "" {
		return
	}

	participant, found := h.reg.Leave(roomCode, c.id)
	if !found {
		return
	}

	room, err := h.reg.Lookup(roomCode)
	if err == nil {
		metrics.RoomParticipants.WithLabelValues(roomCode).Set(float64(room.ParticipantCount()))
	} else {
		metrics.RoomParticipants.DeleteLabelValues(roomCode)
	}
	metrics.ActiveRooms.Set(float64(h.reg.Stats().ActiveRooms))

	h.broadcastToRoom(roomCode, "", outUserLeft, userLeftPayload{
		SocketID: c.id,
		Nickname: participant.Nickname,
	})

	logging.Info(logging.WithRoom(context.Background(), roomCode), "connection torn down",
		zap.String("connection_id", c.id))
}

// broadcastToRoom fans out event/payload to every participant in roomCode
// that still has a live Client, optionally excluding one connection-id
// (spec.md §4.4 chat echoes the sender; §4.2 mute/hand exclude the origin).
func (h *Hub) broadcastToRoom(roomCode, exclude, event string, payload any) {
	room, err := h.reg.Lookup(roomCode)
	if err != nil {
		return
	}
	for _, p := range room.Members() {
		if p.ConnectionID == exclude {
			continue
		}
		if client, ok := h.clientByID(p.ConnectionID); ok {
			client.enqueue(event, payload)
		}
	}
}
