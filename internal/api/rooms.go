// Package api implements the Room Creation API (spec.md §4.7): the
// conventional request/response surface that is the only way to mint a
// room code, distinct from the duplex event channel.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaymeet/backend/internal/registry"
)

// RoomHandlers holds the Registry dependency for the create-room and
// get-room endpoints.
type RoomHandlers struct {
	reg *registry.Registry
}

// NewRoomHandlers wires the Room Creation API to its Registry.
func NewRoomHandlers(reg *registry.Registry) *RoomHandlers {
	return &RoomHandlers{reg: reg}
}

type createRoomRequest struct {
	HostID string `json:"hostId"`
}

type createRoomResponse struct {
	RoomID  string `json:"roomId"`
	Success bool   `json:"success"`
}

// CreateRoom mints a room code and registers an empty Room (spec.md §6
// POST /api/create-room). The optional hostId in the request body is
// accepted but carries no server-side meaning beyond client bookkeeping.
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	_ = c.ShouldBindJSON(&req)

	code, err := h.reg.Mint()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mint room"})
		return
	}

	c.JSON(http.StatusOK, createRoomResponse{RoomID: code, Success: true})
}

type getRoomResponse struct {
	RoomID           string `json:"roomId"`
	ParticipantCount int    `json:"participantCount"`
	Exists           bool   `json:"exists"`
}

// GetRoom reports whether a room code resolves and its current
// participant count (spec.md §6 GET /api/room/:id).
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	id := c.Param("id")

	room, err := h.reg.Lookup(id)
	if err != nil {
		if errors.Is(err, registry.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, getRoomResponse{
		RoomID:           room.Code(),
		ParticipantCount: room.ParticipantCount(),
		Exists:           true,
	})
}
