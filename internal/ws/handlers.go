package ws

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/relaymeet/backend/internal/logging"
	"github.com/relaymeet/backend/internal/metrics"
	"github.com/relaymeet/backend/internal/registry"
	"github.com/relaymeet/backend/internal/upload"
)

// dispatch routes one inbound event to its handler by name (spec.md §9
// "tagged variant of inbound events with one handler per variant"). An
// unrecognized event or a malformed payload is silently dropped
// (spec.md §7 Protocol errors), except a malformed file-upload-start,
// which gets a negative ack.
func (h *Hub) dispatch(c *Client, event string, payload json.RawMessage) {
	status := "ok"
	defer func() { metrics.WSEvents.WithLabelValues(event, status).Inc() }()

	switch event {
	case eventJoinRoom:
		h.handleJoinRoom(c, payload)
	case eventOffer:
		h.handleSignal(c, payload, outOffer)
	case eventAnswer:
		h.handleSignal(c, payload, outAnswer)
	case eventScreenShareOffer:
		h.handleSignal(c, payload, outScreenShareOffer)
	case eventScreenShareAnswer:
		h.handleSignal(c, payload, outScreenShareAnswer)
	case eventScreenShareStart:
		h.handleScreenShareStart(c, payload)
	case eventScreenShareStop:
		h.handleScreenShareStop(c, payload)
	case eventChatMessage:
		h.handleChatMessage(c, payload)
	case eventToggleMute:
		h.handleToggleMute(c, payload)
	case eventToggleRaiseHand:
		h.handleToggleRaiseHand(c, payload)
	case eventFileUploadStart:
		h.handleFileUploadStart(c, payload)
	case eventFileUploadChunk:
		h.handleFileUploadChunk(c, payload)
	case eventFileUploadComplete:
		h.handleFileUploadComplete(c, payload)
	default:
		status = "unknown"
	}
}

func (h *Hub) handleJoinRoom(c *Client, raw json.RawMessage) {
	var p joinRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomID == "" {
		return
	}

	res, err := h.reg.Join(p.RoomID, c.ID(), p.Nickname)
	if err != nil {
		c.enqueue(outError, errorPayload{Message: joinErrorMessage(err)})
		return
	}

	c.bind(p.RoomID, p.Nickname)

	room, lookupErr := h.reg.Lookup(p.RoomID)
	if lookupErr == nil {
		metrics.RoomParticipants.WithLabelValues(room.Code()).Set(float64(room.ParticipantCount()))
	}
	metrics.ActiveRooms.Set(float64(h.reg.Stats().ActiveRooms))

	c.enqueue(outRoomJoined, roomJoinedPayload{
		RoomID:       p.RoomID,
		Participants: toParticipantPayloads(append(res.ExistingMembers, res.Self)),
		IsHost:       res.IsHost,
	})

	h.broadcastToRoom(p.RoomID, c.ID(), outUserJoined, participantPayload{
		SocketID:       res.Self.ConnectionID,
		Nickname:       res.Self.Nickname,
		IsMuted:        res.Self.Muted,
		IsVideoEnabled: true,
		IsHandRaised:   res.Self.HandRaised,
		JoinedAt:       res.Self.JoinedAt,
	})

	logging.Info(logging.WithRoom(context.Background(), p.RoomID), "participant joined",
		zap.String("connection_id", c.ID()), zap.String("nickname", p.Nickname))
}

func toParticipantPayloads(members []registry.Participant) []participantPayload {
	out := make([]participantPayload, 0, len(members))
	for _, m := range members {
		out = append(out, participantPayload{
			SocketID:       m.ConnectionID,
			Nickname:       m.Nickname,
			IsMuted:        m.Muted,
			IsVideoEnabled: true,
			IsHandRaised:   m.HandRaised,
			JoinedAt:       m.JoinedAt,
		})
	}
	return out
}

func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, registry.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, registry.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, registry.ErrNicknameTaken):
		return "Nickname already taken"
	case errors.Is(err, registry.ErrInvalidNickname):
		return registry.ErrInvalidNickname.Error()
	default:
		return "Unable to join room"
	}
}

// handleSignal relays an opaque offer/answer to a specific recipient
// (spec.md §4.3): the sender's room membership is validated, the
// recipient's is not — absence simply drops the relay.
func (h *Hub) handleSignal(c *Client, raw json.RawMessage, outEvent string) {
	var p signalPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.To == "" {
		return
	}
	room := c.room()
	if room == "" || room != p.RoomID || !h.roomHasMember(room, c.ID()) {
		return
	}
	recipient, ok := h.clientByID(p.To)
	if !ok {
		return
	}
	recipient.enqueue(outEvent, relayPayload{From: c.ID(), Offer: p.Offer, Answer: p.Answer})
}

func (h *Hub) roomHasMember(roomCode, connID string) bool {
	room, err := h.reg.Lookup(roomCode)
	if err != nil {
		return false
	}
	return room.IsMember(connID)
}

// handleScreenShareStart implements the arbitration rule in spec.md §4.3:
// the server marks the sender as sole sharer and clears any other.
func (h *Hub) handleScreenShareStart(c *Client, raw json.RawMessage) {
	var p screenShareStartPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	room := c.room()
	if room == "" {
		return
	}
	r, err := h.reg.Lookup(room)
	if err != nil {
		return
	}
	if _, ok := r.StartScreenShare(c.ID()); !ok {
		return
	}
	h.broadcastToRoom(room, "", outScreenShareStart, screenShareStartedPayload{
		UserID:   c.ID(),
		UserName: p.UserName,
	})
}

func (h *Hub) handleScreenShareStop(c *Client, raw json.RawMessage) {
	var p screenShareStopPayload
	_ = json.Unmarshal(raw, &p)
	room := c.room()
	if room == "" {
		return
	}
	r, err := h.reg.Lookup(room)
	if err != nil {
		return
	}
	if !r.StopScreenShare(c.ID()) {
		return
	}
	h.broadcastToRoom(room, "", outScreenShareStop, screenShareStoppedPayload{UserID: c.ID()})
}

// handleChatMessage implements spec.md §4.4: unbound or empty-and-fileless
// messages are dropped; accepted messages are echoed to the sender.
func (h *Hub) handleChatMessage(c *Client, raw json.RawMessage) {
	var p chatMessagePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	room := c.room()
	if room == "" {
		return
	}
	r, err := h.reg.Lookup(room)
	if err != nil {
		return
	}

	var file *registry.FileMeta
	if p.File != nil {
		file = &registry.FileMeta{
			ID:           p.File.ID,
			URL:          p.File.URL,
			OriginalName: p.File.OriginalName,
			MimeType:     p.File.MimeType,
			Size:         p.File.Size,
			UploadedAt:   p.File.UploadedAt,
		}
	}

	rec, ok := r.AppendChat(c.ID(), p.Message, file)
	if !ok {
		return
	}

	metrics.ChatMessages.Inc()

	var outFile *wireFile
	if rec.File != nil {
		outFile = &wireFile{
			ID:           rec.File.ID,
			URL:          rec.File.URL,
			OriginalName: rec.File.OriginalName,
			MimeType:     rec.File.MimeType,
			Size:         rec.File.Size,
			UploadedAt:   rec.File.UploadedAt,
		}
	}

	h.broadcastToRoom(room, "", outChatMessage, chatMessageOutPayload{
		ID:        rec.ID,
		SocketID:  rec.AuthorConnID,
		Nickname:  rec.AuthorNickname,
		Message:   rec.Text,
		File:      outFile,
		Timestamp: rec.Timestamp,
	})
}

func (h *Hub) handleToggleMute(c *Client, raw json.RawMessage) {
	var p toggleMutePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	room := c.room()
	if room == "" {
		return
	}
	r, err := h.reg.Lookup(room)
	if err != nil || !r.ToggleMute(c.ID(), p.IsMuted) {
		return
	}
	h.broadcastToRoom(room, c.ID(), outUserMuteChanged, userMuteChangedPayload{
		SocketID: c.ID(),
		IsMuted:  p.IsMuted,
	})
}

func (h *Hub) handleToggleRaiseHand(c *Client, raw json.RawMessage) {
	var p toggleRaiseHandPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	room := c.room()
	if room == "" {
		return
	}
	r, err := h.reg.Lookup(room)
	if err != nil {
		return
	}
	nickname, ok := r.ToggleHand(c.ID(), p.IsHandRaised)
	if !ok {
		return
	}
	h.broadcastToRoom(room, c.ID(), outUserHandRaised, userHandRaisedPayload{
		SocketID:     c.ID(),
		IsHandRaised: p.IsHandRaised,
		Nickname:     nickname,
	})
}

func (h *Hub) handleFileUploadStart(c *Client, raw json.RawMessage) {
	var p fileUploadStartPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.enqueue(eventFileUploadStart, uploadStartAck{OK: false, Error: "invalid request"})
		return
	}
	if !h.roomHasMember(p.RoomID, c.ID()) {
		c.enqueue(eventFileUploadStart, uploadStartAck{OK: false, Error: registry.ErrRoomNotFound.Error()})
		return
	}

	id, err := h.uploads.Start(c.ID(), p.RoomID, p.OriginalName, p.MimeType, p.Size)
	if err != nil {
		c.enqueue(eventFileUploadStart, uploadStartAck{OK: false, Error: err.Error()})
		return
	}
	c.enqueue(eventFileUploadStart, uploadStartAck{OK: true, UploadID: id})
}

func (h *Hub) handleFileUploadChunk(c *Client, raw json.RawMessage) {
	var p fileUploadChunkPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}

	received, err := h.uploads.Chunk(p.UploadID, c.ID(), p.Chunk)
	if err != nil {
		c.enqueue(eventFileUploadChunk, uploadChunkAck{OK: false, Error: err.Error()})
		if errors.Is(err, upload.ErrWriteFailed) {
			c.enqueue(outFileUploadError, fileUploadErrorPayload{UploadID: p.UploadID, Error: err.Error()})
		}
		return
	}
	c.enqueue(eventFileUploadChunk, uploadChunkAck{OK: true, Received: received})
}

func (h *Hub) handleFileUploadComplete(c *Client, raw json.RawMessage) {
	var p fileUploadCompletePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}

	meta, err := h.uploads.Complete(p.UploadID, c.ID())
	if err != nil {
		c.enqueue(eventFileUploadComplete, uploadCompleteAck{OK: false, Error: err.Error()})
		return
	}

	c.enqueue(eventFileUploadComplete, uploadCompleteAck{OK: true, File: &wireFile{
		ID:           meta.ID,
		URL:          meta.URL,
		OriginalName: meta.OriginalName,
		MimeType:     meta.MimeType,
		Size:         meta.Size,
		UploadedAt:   meta.UploadedAt,
	}})
}
