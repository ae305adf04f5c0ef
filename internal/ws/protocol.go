// Package ws implements the Connection Dispatcher and Signaling Router
// (spec.md §4.3, §4.6): it accepts duplex WebSocket connections, assigns
// each a stable connection-id, parses named JSON events, and dispatches
// them to the Room Registry, Upload Manager, and Chat Log.
package ws

import (
	"encoding/json"
	"time"
)

// Inbound event names (spec.md §6 client-to-server).
const (
	eventJoinRoom           = "join-room"
	eventOffer              = "offer"
	eventAnswer             = "answer"
	eventScreenShareOffer   = "screen-share-offer"
	eventScreenShareAnswer  = "screen-share-answer"
	eventScreenShareStart   = "screen-share-start"
	eventScreenShareStop    = "screen-share-stop"
	eventChatMessage        = "chat-message"
	eventToggleMute         = "toggle-mute"
	eventToggleRaiseHand    = "toggle-raise-hand"
	eventFileUploadStart    = "file-upload-start"
	eventFileUploadChunk    = "file-upload-chunk"
	eventFileUploadComplete = "file-upload-complete"
)

// Outbound event names (spec.md §6 server-to-client).
const (
	outRoomJoined         = "room-joined"
	outUserJoined         = "user-joined"
	outUserLeft           = "user-left"
	outOffer              = "offer"
	outAnswer             = "answer"
	outScreenShareOffer   = "screen-share-offer"
	outScreenShareAnswer  = "screen-share-answer"
	outScreenShareStart   = "screen-share-start"
	outScreenShareStop    = "screen-share-stop"
	outChatMessage        = "chat-message"
	outUserMuteChanged    = "user-mute-changed"
	outUserHandRaised     = "user-hand-raised"
	outFileUploadError    = "file-upload-error"
	outError              = "error"
)

// envelope is the tagged wire form for outbound duplex events.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// inboundEnvelope defers payload decoding to the handler for its event,
// matching spec.md §9's "tagged variant of inbound events with one handler
// per variant."
type inboundEnvelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// wireFile mirrors registry.FileMeta on the wire (spec.md §6 chat-message.file).
type wireFile struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// --- Inbound payloads ---

type joinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Nickname string `json:"nickname"`
}

type signalPayload struct {
	RoomID string `json:"roomId"`
	To     string `json:"to"`
	Offer  any    `json:"offer,omitempty"`
	Answer any    `json:"answer,omitempty"`
}

type screenShareStartPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type screenShareStopPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type chatMessagePayload struct {
	Message string    `json:"message"`
	File    *wireFile `json:"file,omitempty"`
}

type toggleMutePayload struct {
	IsMuted bool `json:"isMuted"`
}

type toggleRaiseHandPayload struct {
	IsHandRaised bool `json:"isHandRaised"`
}

type fileUploadStartPayload struct {
	RoomID       string `json:"roomId"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
}

type fileUploadChunkPayload struct {
	UploadID string `json:"uploadId"`
	Chunk    []byte `json:"chunk"`
}

type fileUploadCompletePayload struct {
	UploadID string `json:"uploadId"`
}

// --- Outbound payloads ---

type roomJoinedPayload struct {
	RoomID       string               `json:"roomId"`
	Participants []participantPayload `json:"participants"`
	IsHost       bool                 `json:"isHost"`
}

type participantPayload struct {
	SocketID       string    `json:"socketId"`
	Nickname       string    `json:"nickname"`
	IsMuted        bool      `json:"isMuted"`
	IsVideoEnabled bool      `json:"isVideoEnabled"`
	IsHandRaised   bool      `json:"isHandRaised"`
	JoinedAt       time.Time `json:"joinedAt"`
}

type userLeftPayload struct {
	SocketID string `json:"socketId"`
	Nickname string `json:"nickname"`
}

type relayPayload struct {
	From   string `json:"from"`
	Offer  any    `json:"offer,omitempty"`
	Answer any    `json:"answer,omitempty"`
}

type screenShareStartedPayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type screenShareStoppedPayload struct {
	UserID string `json:"userId"`
}

type chatMessageOutPayload struct {
	ID        string    `json:"id"`
	SocketID  string    `json:"socketId"`
	Nickname  string    `json:"nickname"`
	Message   string    `json:"message"`
	File      *wireFile `json:"file,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type userMuteChangedPayload struct {
	SocketID string `json:"socketId"`
	IsMuted  bool   `json:"isMuted"`
}

type userHandRaisedPayload struct {
	SocketID     string `json:"socketId"`
	IsHandRaised bool   `json:"isHandRaised"`
	Nickname     string `json:"nickname"`
}

type fileUploadErrorPayload struct {
	UploadID string `json:"uploadId"`
	Error    string `json:"error"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// --- Ack payloads ---

type uploadStartAck struct {
	OK       bool   `json:"ok"`
	UploadID string `json:"uploadId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type uploadChunkAck struct {
	OK       bool   `json:"ok"`
	Received int64  `json:"received,omitempty"`
	Error    string `json:"error,omitempty"`
}

type uploadCompleteAck struct {
	OK    bool      `json:"ok"`
	File  *wireFile `json:"file,omitempty"`
	Error string    `json:"error,omitempty"`
}
