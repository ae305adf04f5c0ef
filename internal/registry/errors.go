package registry

import "errors"

// Validation errors surfaced to the originating client via an error event
// or a negative ack, per spec.md §7.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrNicknameTaken   = errors.New("nickname already taken")
	ErrInvalidNickname = errors.New("nickname must be 1-40 printable characters")

	// ErrMintExhausted indicates the registry could not find an unused room
	// code within mintAttempts tries.
	ErrMintExhausted = errors.New("could not mint a unique room code")
)

// MaxParticipants is the hard capacity cap from spec.md §3.
const MaxParticipants = 10
