package registry

import (
	"sync"

	"github.com/relaymeet/backend/internal/roomcode"
)

// mintAttempts bounds retries on room-code collision before giving up;
// with an 8-character 32-symbol alphabet the birthday bound makes repeated
// collisions astronomically unlikely (see roomcode_test.go).
const mintAttempts = 10

// Registry is the process-wide, in-memory mapping from room code to Room
// aggregate (spec.md §4.1). It owns its own lock, separate from each
// Room's internal lock, so minting or evicting a room never blocks
// concurrent activity inside unrelated rooms.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Mint generates a fresh, collision-free room code and registers an empty
// Room under it, returning the code.
func (reg *Registry) Mint() (string, error) {
	for i := 0; i < mintAttempts; i++ {
		code, err := roomcode.New()
		if err != nil {
			return "", err
		}

		reg.mu.Lock()
		if _, exists := reg.rooms[code]; exists {
			reg.mu.Unlock()
			continue
		}
		reg.rooms[code] = newRoom(code)
		reg.mu.Unlock()
		return code, nil
	}
	return "", ErrMintExhausted
}

// Lookup returns the Room for a (case-insensitive) code.
func (reg *Registry) Lookup(code string) (*Room, error) {
	code = roomcode.Normalize(code)
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Join adds connID/nickname to the room at code, minting no new room if it
// does not exist (spec.md §4.1: joining requires a previously minted code).
func (reg *Registry) Join(code, connID, nickname string) (JoinResult, error) {
	r, err := reg.Lookup(code)
	if err != nil {
		return JoinResult{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.joinLocked(connID, nickname)
}

// Leave removes connID from the room at code. If the room becomes empty it
// is evicted from the registry (spec.md §4.1: "A room with zero
// participants is destroyed"). Returns the removed participant and whether
// the caller was a member of the room at all.
func (reg *Registry) Leave(code, connID string) (Participant, bool) {
	code = roomcode.Normalize(code)

	reg.mu.RLock()
	r, ok := reg.rooms[code]
	reg.mu.RUnlock()
	if !ok {
		return Participant{}, false
	}

	r.mu.Lock()
	p, found, empty := r.leaveLocked(connID)
	r.mu.Unlock()

	if empty {
		reg.mu.Lock()
		if cur, ok := reg.rooms[code]; ok && cur == r {
			delete(reg.rooms, code)
		}
		reg.mu.Unlock()
	}

	return p, found
}

// Stats is a point-in-time snapshot used to populate gauge metrics
// (SPEC_FULL.md §4.1 supplement).
type Stats struct {
	ActiveRooms        int
	ParticipantsByRoom map[string]int
}

// Stats returns a snapshot of active rooms and per-room participant counts.
func (reg *Registry) Stats() Stats {
	reg.mu.RLock()
	codes := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		codes = append(codes, r)
	}
	reg.mu.RUnlock()

	out := Stats{
		ActiveRooms:        len(codes),
		ParticipantsByRoom: make(map[string]int, len(codes)),
	}
	for _, r := range codes {
		out.ParticipantsByRoom[r.Code()] = r.ParticipantCount()
	}
	return out
}
