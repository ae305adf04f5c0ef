// Package registry implements the Room Registry and Participant State
// Machine (spec.md §4.1, §4.2): the authoritative in-memory mapping from
// room code to Room aggregate, with per-room single-writer serialization.
package registry

import (
	"container/list"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// maxNicknameLength and minNicknameLength bound the Participant nickname
// invariant (spec.md §3: "1-40 printable characters").
const (
	minNicknameLength = 1
	maxNicknameLength = 40
)

// validNickname reports whether nickname satisfies spec.md §3's length and
// printability invariant.
func validNickname(nickname string) bool {
	n := utf8.RuneCountInString(nickname)
	if n < minNicknameLength || n > maxNicknameLength {
		return false
	}
	for _, r := range nickname {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// Room is the aggregate owning one meeting's participants and chat log.
// All state-mutating methods below assume the caller holds mu; they are
// named with a Locked suffix to make that contract explicit, matching the
// corpus's room_methods.go discipline of centralizing locking in the
// exported entry points and keeping internal mutators lock-free.
type Room struct {
	mu sync.RWMutex

	code      string
	createdAt time.Time

	// order preserves insertion order of connection-ids for host handoff
	// (spec.md §4.1: "insertion-order-earliest remaining participant").
	order   *list.List
	byConn  map[string]*list.Element // connection-id -> element in order
	members map[string]*Participant  // connection-id -> participant

	hostConnID string

	chat []ChatRecord
}

func newRoom(code string) *Room {
	return &Room{
		code:      code,
		createdAt: time.Now(),
		order:     list.New(),
		byConn:    make(map[string]*list.Element),
		members:   make(map[string]*Participant),
	}
}

// Code returns the room's canonical uppercase code.
func (r *Room) Code() string {
	return r.code
}

// ParticipantCount returns the current number of bound participants.
func (r *Room) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// joinLocked inserts a new participant or returns the existing one for an
// idempotent rejoin (spec.md §4.1 "Rejoin idempotency"). Caller holds mu.
func (r *Room) joinLocked(connID, nickname string) (JoinResult, error) {
	if existing, ok := r.members[connID]; ok {
		return r.viewLocked(existing), nil
	}

	if !validNickname(nickname) {
		return JoinResult{}, ErrInvalidNickname
	}

	if len(r.members) >= MaxParticipants {
		return JoinResult{}, ErrRoomFull
	}
	for _, p := range r.members {
		if p.Nickname == nickname {
			return JoinResult{}, ErrNicknameTaken
		}
	}

	existingMembers := r.snapshotMembersLocked()

	p := &Participant{
		ConnectionID: connID,
		Nickname:     nickname,
		JoinedAt:     time.Now(),
	}
	elem := r.order.PushBack(connID)
	r.byConn[connID] = elem
	r.members[connID] = p

	isHost := false
	if r.hostConnID == "" {
		r.hostConnID = connID
		isHost = true
	}

	return JoinResult{
		Self:            p.Snapshot(),
		ExistingMembers: existingMembers,
		IsHost:          isHost,
	}, nil
}

func (r *Room) viewLocked(p *Participant) JoinResult {
	return JoinResult{
		Self:            p.Snapshot(),
		ExistingMembers: r.snapshotMembersLockedExcept(p.ConnectionID),
		IsHost:          r.hostConnID == p.ConnectionID,
	}
}

func (r *Room) snapshotMembersLocked() []Participant {
	return r.snapshotMembersLockedExcept("")
}

func (r *Room) snapshotMembersLockedExcept(exclude string) []Participant {
	out := make([]Participant, 0, len(r.members))
	for e := r.order.Front(); e != nil; e = e.Next() {
		connID := e.Value.(string)
		if connID == exclude {
			continue
		}
		if p, ok := r.members[connID]; ok {
			out = append(out, p.Snapshot())
		}
	}
	return out
}

// leaveLocked removes a participant, transferring host if needed. Returns
// the removed participant and whether the room is now empty.
func (r *Room) leaveLocked(connID string) (Participant, bool, bool) {
	p, ok := r.members[connID]
	if !ok {
		return Participant{}, false, len(r.members) == 0
	}

	if elem, ok := r.byConn[connID]; ok {
		r.order.Remove(elem)
		delete(r.byConn, connID)
	}
	delete(r.members, connID)

	if r.hostConnID == connID {
		r.hostConnID = ""
		if e := r.order.Front(); e != nil {
			r.hostConnID = e.Value.(string)
		}
	}

	return p.Snapshot(), true, len(r.members) == 0
}

// HostConnID returns the connection-id of the current host, or "" if none.
func (r *Room) HostConnID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hostConnID
}

// Members returns a snapshot of every participant currently in the room,
// in insertion order, for callers that need to fan out to the whole room
// (e.g. the Connection Dispatcher's broadcast helper).
func (r *Room) Members() []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotMembersLocked()
}

// newChatID mints a globally unique chat record id.
func newChatID() string {
	return uuid.NewString()
}
