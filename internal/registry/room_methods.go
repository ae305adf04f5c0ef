package registry

import "time"

// This file holds the exported, mutex-holding entry points onto Room state:
// the Participant State Machine transitions (spec.md §4.2), screen-share
// arbitration (spec.md §4.3), and the Chat Log (spec.md §4.4). Each method
// acquires the room's mutex for its full duration, centralizing locking at
// the entry point the way the corpus's room_methods.go does, rather than
// requiring callers to manage the lock themselves.

// ToggleMute sets the muted flag for connID. ok is false if connID is not
// bound to this room (spec.md §4.2: "silently dropped").
func (r *Room) ToggleMute(connID string, muted bool) (ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, found := r.members[connID]
	if !found {
		return false
	}
	p.Muted = muted
	return true
}

// ToggleHand sets the hand-raised flag for connID, returning the
// participant's nickname for the notification payload (spec.md §4.2: "Hand
// raise notifications additionally carry the nickname").
func (r *Room) ToggleHand(connID string, raised bool) (nickname string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, found := r.members[connID]
	if !found {
		return "", false
	}
	p.HandRaised = raised
	return p.Nickname, true
}

// StartScreenShare marks connID as the sole sharer, clearing any other
// sharer (spec.md §4.3 arbitration: "a new start supersedes an existing
// one without negotiation"). Returns the connection-id of the previous
// sharer, if any, and whether connID is a member of this room.
func (r *Room) StartScreenShare(connID string) (previousSharer string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, found := r.members[connID]; !found {
		return "", false
	}
	for id, p := range r.members {
		if p.ScreenSharing && id != connID {
			p.ScreenSharing = false
			previousSharer = id
		}
	}
	r.members[connID].ScreenSharing = true
	return previousSharer, true
}

// StopScreenShare clears connID's sharing flag if set.
func (r *Room) StopScreenShare(connID string) (ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, found := r.members[connID]
	if !found {
		return false
	}
	p.ScreenSharing = false
	return true
}

// IsMember reports whether connID is currently bound to this room.
func (r *Room) IsMember(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[connID]
	return ok
}

// Nickname returns the current nickname for connID, or "" if unbound.
func (r *Room) Nickname(connID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.members[connID]; ok {
		return p.Nickname
	}
	return ""
}

// AppendChat builds and stores a ChatRecord authored by connID (spec.md
// §4.4). Returns ok=false if connID is unbound or both text and file are
// empty (spec.md: "Messages from an unbound connection are ignored. Empty
// messages with no file are ignored.").
func (r *Room) AppendChat(connID, text string, file *FileMeta) (ChatRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, found := r.members[connID]
	if !found {
		return ChatRecord{}, false
	}
	if text == "" && file == nil {
		return ChatRecord{}, false
	}

	rec := ChatRecord{
		ID:             newChatID(),
		AuthorConnID:   connID,
		AuthorNickname: p.Nickname,
		Text:           text,
		File:           file,
		Timestamp:      time.Now(),
	}
	r.chat = append(r.chat, rec)
	return rec, true
}
