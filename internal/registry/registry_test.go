package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintReturnsLookupableCode(t *testing.T) {
	reg := New()
	code, err := reg.Mint()
	require.NoError(t, err)
	assert.Len(t, code, 8)

	room, err := reg.Lookup(strings.ToLower(code))
	require.NoError(t, err)
	assert.Equal(t, code, room.Code())
}

func TestLookupUnknownCodeFails(t *testing.T) {
	reg := New()
	_, err := reg.Lookup("NOSUCH01")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinUnknownRoomFails(t *testing.T) {
	reg := New()
	_, err := reg.Join("NOSUCH01", "conn-1", "alice")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRejectsInvalidNicknameViaRegistry(t *testing.T) {
	reg := New()
	code, err := reg.Mint()
	require.NoError(t, err)

	_, err = reg.Join(code, "conn-1", "")
	assert.ErrorIs(t, err, ErrInvalidNickname)
}

func TestJoinAndLeaveEvictsEmptyRoom(t *testing.T) {
	reg := New()
	code, err := reg.Mint()
	require.NoError(t, err)

	_, err = reg.Join(code, "conn-1", "alice")
	require.NoError(t, err)

	stats := reg.Stats()
	assert.Equal(t, 1, stats.ActiveRooms)
	assert.Equal(t, 1, stats.ParticipantsByRoom[code])

	p, found := reg.Leave(code, "conn-1")
	assert.True(t, found)
	assert.Equal(t, "alice", p.Nickname)

	_, err = reg.Lookup(code)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Equal(t, 0, reg.Stats().ActiveRooms)
}

func TestLeaveNonMemberOfKnownRoomReportsNotFound(t *testing.T) {
	reg := New()
	code, err := reg.Mint()
	require.NoError(t, err)

	_, err = reg.Join(code, "conn-1", "alice")
	require.NoError(t, err)

	_, found := reg.Leave(code, "ghost")
	assert.False(t, found)

	_, err = reg.Lookup(code)
	assert.NoError(t, err)
}

func TestMintProducesDistinctCodes(t *testing.T) {
	reg := New()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := reg.Mint()
		require.NoError(t, err)
		require.False(t, seen[code])
		seen[code] = true
	}
	assert.Equal(t, 50, reg.Stats().ActiveRooms)
}
