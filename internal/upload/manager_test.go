package upload

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	m, err := NewManager(dir, 0)
	require.NoError(t, err)
	return m
}

func TestChunkedUploadReassemblesExactBytes(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Start("conn-1", "AAAAAAAA", "video.mp4", "video/mp4", 200000)
	require.NoError(t, err)

	chunk := make([]byte, 65536)
	for i := 0; i < 3; i++ {
		received, err := m.Chunk(id, "conn-1", chunk)
		require.NoError(t, err)
		assert.Equal(t, int64(65536*(i+1)), received)
	}
	last := make([]byte, 3392)
	received, err := m.Chunk(id, "conn-1", last)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), received)

	meta, err := m.Complete(id, "conn-1")
	require.NoError(t, err)
	assert.Equal(t, int64(200000), meta.Size)
	require.True(t, strings.HasPrefix(meta.URL, "/uploads/"))

	path := m.dir + "/" + meta.URL[len("/uploads/"):]
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), info.Size())
}

func TestChunkExceedingDeclaredSizeAbortsAndRemovesFile(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Start("conn-1", "AAAAAAAA", "small.bin", "application/octet-stream", 1000)
	require.NoError(t, err)

	_, err = m.Chunk(id, "conn-1", make([]byte, 400))
	require.NoError(t, err)
	_, err = m.Chunk(id, "conn-1", make([]byte, 400))
	require.NoError(t, err)
	_, err = m.Chunk(id, "conn-1", make([]byte, 400))
	assert.ErrorIs(t, err, ErrFileExceeded)

	_, err = m.Chunk(id, "conn-1", make([]byte, 1))
	assert.ErrorIs(t, err, ErrUnknownUpload)

	entries, err := os.ReadDir(m.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChunkRejectsNonOwnerAndEmptyPayload(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Start("conn-1", "AAAAAAAA", "a.txt", "text/plain", 10)
	require.NoError(t, err)

	_, err = m.Chunk(id, "conn-2", []byte("x"))
	assert.ErrorIs(t, err, ErrUnknownUpload)

	_, err = m.Chunk(id, "conn-1", nil)
	assert.ErrorIs(t, err, ErrEmptyChunk)
}

func TestCompleteAcceptsShortUploadAtActualLength(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Start("conn-1", "AAAAAAAA", "a.txt", "text/plain", 1000)
	require.NoError(t, err)

	_, err = m.Chunk(id, "conn-1", make([]byte, 10))
	require.NoError(t, err)

	meta, err := m.Complete(id, "conn-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), meta.Size)
}

func TestAbortOwnedByRemovesPartialFilesAndFreesSessions(t *testing.T) {
	m := newTestManager(t)

	id1, err := m.Start("conn-1", "AAAAAAAA", "a.txt", "text/plain", 1000)
	require.NoError(t, err)
	id2, err := m.Start("conn-1", "AAAAAAAA", "b.txt", "text/plain", 1000)
	require.NoError(t, err)
	other, err := m.Start("conn-2", "AAAAAAAA", "c.txt", "text/plain", 1000)
	require.NoError(t, err)

	_, err = m.Chunk(id1, "conn-1", make([]byte, 10))
	require.NoError(t, err)

	m.AbortOwnedBy("conn-1")

	_, err = m.Chunk(id1, "conn-1", make([]byte, 1))
	assert.ErrorIs(t, err, ErrUnknownUpload)
	_, err = m.Chunk(id2, "conn-1", make([]byte, 1))
	assert.ErrorIs(t, err, ErrUnknownUpload)

	entries, err := os.ReadDir(m.dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = m.Chunk(other, "conn-2", make([]byte, 1))
	assert.NoError(t, err)
}

func TestCompleteCleansUpOnCloseFailure(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Start("conn-1", "AAAAAAAA", "a.txt", "text/plain", 1000)
	require.NoError(t, err)

	_, err = m.Chunk(id, "conn-1", make([]byte, 10))
	require.NoError(t, err)

	m.mu.Lock()
	sess := m.sessions[id]
	m.mu.Unlock()
	require.NoError(t, sess.file.Close()) // pre-close so complete()'s own Close() fails

	_, err = m.Complete(id, "conn-1")
	assert.ErrorIs(t, err, ErrWriteFailed)

	entries, err := os.ReadDir(m.dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial file must not be left orphaned on a close failure")

	_, err = m.Complete(id, "conn-1")
	assert.ErrorIs(t, err, ErrUnknownUpload, "failed session must be forgotten, not left un-completable")
}

func TestStartRejectsDeclaredSizeAboveCapOrNonPositive(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, 100)
	require.NoError(t, err)

	_, err = m.Start("conn-1", "AAAAAAAA", "a.txt", "text/plain", 101)
	assert.ErrorIs(t, err, ErrDeclaredSize)

	_, err = m.Start("conn-1", "AAAAAAAA", "a.txt", "text/plain", 0)
	assert.ErrorIs(t, err, ErrDeclaredSize)
}
