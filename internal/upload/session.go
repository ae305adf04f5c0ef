package upload

import (
	"os"
	"sync"
	"time"

	"github.com/relaymeet/backend/internal/registry"
)

// Session is the stateful ingestion of one file over many chunks, scoped to
// the originating connection (spec.md §3 UploadSession). mu serializes
// writes against a session's own file handle independently of any Room
// lock, matching spec.md §5's requirement that disk writes never hold a
// per-Room mutex.
type Session struct {
	mu sync.Mutex

	id           string
	ownerConnID  string
	roomCode     string
	originalName string
	mimeType     string
	declaredSize int64

	bytesReceived int64
	diskName      string
	path          string
	file          *os.File
	closed        bool
}

// write appends chunk to the session's backing file, enforcing the
// declared-size cap cumulatively (spec.md §4.5: "enforced both at start
// ... and continuously at chunk").
func (s *Session) write(chunk []byte) (received int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if len(chunk) == 0 {
		return 0, ErrEmptyChunk
	}
	if s.bytesReceived+int64(len(chunk)) > s.declaredSize {
		return 0, ErrFileExceeded
	}

	n, werr := s.file.Write(chunk)
	s.bytesReceived += int64(n)
	if werr != nil {
		return s.bytesReceived, ErrWriteFailed
	}
	return s.bytesReceived, nil
}

// complete flushes and closes the backing file, returning the metadata for
// the bytes actually received (spec.md §4.5: short uploads are accepted at
// their actual length, not rejected).
func (s *Session) complete() (registry.FileMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return registry.FileMeta{}, ErrClosed
	}
	if err := s.file.Close(); err != nil {
		s.abortLocked()
		return registry.FileMeta{}, ErrWriteFailed
	}
	s.closed = true

	return registry.FileMeta{
		ID:           s.id,
		URL:          "/uploads/" + s.diskName,
		OriginalName: s.originalName,
		MimeType:     s.mimeType,
		Size:         s.bytesReceived,
		UploadedAt:   time.Now(),
	}, nil
}

// abort destroys the backing file and marks the session closed, used both
// for size/write failures and for disconnect cleanup (spec.md §4.5).
func (s *Session) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abortLocked()
}

// abortLocked performs the close-best-effort-and-remove cleanup. Caller
// holds mu. Idempotent so a failed complete() and a later disconnect-driven
// abort() never race on the same file twice.
func (s *Session) abortLocked() {
	if s.closed {
		return
	}
	s.closed = true
	_ = s.file.Close()
	_ = os.Remove(s.path)
}
