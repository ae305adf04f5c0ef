// Package upload implements the chunked Upload Manager (spec.md §4.5):
// reassembly of untrusted binary chunks into content-addressed files on
// local storage, under a 25 MiB cap, with disconnect cleanup leaving no
// orphan files behind.
package upload

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	humanize "github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relaymeet/backend/internal/logging"
	"github.com/relaymeet/backend/internal/metrics"
	"github.com/relaymeet/backend/internal/registry"
)

// DefaultMaxBytes is the hard per-file cap from spec.md §3.
const DefaultMaxBytes = 25 * 1024 * 1024

// Manager owns every in-flight Session, keyed by upload id. It has no
// relationship to any Room's lock: disk writes happen entirely off that
// critical path (spec.md §5).
type Manager struct {
	mu       sync.Mutex
	dir      string
	maxBytes int64
	sessions map[string]*Session
}

// NewManager creates a Manager rooted at dir, creating it if necessary.
func NewManager(dir string, maxBytes int64) (*Manager, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Manager{
		dir:      dir,
		maxBytes: maxBytes,
		sessions: make(map[string]*Session),
	}, nil
}

// Start mints an upload id and opens a backing file for a new Session
// (spec.md §4.5 file-upload-start).
func (m *Manager) Start(ownerConnID, roomCode, originalName, mimeType string, declaredSize int64) (uploadID string, err error) {
	if declaredSize <= 0 || declaredSize > m.maxBytes {
		return "", ErrDeclaredSize
	}

	diskName, err := storedFilename(originalName)
	if err != nil {
		return "", err
	}
	path := filepath.Join(m.dir, diskName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", ErrWriteFailed
	}

	id := uuid.NewString()
	sess := &Session{
		id:           id,
		ownerConnID:  ownerConnID,
		roomCode:     roomCode,
		originalName: originalName,
		mimeType:     mimeType,
		declaredSize: declaredSize,
		diskName:     diskName,
		path:         path,
		file:         f,
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	metrics.UploadSessionsActive.Inc()
	logging.Info(context.Background(), "upload started",
		zap.String("upload_id", id),
		zap.String("room", roomCode),
		zap.String("name", originalName),
		zap.String("declared_size", humanize.Bytes(uint64(declaredSize))),
	)
	return id, nil
}

// Chunk appends bytes to an existing session, enforcing ownership and the
// cumulative size cap (spec.md §4.5 file-upload-chunk).
func (m *Manager) Chunk(uploadID, ownerConnID string, chunk []byte) (received int64, err error) {
	sess, ok := m.lookupOwned(uploadID, ownerConnID)
	if !ok {
		return 0, ErrUnknownUpload
	}

	received, err = sess.write(chunk)
	if err != nil {
		if err == ErrFileExceeded || err == ErrWriteFailed {
			m.abortAndForget(uploadID, sess)
			metrics.UploadErrors.WithLabelValues(err.Error()).Inc()
		}
		return received, err
	}

	metrics.UploadBytesReceived.Add(float64(len(chunk)))
	return received, nil
}

// Complete finalizes a session and returns its FileMeta (spec.md §4.5
// file-upload-complete). The session is removed from the manager whether
// completion succeeds or fails.
func (m *Manager) Complete(uploadID, ownerConnID string) (registry.FileMeta, error) {
	sess, ok := m.lookupOwned(uploadID, ownerConnID)
	if !ok {
		return registry.FileMeta{}, ErrUnknownUpload
	}

	meta, err := sess.complete()
	m.forget(uploadID)
	metrics.UploadSessionsActive.Dec()
	if err != nil {
		metrics.UploadErrors.WithLabelValues(err.Error()).Inc()
		return registry.FileMeta{}, err
	}

	logging.Info(context.Background(), "upload completed",
		zap.String("upload_id", uploadID),
		zap.String("size", humanize.Bytes(uint64(meta.Size))),
	)
	return meta, nil
}

// AbortOwnedBy destroys every session owned by connID, removing partial
// files from disk. Used on disconnect (spec.md §4.5 "Disconnect cleanup").
func (m *Manager) AbortOwnedBy(connID string) {
	m.mu.Lock()
	owned := make([]*Session, 0)
	for id, s := range m.sessions {
		if s.ownerConnID == connID {
			owned = append(owned, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range owned {
		s.abort()
		metrics.UploadSessionsActive.Dec()
	}
}

func (m *Manager) lookupOwned(uploadID, ownerConnID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[uploadID]
	if !ok || sess.ownerConnID != ownerConnID {
		return nil, false
	}
	return sess, true
}

func (m *Manager) forget(uploadID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, uploadID)
}

func (m *Manager) abortAndForget(uploadID string, sess *Session) {
	m.forget(uploadID)
	sess.abort()
	metrics.UploadSessionsActive.Dec()
}
