package upload

import "errors"

// Ack-level errors surfaced to the originating client (spec.md §4.5, §7).
var (
	ErrUnknownUpload = errors.New("UnknownUpload")
	ErrClosed        = errors.New("Closed")
	ErrEmptyChunk    = errors.New("EmptyChunk")
	ErrFileExceeded  = errors.New("FileExceeded")
	ErrWriteFailed   = errors.New("WriteFailed")
	ErrDeclaredSize  = errors.New("declared size must be positive and at most the upload cap")
)
