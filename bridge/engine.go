// Package bridge is the typed call surface over a streaming archive decoder.
//
// The decoder is described by the Engine, Handle and EntryHandle interfaces which mirror a C ABI: calls report
// failures through status codes, through a NULL return, or through a last-error code that must be read and cleared
// after every call. Binding wraps those calls and translates every failure into an [*arcerr.Error].
package bridge

import (
	"context"
	"fmt"
)

// Status is the return code of a decoder status call.
type Status int

const (
	StatusOK     Status = 0
	StatusEOF    Status = 1
	StatusRetry  Status = -10
	StatusWarn   Status = -20
	StatusFailed Status = -25
	StatusFatal  Status = -30
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusEOF:
		return "EOF"
	case StatusRetry:
		return "RETRY"
	case StatusWarn:
		return "WARN"
	case StatusFailed:
		return "FAILED"
	case StatusFatal:
		return "FATAL"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Engine opens decoder sessions.
type Engine interface {
	// Open starts a new session over data.
	//
	// child is true when data is the content of an entry that is being probed as a nested archive. Open may return
	// a nil Handle only if it could not allocate one; every other failure must be reported through Handle.Errno.
	Open(ctx context.Context, data []byte, passphrase string, child bool) Handle
}

// Handle is a decoder session with a forward-only cursor over entries.
type Handle interface {
	// NextEntry advances the cursor. Returns nil at the end of the archive with a clear error state, or nil with a
	// non-zero Errno on failure.
	NextEntry() EntryHandle
	// ReadData reads the content of the current entry into p, returning the number of bytes read or a negative
	// Status.
	ReadData(p []byte) int
	// PeekData returns up to n bytes from the start of the current entry's content without consuming them.
	PeekData(n int) []byte
	// Free ends the session.
	Free() Status
	// Errno returns the last error code, 0 if there was none.
	Errno() int
	// ErrorString returns the last error message.
	ErrorString() string
	// ClearError resets the last error code and message.
	ClearError()
}

// EntryHandle provides the metadata getters of the entry at the cursor.
//
// Timestamps are nanoseconds since the Unix epoch, 0 if not set. Link getters return nil if the entry is not that
// kind of link.
type EntryHandle interface {
	Size() int64
	Mode() uint32
	Pathname() []byte
	Symlink() []byte
	Hardlink() []byte
	Atime() int64
	Ctime() int64
	Mtime() int64
	Birthtime() int64
}
