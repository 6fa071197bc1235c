package bridge

import (
	"errors"

	"github.com/nguyengg/unarchive/arcerr"
)

// errNullHandle is returned when a call is made on a NULL or closed session.
func errNullHandle(op string) error {
	return arcerr.Newf(arcerr.ErrNull, arcerr.ErrnoProgrammer, "%s: archive pointer is NULL or already freed", op)
}

// errUnexpectedNull is the pointer-call failure when the engine returned NULL with a clear error state.
var errUnexpectedNull = arcerr.New(arcerr.ErrNull, arcerr.ENULL, "unexpected NULL")

// IsEndOfArchive returns true if err is the NULL signal returned by Archive.NextEntry at the end of the archive.
func IsEndOfArchive(err error) bool {
	var e *arcerr.Error
	return errors.As(err, &e) && e.Kind == arcerr.ErrNull && e.Code == arcerr.ENULL
}

// lastError reads then clears the last error of h.
func lastError(h Handle) (int, string) {
	errno, msg := h.Errno(), h.ErrorString()
	h.ClearError()
	return errno, msg
}

func errnoError(op string, errno int, msg string) error {
	if msg == "" {
		msg = op + " failed"
	}

	if errno == arcerr.EPASS {
		return arcerr.New(arcerr.ErrPassphrase, errno, msg)
	}

	return arcerr.New(arcerr.ErrArchive, errno, msg)
}

// statusCall invokes a call whose return value is a Status.
//
// OK and EOF are successes. WARN is logged then treated as success. RETRY, FAILED and FATAL each map to their own
// error kind.
func (b *Binding) statusCall(h Handle, op string, fn func() Status) error {
	if h == nil {
		return errNullHandle(op)
	}

	status := fn()
	errno, msg := lastError(h)
	if msg == "" {
		msg = op + " returned " + status.String()
	}

	code := int(status)
	if errno != 0 {
		code = errno
	}

	switch status {
	case StatusOK, StatusEOF:
		return nil
	case StatusWarn:
		b.warnf("%s: %s", op, msg)
		return nil
	case StatusRetry:
		return arcerr.New(arcerr.ErrRetry, code, msg)
	case StatusFailed:
		return arcerr.New(arcerr.ErrFailed, code, msg)
	case StatusFatal:
		return arcerr.New(arcerr.ErrFatal, code, msg)
	}

	if status < 0 {
		return arcerr.New(arcerr.ErrArchive, code, msg)
	}

	return nil
}

// valueCall invokes a call whose return value is data; a non-zero errno independently signals failure.
func valueCall[T any](h Handle, op string, fn func() T) (v T, err error) {
	if h == nil {
		return v, errNullHandle(op)
	}

	v = fn()
	if errno, msg := lastError(h); errno != 0 {
		return v, errnoError(op, errno, msg)
	}

	return v, nil
}

// pointerCall is a valueCall where a zero return with a clear error state is the "unexpected NULL" failure.
func pointerCall[T comparable](h Handle, op string, fn func() T) (T, error) {
	v, err := valueCall(h, op, fn)
	if err != nil {
		return v, err
	}

	var zero T
	if v == zero {
		return v, errUnexpectedNull
	}

	return v, nil
}
