package bridge

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"

	"github.com/nguyengg/unarchive/arcerr"
	"github.com/nguyengg/unarchive/pointer"
)

// Binding opens sessions on an Engine.
type Binding struct {
	Engine Engine

	// Logger receives decoder warnings. Defaults to log.Default.
	Logger *log.Logger
	// NoWarnings suppresses decoder warnings.
	NoWarnings bool
}

func (b *Binding) warnf(format string, v ...any) {
	if b.NoWarnings {
		return
	}

	if b.Logger != nil {
		b.Logger.Printf("WARN "+format, v...)
		return
	}

	log.Printf("WARN "+format, v...)
}

// Archive is an open decoder session.
//
// Archive must be closed exactly once; Close is idempotent so it is safe to defer. Archive is not safe for
// concurrent use.
type Archive struct {
	b   *Binding
	h   Handle
	ctx context.Context
}

// Entry is the metadata of the entry at the cursor.
type Entry struct {
	Size     int64
	Mode     uint32
	Pathname []byte
	// Symlink and Hardlink are nil if the entry is not that kind of link.
	Symlink  []byte
	Hardlink []byte
	// Timestamps in nanoseconds since the Unix epoch, 0 if unset.
	Atime, Ctime, Mtime, Birthtime int64
}

// Open opens a new session over the content of buf.
//
// buf must be an owned, non-NULL pointer; it is only borrowed and must outlive the returned Archive. If the engine
// reports an error after opening, the half-open session is freed and the error is returned: the passphrase errno
// yields arcerr.ErrPassphrase, anything else arcerr.ErrArchive.
func (b *Binding) Open(ctx context.Context, buf *pointer.Pointer, passphrase string, child bool) (*Archive, error) {
	switch {
	case buf.IsNull():
		return nil, arcerr.New(arcerr.ErrNull, arcerr.ENULL, "archive buffer is NULL")
	case buf.IsManaged():
		return nil, arcerr.New(arcerr.ErrNull, arcerr.ENULL, "archive buffer must not be managed")
	}

	h := b.Engine.Open(ctx, buf.Bytes(), passphrase, child)
	if h == nil {
		return nil, errUnexpectedNull
	}

	if errno, msg := lastError(h); errno != 0 {
		_ = h.Free()
		h.ClearError()
		return nil, withContext(ctx, errnoError("open", errno, msg))
	}

	return &Archive{b: b, h: h, ctx: ctx}, nil
}

// NextEntry advances the cursor and returns the metadata of the new entry.
//
// At the end of the archive, the returned error satisfies IsEndOfArchive.
func (a *Archive) NextEntry() (*Entry, error) {
	if a.h == nil {
		return nil, errNullHandle("next entry")
	}

	h, err := pointerCall(a.h, "next entry", a.h.NextEntry)
	if err != nil {
		return nil, withContext(a.ctx, err)
	}

	e := &Entry{}
	if e.Size, err = valueCall(a.h, "entry size", h.Size); err != nil {
		return nil, err
	}
	if e.Mode, err = valueCall(a.h, "entry mode", h.Mode); err != nil {
		return nil, err
	}
	if e.Pathname, err = valueCall(a.h, "entry pathname", h.Pathname); err != nil {
		return nil, err
	}
	if e.Symlink, err = valueCall(a.h, "entry symlink", h.Symlink); err != nil {
		return nil, err
	}
	if e.Hardlink, err = valueCall(a.h, "entry hardlink", h.Hardlink); err != nil {
		return nil, err
	}
	if e.Atime, err = valueCall(a.h, "entry atime", h.Atime); err != nil {
		return nil, err
	}
	if e.Ctime, err = valueCall(a.h, "entry ctime", h.Ctime); err != nil {
		return nil, err
	}
	if e.Mtime, err = valueCall(a.h, "entry mtime", h.Mtime); err != nil {
		return nil, err
	}
	if e.Birthtime, err = valueCall(a.h, "entry birthtime", h.Birthtime); err != nil {
		return nil, err
	}

	return e, nil
}

// FileData reads the content of the current entry whose declared size is size.
//
// A zero size returns an empty slice without calling the engine. If the engine returns fewer bytes than size, the
// result is truncated to what was actually read and a warning is logged.
func (a *Archive) FileData(size int64) ([]byte, error) {
	if a.h == nil {
		return nil, errNullHandle("read data")
	}
	if size == 0 {
		return []byte{}, nil
	}
	if size < 0 || size > math.MaxInt {
		return nil, arcerr.Newf(arcerr.ErrFileRead, arcerr.ErrnoMisc, "invalid entry size %d", size)
	}

	buf, err := pointer.Alloc(int(size))
	if err != nil {
		return nil, err
	}
	defer buf.Free()

	n, err := valueCall(a.h, "read data", func() int {
		return a.h.ReadData(buf.Bytes())
	})
	if err != nil {
		var e *arcerr.Error
		if !errors.As(err, &e) {
			return nil, arcerr.Wrap(arcerr.ErrFileRead, arcerr.ErrnoMisc, err)
		}

		kind := arcerr.ErrFileRead
		if e.Code == arcerr.EPASS || mentionsPassphrase(e.Message) {
			kind = arcerr.ErrPassphrase
		}

		return nil, withContext(a.ctx, &arcerr.Error{Kind: kind, Code: e.Code, Message: e.Message, Err: e.Err})
	}

	if n < 0 {
		return nil, arcerr.Newf(arcerr.ErrFileRead, n, "read data returned %s", Status(n))
	}

	if int64(n) != size {
		a.b.warnf("entry declared %d bytes but decoder read %d bytes", size, n)
		if err = buf.Realloc(n, false); err != nil {
			return nil, err
		}
	}

	return buf.ReadAll()
}

// PeekFileData returns up to n bytes from the start of the current entry's content without consuming them.
func (a *Archive) PeekFileData(n int) ([]byte, error) {
	return valueCall(a.h, "peek data", func() []byte {
		return a.h.PeekData(n)
	})
}

// Close frees the session.
//
// The Archive is unusable after Close even if the engine reported a failure while freeing.
func (a *Archive) Close() error {
	if a == nil || a.h == nil {
		return nil
	}

	h := a.h
	a.h = nil
	return a.b.statusCall(h, "close", h.Free)
}

// Closed returns true if Close has been called.
func (a *Archive) Closed() bool {
	return a == nil || a.h == nil
}

func mentionsPassphrase(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "passphrase") || strings.Contains(msg, "password")
}

// withContext makes err match the error of ctx if ctx is done, since the engine only reports an errno and a message.
func withContext(ctx context.Context, err error) error {
	cerr := ctx.Err()
	if cerr == nil || errors.Is(err, cerr) {
		return err
	}

	var e *arcerr.Error
	if !errors.As(err, &e) || e.Err != nil {
		return err
	}

	return &arcerr.Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: cerr}
}
