package unarchive

import (
	"context"
	"errors"
	"iter"
	"sync"

	"github.com/nguyengg/unarchive/arcerr"
	"github.com/nguyengg/unarchive/bridge"
	"github.com/nguyengg/unarchive/pointer"
)

// probeSize is how much of a file's content is peeked at to decide whether it may be a nested archive.
const probeSize = 1024

// Prober is implemented by engines that can tell from a prefix of a file's content whether it may be an archive.
//
// Without a Prober, recursive extraction must load the content of every file to find out.
type Prober interface {
	Probe(ctx context.Context, prefix []byte) bool
}

// Archive is an archive held in foreign memory.
//
// Entries may be called any number of times, each call walks the archive from the start. Close releases the memory;
// entries whose content was not loaded can no longer load it afterwards.
type Archive struct {
	cfg     *config
	binding *bridge.Binding
	buf     *pointer.Pointer
	owned   bool

	mu       sync.Mutex
	children []*pointer.Pointer
	closed   bool
	warned   sync.Once
}

// New copies data into foreign memory and returns an Archive over it.
func New(data []byte, optFns ...func(*Options)) (*Archive, error) {
	cfg, err := newConfig(optFns)
	if err != nil {
		return nil, err
	}

	buf, err := pointer.FromBytes(data)
	if err != nil {
		return nil, err
	}

	return newArchive(cfg, buf, true), nil
}

// NewFromPointer returns an Archive over the content of buf.
//
// The caller keeps ownership of buf, which must not be freed before the Archive is closed.
func NewFromPointer(buf *pointer.Pointer, optFns ...func(*Options)) (*Archive, error) {
	switch {
	case buf.IsNull():
		return nil, arcerr.New(arcerr.ErrNull, arcerr.ENULL, "archive buffer is NULL")
	case buf.IsManaged():
		return nil, arcerr.New(arcerr.ErrNull, arcerr.ENULL, "archive buffer must not be managed")
	}

	cfg, err := newConfig(optFns)
	if err != nil {
		return nil, err
	}

	return newArchive(cfg, buf, false), nil
}

func newArchive(cfg *config, buf *pointer.Pointer, owned bool) *Archive {
	return &Archive{
		cfg:     cfg,
		binding: &bridge.Binding{Engine: cfg.Engine, Logger: cfg.Logger, NoWarnings: cfg.NoWarnings},
		buf:     buf,
		owned:   owned,
	}
}

// Close releases the archive's memory and that of every nested archive opened through it.
//
// Close is idempotent.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	for _, buf := range a.children {
		buf.Free()
	}
	a.children = nil

	if a.owned {
		a.buf.Free()
	}

	return nil
}

func (a *Archive) addChild(buf *pointer.Pointer) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return false
	}

	a.children = append(a.children, buf)
	return true
}

func (a *Archive) warnReplay() {
	a.warned.Do(func() {
		a.cfg.warnf("reading an entry's data after moving past it replays the archive from the start, which is slow")
	})
}

// Entries returns an iterator over the entries of the archive.
//
// Iteration stops at the first error, which is yielded with a nil Entry. Decoder sessions are released when the
// iteration ends for any reason, including breaking out of the loop.
func (a *Archive) Entries(ctx context.Context) iter.Seq2[*Entry, error] {
	return a.entries(ctx, false)
}

// LimitedEntries is a variant of Entries where loading content counts against Options.SizeLimit.
//
// The declared size of an entry is charged before its content is read, whether by Entry.Data or to look inside a
// nested archive. Nested archives share the limit of the archive they are in. Once the limit would be exceeded,
// ErrExceedSizeLimit is returned. Every iteration starts with the full limit.
func (a *Archive) LimitedEntries(ctx context.Context) iter.Seq2[*Entry, error] {
	return a.entries(ctx, true)
}

func (a *Archive) entries(ctx context.Context, limited bool) iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		s := &stream{a: a, buf: a.buf, policy: a.cfg.rootPolicy()}
		if limited {
			s.budget = newBudget(a.cfg.sizeLimit())
		}
		if err := s.run(ctx, yield); err != nil && !errors.Is(err, errStopped) {
			yield(nil, err)
		}
	}
}

// errStopped is returned by stream.run when the consumer stopped pulling.
var errStopped = errors.New("iteration stopped")

// stream walks one archive, top-level or nested.
type stream struct {
	a      *Archive
	buf    *pointer.Pointer
	child  bool
	depth  int
	policy pathPolicy
	budget *budget

	// arc is the current decoder session, offset the number of times its cursor has been advanced.
	arc    *bridge.Archive
	offset int
}

func (s *stream) open(ctx context.Context) (*bridge.Archive, error) {
	return s.a.binding.Open(ctx, s.buf, s.a.cfg.Passphrase, s.child)
}

func (s *stream) run(ctx context.Context, yield func(*Entry, error) bool) (err error) {
	if s.arc == nil {
		if err = ctx.Err(); err != nil {
			return err
		}

		if s.arc, err = s.open(ctx); err != nil {
			return err
		}
	}
	defer func() {
		_ = s.arc.Close()
	}()

	for {
		if err = ctx.Err(); err != nil {
			return err
		}

		raw, err := s.arc.NextEntry()
		if bridge.IsEndOfArchive(err) {
			return nil
		}
		if err != nil {
			return err
		}

		offset := s.offset
		s.offset++

		e := newEntry(raw)
		e.budget = s.budget
		rawPath := decodeText(raw.Pathname, s.a.cfg.encoding)
		path, ok := s.policy.apply(rawPath, e.Type)
		if !ok {
			continue
		}

		e.Path = path
		if link := raw.Symlink; link != nil {
			e.Link = decodeText(link, s.a.cfg.encoding)
		} else if link = raw.Hardlink; link != nil {
			e.Link = s.policy.hardlink(decodeText(link, s.a.cfg.encoding))
		}

		arc, size := s.arc, raw.Size
		e.fetch = func() ([]byte, error) {
			return arc.FileData(size)
		}

		if s.a.cfg.Recursive && e.Type == TypeFile && rawPath != "" && e.Link == "" {
			descended, err := s.descend(ctx, e, offset, yield)
			if err != nil {
				return err
			}
			if descended {
				continue
			}
		}

		cont := yield(e, nil)
		if !e.touched {
			e.fetch = s.replay(ctx, offset, size)
		}
		if !cont {
			return errStopped
		}
	}
}

// replay returns the function that loads the content of the entry at offset once the cursor has moved past it.
func (s *stream) replay(ctx context.Context, offset int, size int64) func() ([]byte, error) {
	ctx = context.WithoutCancel(ctx)
	a, buf, child := s.a, s.buf, s.child

	return func() ([]byte, error) {
		a.warnReplay()

		arc, err := a.binding.Open(ctx, buf, a.cfg.Passphrase, child)
		if err != nil {
			return nil, err
		}
		defer arc.Close()

		if err = skip(arc, offset); err != nil {
			return nil, err
		}

		return arc.FileData(size)
	}
}

// skip advances a freshly opened session so that its cursor is at the entry at offset.
func skip(arc *bridge.Archive, offset int) error {
	for i := 0; i <= offset; i++ {
		if _, err := arc.NextEntry(); err != nil {
			if bridge.IsEndOfArchive(err) {
				return arcerr.Newf(arcerr.ErrFileRead, arcerr.ENULL, "couldn't find entry %d inside archive", offset)
			}

			return err
		}
	}

	return nil
}

// descend tries to open the content of e as a nested archive and, if that works, yields its entries in place of e.
//
// Returns false if e is not an archive, in which case e should be yielded as is.
func (s *stream) descend(ctx context.Context, e *Entry, offset int, yield func(*Entry, error) bool) (bool, error) {
	if p, ok := s.a.cfg.Engine.(Prober); ok && e.Size > 0 {
		prefix, err := s.arc.PeekFileData(probeSize)
		if err != nil {
			return false, err
		}
		if !p.Probe(ctx, prefix) {
			return false, nil
		}
	}

	data, err := e.Data()
	if err != nil || len(data) == 0 {
		return false, err
	}

	buf, err := pointer.FromBytes(data)
	if err != nil {
		return false, err
	}

	arc, err := s.a.binding.Open(ctx, buf, s.a.cfg.Passphrase, true)
	if err != nil {
		buf.Free()
		if arcerr.Code(err) == arcerr.ErrnoFileFormat {
			return false, nil
		}

		return false, err
	}

	if s.depth+1 > MaxRecursionDepth {
		_ = arc.Close()
		buf.Free()
		return false, arcerr.Newf(arcerr.ErrExceedRecursionLimit, 0, "%s: nested archives exceed maximum depth %d", e.Path, MaxRecursionDepth)
	}

	if !s.a.addChild(buf) {
		_ = arc.Close()
		buf.Free()
		return false, arcerr.New(arcerr.ErrNull, arcerr.ENULL, "archive is closed")
	}

	// one live session at a time: the parent is closed while the child is walked, then reopened where it was.
	if err = s.arc.Close(); err != nil {
		_ = arc.Close()
		return false, err
	}

	child := &stream{
		a:      s.a,
		buf:    buf,
		child:  true,
		depth:  s.depth + 1,
		policy: s.policy.child(e.Path),
		budget: s.budget,
		arc:    arc,
	}
	if err = child.run(ctx, yield); err != nil {
		return true, err
	}

	if s.arc, err = s.open(ctx); err != nil {
		return true, err
	}

	return true, skip(s.arc, offset)
}
