package decoder

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"iter"

	"github.com/mholt/archives"
	"github.com/nguyengg/unarchive/arcerr"
	"github.com/nguyengg/unarchive/bridge"
)

// peekBufferSize is the size of the buffer wrapping the content of the current entry.
const peekBufferSize = 64 * 1024

// session is the bridge.Handle returned by Engine.Open.
//
// archives only offers a push-style walk (Extraction.Extract) so the walk is turned into a pull cursor with
// iter.Pull2. The walk's goroutine is parked inside the file handler while its entry is current, which is what
// allows the entry's content to be read between two calls to NextEntry.
type session struct {
	ctx  context.Context
	next func() (item, error, bool)
	stop func()

	// first is the prefetched first result of the walk.
	first *result
	cur   *item
	rc    io.ReadCloser
	br    *bufio.Reader
	done  bool

	errno int
	msg   string
}

type result struct {
	it  item
	err error
	ok  bool
}

// walk turns an Extract call into an iterator.
func walk(ctx context.Context, x archives.Extraction, src io.Reader) iter.Seq2[item, error] {
	return func(yield func(item, error) bool) {
		stopped := false
		err := x.Extract(ctx, src, func(ctx context.Context, fi archives.FileInfo) error {
			if !yield(fromFileInfo(fi), nil) {
				stopped = true
				return fs.SkipAll
			}

			return nil
		})
		if err != nil && !stopped {
			yield(item{}, err)
		}
	}
}

// start prefetches the first entry so that errors in the archive's header are reported by Open.
func (s *session) start(seq iter.Seq2[item, error], passphrase string) {
	s.next, s.stop = iter.Pull2(seq)

	it, err, ok := s.next()
	switch {
	case err != nil:
		s.setError(classify(err))
		s.done = true
	case ok && it.encrypted && passphrase == "":
		s.setError(arcerr.EPASS, "Archive requires password")
		s.done = true
	default:
		s.first = &result{it, err, ok}
	}
}

func (s *session) NextEntry() bridge.EntryHandle {
	s.closeCurrent()

	if s.done {
		return nil
	}

	if err := s.ctx.Err(); err != nil {
		s.setError(arcerr.ErrnoMisc, err.Error())
		s.done = true
		return nil
	}

	var r result
	if s.first != nil {
		r, s.first = *s.first, nil
	} else {
		r.it, r.err, r.ok = s.next()
	}

	switch {
	case r.err != nil:
		s.setError(classify(r.err))
		s.done = true
		return nil
	case !r.ok:
		s.done = true
		return nil
	}

	s.cur = &r.it
	return &entry{&r.it}
}

func (s *session) ReadData(p []byte) int {
	if err := s.openCurrent(); err != nil {
		s.setError(s.dataError(err))
		return int(bridge.StatusFatal)
	}

	n, err := io.ReadFull(s.br, p)
	if err == nil && s.cur.encrypted {
		// the checksum that catches a wrong ZipCrypto passphrase is only verified once the reader hits EOF.
		if _, err = s.br.Peek(1); errors.Is(err, io.EOF) {
			err = nil
		}
	}
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.setError(s.dataError(err))
		return int(bridge.StatusFatal)
	}

	return n
}

func (s *session) PeekData(n int) []byte {
	if err := s.openCurrent(); err != nil {
		s.setError(s.dataError(err))
		return nil
	}

	b, err := s.br.Peek(min(n, peekBufferSize))
	if err != nil && !errors.Is(err, io.EOF) {
		s.setError(s.dataError(err))
		return nil
	}

	return append([]byte(nil), b...)
}

func (s *session) Free() bridge.Status {
	s.closeCurrent()
	if s.stop != nil {
		s.stop()
		s.stop, s.next = nil, nil
	}
	s.done = true
	return bridge.StatusOK
}

func (s *session) Errno() int {
	return s.errno
}

func (s *session) ErrorString() string {
	return s.msg
}

func (s *session) ClearError() {
	s.errno, s.msg = 0, ""
}

func (s *session) setError(errno int, msg string) {
	s.errno, s.msg = errno, msg
}

// dataError returns the errno and message for a failure to read the content of the current entry.
//
// ZipCrypto has no reliable way to tell a wrong passphrase apart from corrupt content, so any failure on an
// encrypted entry is reported as a passphrase error unless the session was cancelled.
func (s *session) dataError(err error) (int, string) {
	errno, msg := classify(err)
	if errno != arcerr.EPASS && s.cur != nil && s.cur.encrypted && s.ctx.Err() == nil {
		return arcerr.EPASS, "Incorrect passphrase: " + msg
	}

	return errno, msg
}

func (s *session) openCurrent() error {
	if s.cur == nil {
		return arcerr.New(arcerr.ErrArchive, arcerr.ErrnoProgrammer, "no current entry")
	}
	if s.br != nil {
		return nil
	}
	if s.cur.open == nil {
		return arcerr.New(arcerr.ErrArchive, arcerr.ErrnoProgrammer, "entry has no content")
	}

	rc, err := s.cur.open()
	if err != nil {
		return err
	}

	s.rc, s.br = rc, bufio.NewReaderSize(rc, peekBufferSize)
	return nil
}

func (s *session) closeCurrent() {
	if s.rc != nil {
		_ = s.rc.Close()
	}
	s.cur, s.rc, s.br = nil, nil, nil
}
