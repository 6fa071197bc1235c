package decoder

import (
	"archive/tar"
	"io"
	"io/fs"
	"time"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/zip"
	"github.com/mholt/archives"
	"github.com/nwaples/rardecode/v2"
)

// File type bits of st_mode.
const (
	sIFSOCK = 0o140000
	sIFLNK  = 0o120000
	sIFREG  = 0o100000
	sIFBLK  = 0o060000
	sIFDIR  = 0o040000
	sIFCHR  = 0o020000
	sIFIFO  = 0o010000
)

// item is one entry of a walk, independent of the format it came from.
type item struct {
	name      string
	mode      fs.FileMode
	size      int64
	link      string
	hardlink  bool
	encrypted bool

	atime, ctime, mtime, btime time.Time

	open func() (io.ReadCloser, error)
}

func fromFileInfo(fi archives.FileInfo) item {
	it := item{
		name:  fi.NameInArchive,
		mode:  fi.Mode(),
		mtime: fi.ModTime(),
		link:  fi.LinkTarget,
	}

	if fi.Open != nil {
		open := fi.Open
		it.open = func() (io.ReadCloser, error) {
			return open()
		}
	}

	switch h := fi.Header.(type) {
	case *tar.Header:
		it.atime, it.ctime = h.AccessTime, h.ChangeTime
		it.hardlink = h.Typeflag == tar.TypeLink
	case zip.FileHeader:
		if !h.Modified.IsZero() {
			it.mtime = h.Modified
		}
		it.encrypted = h.Flags&0x1 != 0
	case sevenzip.FileHeader:
		it.atime, it.btime = h.Accessed, h.Created
		if !h.Modified.IsZero() {
			it.mtime = h.Modified
		}
	case *rardecode.FileHeader:
		it.atime, it.btime = h.AccessTime, h.CreationTime
		if !h.ModificationTime.IsZero() {
			it.mtime = h.ModificationTime
		}
		it.encrypted = h.Encrypted
	}

	if !it.hardlink && it.mode&fs.ModeSymlink == 0 {
		it.link = ""
	}

	if it.mode.IsRegular() && !it.hardlink {
		it.size = fi.Size()
	}

	return it
}

// stMode converts mode to st_mode bits. Hard links have no file type bits.
func stMode(mode fs.FileMode, hardlink bool) uint32 {
	m := uint32(mode.Perm())
	if mode&fs.ModeSetuid != 0 {
		m |= 0o4000
	}
	if mode&fs.ModeSetgid != 0 {
		m |= 0o2000
	}
	if mode&fs.ModeSticky != 0 {
		m |= 0o1000
	}

	if hardlink {
		return m
	}

	switch {
	case mode.IsDir():
		return m | sIFDIR
	case mode&fs.ModeSymlink != 0:
		return m | sIFLNK
	case mode&fs.ModeNamedPipe != 0:
		return m | sIFIFO
	case mode&fs.ModeSocket != 0:
		return m | sIFSOCK
	case mode&fs.ModeCharDevice != 0:
		return m | sIFCHR
	case mode&fs.ModeDevice != 0:
		return m | sIFBLK
	case mode.IsRegular():
		return m | sIFREG
	default:
		return m
	}
}

func nanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixNano()
}

// entry is the bridge.EntryHandle of an item.
type entry struct {
	it *item
}

func (e *entry) Size() int64 {
	return e.it.size
}

func (e *entry) Mode() uint32 {
	return stMode(e.it.mode, e.it.hardlink)
}

func (e *entry) Pathname() []byte {
	return []byte(e.it.name)
}

func (e *entry) Symlink() []byte {
	if e.it.hardlink || e.it.link == "" {
		return nil
	}

	return []byte(e.it.link)
}

func (e *entry) Hardlink() []byte {
	if !e.it.hardlink || e.it.link == "" {
		return nil
	}

	return []byte(e.it.link)
}

func (e *entry) Atime() int64 {
	return nanos(e.it.atime)
}

func (e *entry) Ctime() int64 {
	return nanos(e.it.ctime)
}

func (e *entry) Mtime() int64 {
	return nanos(e.it.mtime)
}

func (e *entry) Birthtime() int64 {
	return nanos(e.it.btime)
}
