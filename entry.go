package unarchive

import (
	"io/fs"
	"time"

	"github.com/nguyengg/unarchive/arcerr"
	"github.com/nguyengg/unarchive/bridge"
)

// EntryType is the file type of an entry, using the same values as the file type bits of st_mode.
type EntryType uint32

const (
	// TypeNone is used for hard links, which carry no file type of their own, and for unknown types.
	TypeNone        EntryType = 0
	TypeNamedPipe   EntryType = 0o010000
	TypeCharDevice  EntryType = 0o020000
	TypeDir         EntryType = 0o040000
	TypeBlockDevice EntryType = 0o060000
	TypeFile        EntryType = 0o100000
	TypeSymlink     EntryType = 0o120000
	TypeSocket      EntryType = 0o140000

	typeMask = 0o170000
)

func entryType(mode uint32) EntryType {
	switch t := EntryType(mode & typeMask); t {
	case TypeNamedPipe, TypeCharDevice, TypeDir, TypeBlockDevice, TypeFile, TypeSymlink, TypeSocket:
		return t
	default:
		return TypeNone
	}
}

func (t EntryType) String() string {
	switch t {
	case TypeNamedPipe:
		return "NAMED_PIPE"
	case TypeCharDevice:
		return "CHARACTER_DEVICE"
	case TypeDir:
		return "DIR"
	case TypeBlockDevice:
		return "BLOCK_DEVICE"
	case TypeFile:
		return "FILE"
	case TypeSymlink:
		return "SYMBOLIC_LINK"
	case TypeSocket:
		return "SOCKET"
	default:
		return ""
	}
}

// Entry is one item in an archive.
type Entry struct {
	// Size is the declared size of the content.
	Size uint64
	// Perm contains the permission bits as well as fs.ModeSetuid, fs.ModeSetgid and fs.ModeSticky.
	Perm fs.FileMode
	// Path is the processed path, empty if the entry has no path.
	Path string
	Type EntryType
	// Link is the target of a symbolic or hard link, empty otherwise. The target of a symbolic link is kept as is, that
	// of a hard link names another entry and goes through the same path processing as Path.
	Link string

	AccessTime time.Time
	ChangeTime time.Time
	ModTime    time.Time
	BirthTime  time.Time

	data    []byte
	touched bool
	fetch   func() ([]byte, error)
	budget  *budget
}

// Data returns the content of the entry.
//
// The content is read at most once and cached. If the iterator that produced the entry has already moved past it, the
// archive is replayed from the start to reach the entry again, which is slow; a warning is logged the first time that
// happens for an Archive. Entries from Archive.LimitedEntries fail with ErrExceedSizeLimit instead of loading content
// past the limit.
func (e *Entry) Data() ([]byte, error) {
	if e.touched {
		return e.data, nil
	}
	if e.fetch == nil {
		return nil, arcerr.New(arcerr.ErrFileRead, arcerr.ErrnoProgrammer, "entry has no content")
	}
	if err := e.budget.charge(e); err != nil {
		return nil, err
	}
	e.budget = nil

	data, err := e.fetch()
	if err != nil {
		return nil, err
	}

	e.data, e.touched, e.fetch = data, true, nil
	return data, nil
}

// Touched returns true if the content has been loaded.
func (e *Entry) Touched() bool {
	return e.touched
}

// IsHardlink returns true if the entry is a hard link to Link.
func (e *Entry) IsHardlink() bool {
	return e.Type == TypeNone && e.Link != ""
}

// Mode returns Perm combined with the fs.FileMode type bits of Type.
func (e *Entry) Mode() fs.FileMode {
	switch e.Type {
	case TypeDir:
		return e.Perm | fs.ModeDir
	case TypeSymlink:
		return e.Perm | fs.ModeSymlink
	case TypeNamedPipe:
		return e.Perm | fs.ModeNamedPipe
	case TypeSocket:
		return e.Perm | fs.ModeSocket
	case TypeCharDevice:
		return e.Perm | fs.ModeDevice | fs.ModeCharDevice
	case TypeBlockDevice:
		return e.Perm | fs.ModeDevice
	default:
		return e.Perm
	}
}

func permFromMode(mode uint32) fs.FileMode {
	perm := fs.FileMode(mode & 0o777)
	if mode&0o4000 != 0 {
		perm |= fs.ModeSetuid
	}
	if mode&0o2000 != 0 {
		perm |= fs.ModeSetgid
	}
	if mode&0o1000 != 0 {
		perm |= fs.ModeSticky
	}

	return perm
}

func timeFromNanos(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}

	return time.Unix(0, ns)
}

// newEntry creates an Entry from the metadata of the decoder's current entry. Path and Link are left for the caller.
func newEntry(raw *bridge.Entry) *Entry {
	return &Entry{
		Size:       uint64(max(raw.Size, 0)),
		Perm:       permFromMode(raw.Mode),
		Type:       entryType(raw.Mode),
		AccessTime: timeFromNanos(raw.Atime),
		ChangeTime: timeFromNanos(raw.Ctime),
		ModTime:    timeFromNanos(raw.Mtime),
		BirthTime:  timeFromNanos(raw.Birthtime),
	}
}
