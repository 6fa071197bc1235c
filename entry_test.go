package unarchive

import (
	"io/fs"
	"testing"

	"github.com/nguyengg/unarchive/bridge"
	"github.com/stretchr/testify/assert"
)

func TestNewEntry(t *testing.T) {
	tests := []struct {
		name     string
		mode     uint32
		typ      EntryType
		perm     fs.FileMode
		fileMode fs.FileMode
	}{
		{name: "file", mode: 0o100644, typ: TypeFile, perm: 0o644, fileMode: 0o644},
		{name: "setuid file", mode: 0o104755, typ: TypeFile, perm: 0o755 | fs.ModeSetuid, fileMode: 0o755 | fs.ModeSetuid},
		{name: "sticky dir", mode: 0o041777, typ: TypeDir, perm: 0o777 | fs.ModeSticky, fileMode: 0o777 | fs.ModeSticky | fs.ModeDir},
		{name: "symlink", mode: 0o120777, typ: TypeSymlink, perm: 0o777, fileMode: 0o777 | fs.ModeSymlink},
		{name: "hardlink", mode: 0o644, typ: TypeNone, perm: 0o644, fileMode: 0o644},
		{name: "char device", mode: 0o020600, typ: TypeCharDevice, perm: 0o600, fileMode: 0o600 | fs.ModeDevice | fs.ModeCharDevice},
		{name: "unknown type", mode: 0o170644, typ: TypeNone, perm: 0o644, fileMode: 0o644},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEntry(&bridge.Entry{Size: -1, Mode: tt.mode, Mtime: 1_500_000_000_000_000_000})
			assert.Equal(t, tt.typ, e.Type)
			assert.Equal(t, tt.perm, e.Perm)
			assert.Equal(t, tt.fileMode, e.Mode())
			assert.Zero(t, e.Size)
			assert.Equal(t, int64(1_500_000_000), e.ModTime.Unix())
			assert.True(t, e.AccessTime.IsZero())
		})
	}
}

func TestEntryType_String(t *testing.T) {
	tests := map[EntryType]string{
		TypeNone:        "",
		TypeNamedPipe:   "NAMED_PIPE",
		TypeCharDevice:  "CHARACTER_DEVICE",
		TypeDir:         "DIR",
		TypeBlockDevice: "BLOCK_DEVICE",
		TypeFile:        "FILE",
		TypeSymlink:     "SYMBOLIC_LINK",
		TypeSocket:      "SOCKET",
	}
	for typ, expected := range tests {
		assert.Equal(t, expected, typ.String())
	}
}

func TestEntry_Data(t *testing.T) {
	calls := 0
	e := &Entry{fetch: func() ([]byte, error) {
		calls++
		return []byte("content"), nil
	}}

	assert.False(t, e.Touched())
	for range 2 {
		b, err := e.Data()
		assert.NoError(t, err)
		assert.Equal(t, "content", string(b))
	}
	assert.Equal(t, 1, calls)
	assert.True(t, e.Touched())

	_, err := (&Entry{}).Data()
	assert.ErrorIs(t, err, ErrFileRead)
}
