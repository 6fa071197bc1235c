package unpack

import (
	"archive/tar"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/nguyengg/unarchive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mtime = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func tarOf(t *testing.T, headers ...*tar.Header) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := tar.NewWriter(&buf)
	for _, h := range headers {
		data := []byte(h.Uname)
		h.Uname = ""
		if h.Typeflag == tar.TypeReg {
			h.Size = int64(len(data))
		}
		if h.ModTime.IsZero() {
			h.ModTime = mtime
		}

		require.NoError(t, w.WriteHeader(h))
		if h.Size != 0 {
			_, err := w.Write(data)
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

// layout is a small tree. The content of regular files is passed in Uname.
func layout(t *testing.T) []byte {
	return tarOf(t,
		&tar.Header{Name: "a/", Typeflag: tar.TypeDir, Mode: 0750},
		&tar.Header{Name: "a/b.txt", Typeflag: tar.TypeReg, Mode: 0640, Uname: "hello, world\n"},
		&tar.Header{Name: "a/link", Typeflag: tar.TypeSymlink, Mode: 0777, Linkname: "b.txt"},
		&tar.Header{Name: "a/hard", Typeflag: tar.TypeLink, Mode: 0640, Linkname: "a/b.txt"},
		&tar.Header{Name: "c/d/e.txt", Typeflag: tar.TypeReg, Mode: 0600, Uname: "nested\n"},
		&tar.Header{Name: "pipe", Typeflag: tar.TypeFifo, Mode: 0644},
		&tar.Header{Name: "../evil.txt", Typeflag: tar.TypeReg, Mode: 0644, Uname: "evil\n"},
		&tar.Header{Name: "/abs.txt", Typeflag: tar.TypeReg, Mode: 0644, Uname: "abs\n"},
	)
}

func quiet(opts *Options) {
	opts.NoWarnings = true
}

func TestToDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symbolic links need privileges on windows")
	}

	dir := filepath.Join(t.TempDir(), "out")

	res, err := ToDir(t.Context(), layout(t), dir, quiet)
	require.NoError(t, err)
	assert.Equal(t, Result{Dirs: 1, Files: 2, Symlinks: 1, Hardlinks: 1, Skipped: 3, Bytes: 20}, res)

	data, err := os.ReadFile(filepath.Join(dir, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello, world\n", string(data))

	fi, err := os.Stat(filepath.Join(dir, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0640), fi.Mode().Perm())
	assert.True(t, mtime.Equal(fi.ModTime()))

	data, err = os.ReadFile(filepath.Join(dir, "c", "d", "e.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested\n", string(data))

	fi, err = os.Stat(filepath.Join(dir, "a"))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	assert.Equal(t, fs.FileMode(0750), fi.Mode().Perm())
	assert.True(t, mtime.Equal(fi.ModTime()))

	link, err := os.Readlink(filepath.Join(dir, "a", "link"))
	require.NoError(t, err)
	assert.Equal(t, "b.txt", link)

	hard, err := os.Stat(filepath.Join(dir, "a", "hard"))
	require.NoError(t, err)
	orig, err := os.Stat(filepath.Join(dir, "a", "b.txt"))
	require.NoError(t, err)
	assert.True(t, os.SameFile(orig, hard))

	for _, name := range []string{"pipe", "evil.txt", "abs.txt"} {
		_, err = os.Lstat(filepath.Join(dir, name))
		assert.ErrorIs(t, err, fs.ErrNotExist, name)
	}
	_, err = os.Lstat(filepath.Join(filepath.Dir(dir), "evil.txt"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestToDir_Overwrite(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symbolic links need privileges on windows")
	}

	dir := t.TempDir()

	_, err := ToDir(t.Context(), layout(t), dir, quiet)
	require.NoError(t, err)

	_, err = ToDir(t.Context(), layout(t), dir, quiet)
	assert.ErrorIs(t, err, fs.ErrExist)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "b.txt"), []byte("changed"), 0600))
	res, err := ToDir(t.Context(), layout(t), dir, quiet, func(opts *Options) {
		opts.Overwrite = true
		opts.Concurrency = 1
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Files)

	data, err := os.ReadFile(filepath.Join(dir, "a", "hard"))
	require.NoError(t, err)
	assert.Equal(t, "hello, world\n", string(data))
}

func TestToDir_Options(t *testing.T) {
	dir := t.TempDir()

	res, err := ToDir(t.Context(), layout(t), dir, quiet, func(opts *Options) {
		opts.StripComponents = 1
		opts.Include = []string{"c/**/*.txt"}
	})
	require.NoError(t, err)
	assert.Equal(t, Result{Files: 1, Bytes: 7}, res)

	data, err := os.ReadFile(filepath.Join(dir, "d", "e.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested\n", string(data))
}

func TestToDir_NotADirectory(t *testing.T) {
	name := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(name, nil, 0644))

	_, err := ToDir(t.Context(), layout(t), name, quiet)
	assert.Error(t, err)
}

func TestToDir_NotAnArchive(t *testing.T) {
	_, err := ToDir(t.Context(), []byte("hello, world"), t.TempDir(), quiet)
	assert.Error(t, err)
}

func TestToDir_HardlinkModeAndTimes(t *testing.T) {
	linkTime := time.Date(2024, 6, 7, 8, 9, 10, 0, time.UTC)
	data := tarOf(t,
		&tar.Header{Name: "f.txt", Typeflag: tar.TypeReg, Mode: 0600, Uname: "content\n"},
		&tar.Header{Name: "g.txt", Typeflag: tar.TypeLink, Mode: 0644, Linkname: "f.txt", ModTime: linkTime},
	)
	dir := t.TempDir()

	res, err := ToDir(t.Context(), data, dir, quiet)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Hardlinks)

	fi, err := os.Stat(filepath.Join(dir, "g.txt"))
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, fs.FileMode(0644), fi.Mode().Perm())
	}
	assert.True(t, linkTime.Equal(fi.ModTime()), "got %v", fi.ModTime())

	b, err := os.ReadFile(filepath.Join(dir, "g.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content\n", string(b))
}

func TestToDir_SizeLimit(t *testing.T) {
	data := tarOf(t,
		&tar.Header{Name: "small.txt", Typeflag: tar.TypeReg, Mode: 0644, Uname: "tiny\n"},
		&tar.Header{Name: "big.txt", Typeflag: tar.TypeReg, Mode: 0644, Uname: string(bytes.Repeat([]byte("x"), 4096))},
	)

	tests := []struct {
		name      string
		sizeLimit int64
		wantErr   error
		wantFiles int
	}{
		{name: "over limit", sizeLimit: 1024, wantErr: unarchive.ErrExceedSizeLimit},
		{name: "exactly at limit", sizeLimit: 4096 + 5, wantFiles: 2},
		{name: "unlimited", sizeLimit: unarchive.Unlimited, wantFiles: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ToDir(t.Context(), data, t.TempDir(), quiet, func(opts *Options) {
				opts.SizeLimit = tt.sizeLimit
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantFiles, res.Files)
		})
	}
}
