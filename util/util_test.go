package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateRightWithSuffix(t *testing.T) {
	tests := []struct {
		text   string
		n      int
		suffix string
		want   string
	}{
		{text: "hello", n: 10, suffix: "...", want: "hello"},
		{text: "hello", n: 5, suffix: "...", want: "hello"},
		{text: "hello, world", n: 5, suffix: "...", want: "hello..."},
		{text: "说明说明", n: 2, suffix: "…", want: "说明…"},
		{text: "hello", n: 0, suffix: "...", want: "..."},
		{text: "hello", n: 2, want: "he"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateRightWithSuffix(tt.text, tt.n, tt.suffix))
		})
	}

	assert.Equal(t, "he", TruncateRight("hello", 2))
}

func TestStemAndExt(t *testing.T) {
	tests := []struct {
		path, stem, ext string
	}{
		{path: "archive.tar.gz", stem: "archive", ext: ".tar.gz"},
		{path: "path/to/archive.zip", stem: "archive", ext: ".zip"},
		{path: "archive", stem: "archive", ext: ""},
		{path: "my.archive.tar.zst", stem: "my.archive", ext: ".tar.zst"},
		{path: "release-v1.2.3.TGZ", stem: "release-v1.2.3", ext: ".TGZ"},
		{path: "notes.txt", stem: "notes.txt", ext: ""},
		{path: "a.zip.gz.xz", stem: "a.zip", ext: ".gz.xz"},
		{path: ".zip", stem: ".zip", ext: ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			stem, ext := StemAndExt(tt.path)
			assert.Equal(t, tt.stem, stem)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

func TestMkExclDir(t *testing.T) {
	parent := t.TempDir()

	name, err := MkExclDir(parent, "out", 0755)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "out"), name)

	name, err = MkExclDir(parent, "out", 0755)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "out-1"), name)

	fi, err := os.Stat(name)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	for _, stem := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err = MkExclDir(parent, stem, 0755)
		assert.Errorf(t, err, "stem %q", stem)
	}
}
