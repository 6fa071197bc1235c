package unarchive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathPolicy_Apply(t *testing.T) {
	tests := []struct {
		name     string
		policy   pathPolicy
		path     string
		typ      EntryType
		expected string
		ok       bool
	}{
		{name: "normalize", policy: pathPolicy{normalize: true}, path: "a//b/../c/", typ: TypeDir, expected: "a/c", ok: true},
		{name: "absolute is kept", policy: pathPolicy{normalize: true}, path: "/etc/passwd", typ: TypeFile, expected: "/etc/passwd", ok: true},
		{name: "raw", policy: pathPolicy{}, path: "a//b", typ: TypeFile, expected: "a//b", ok: true},
		{name: "empty", policy: pathPolicy{normalize: true}, path: "", typ: TypeFile, expected: "", ok: true},
		{name: "dot dir", policy: pathPolicy{normalize: true}, path: "./", typ: TypeDir, ok: false},
		{name: "dot dir kept", policy: pathPolicy{normalize: true, keepDot: true}, path: "./", typ: TypeDir, expected: ".", ok: true},
		{name: "dot file", policy: pathPolicy{normalize: true}, path: ".", typ: TypeFile, expected: ".", ok: true},
		{name: "strip", policy: pathPolicy{normalize: true, strip: 2}, path: "a/b/c/d", typ: TypeFile, expected: "c/d", ok: true},
		{name: "strip all", policy: pathPolicy{normalize: true, strip: 2}, path: "a/b", typ: TypeDir, ok: false},
		{name: "base dir", policy: pathPolicy{normalize: true, baseDir: "out"}, path: "a/b", typ: TypeFile, expected: "out/a/b", ok: true},
		{name: "base dir raw", policy: pathPolicy{baseDir: "out/"}, path: "./a", typ: TypeFile, expected: "out/./a", ok: true},
		{name: "base dir absolute", policy: pathPolicy{normalize: true, baseDir: "out"}, path: "/a", typ: TypeFile, expected: "/a", ok: true},
		{name: "include", policy: pathPolicy{normalize: true, include: []string{"**/*.go"}}, path: "x/y.go", typ: TypeFile, expected: "x/y.go", ok: true},
		{name: "not included", policy: pathPolicy{normalize: true, include: []string{"**/*.go"}}, path: "x/y.md", typ: TypeFile, ok: false},
		{name: "excluded", policy: pathPolicy{normalize: true, exclude: []string{"x/**"}}, path: "x/y.go", typ: TypeFile, ok: false},
		{name: "patterns see normalized path before strip", policy: pathPolicy{normalize: true, strip: 1, include: []string{"x/*"}}, path: "./x/y", typ: TypeFile, expected: "y", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.policy.apply(tt.path, tt.typ)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPathPolicy_Child(t *testing.T) {
	parent := pathPolicy{
		baseDir:   "out",
		normalize: true,
		keepDot:   true,
		strip:     1,
		include:   []string{"*.zip"},
		exclude:   []string{"*.txt"},
	}

	assert.Equal(t, pathPolicy{baseDir: "out/docs", normalize: true, keepDot: true}, parent.child("out/docs/a.zip"))
	assert.Equal(t, pathPolicy{normalize: true, keepDot: true}, parent.child("a.zip"))
}

func TestPathPolicy_Hardlink(t *testing.T) {
	tests := []struct {
		name     string
		policy   pathPolicy
		target   string
		expected string
	}{
		{name: "normalize", policy: pathPolicy{normalize: true}, target: "./dir/a.txt", expected: "dir/a.txt"},
		{name: "strip", policy: pathPolicy{normalize: true, strip: 1}, target: "dir/a.txt", expected: "a.txt"},
		{name: "stripped away", policy: pathPolicy{normalize: true, strip: 1}, target: "a.txt", expected: ""},
		{name: "base dir", policy: pathPolicy{normalize: true, baseDir: "docs"}, target: "a.txt", expected: "docs/a.txt"},
		{name: "patterns do not apply", policy: pathPolicy{normalize: true, exclude: []string{"**"}}, target: "a.txt", expected: "a.txt"},
		{name: "empty", policy: pathPolicy{normalize: true, baseDir: "docs"}, target: "", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.policy.hardlink(tt.target))
		})
	}
}
