package posixpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "", expected: "."},
		{path: ".", expected: "."},
		{path: "./", expected: "."},
		{path: "a/./b/../c", expected: "a/c"},
		{path: "a//b///c/", expected: "a/b/c"},
		{path: "../a/..", expected: ".."},
		{path: "/../a", expected: "/a"},
		{path: "/", expected: "/"},
		{path: "LICENSE.md", expected: "LICENSE.md"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := Normalize(tt.path)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, Normalize(got))
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		expected string
	}{
		{name: "nothing", expected: "/"},
		{name: "relative", segments: []string{"a", "b"}, expected: "/a/b"},
		{name: "absolute stops", segments: []string{"/x", "/y", "z"}, expected: "/y/z"},
		{name: "dotdot", segments: []string{"/out", "../../etc/passwd"}, expected: "/etc/passwd"},
		{name: "empty ignored", segments: []string{"/out", "", "a"}, expected: "/out/a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.segments...))
		})
	}
}

func TestRelative(t *testing.T) {
	tests := []struct {
		from, to string
		expected string
	}{
		{from: "/a/b", to: "/a/b", expected: ""},
		{from: "/a/b", to: "/a/b/c/d", expected: "c/d"},
		{from: "/a/b/c", to: "/a/d", expected: "../../d"},
		{from: "/out", to: "/etc/passwd", expected: "../etc/passwd"},
		{from: "/ab", to: "/abc", expected: "../abc"},
		{from: "/", to: "/a", expected: "a"},
		{from: "/a", to: "/", expected: ".."},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.expected, Relative(tt.from, tt.to))
		})
	}
}

func TestRelative_ResolveRoundTrip(t *testing.T) {
	for _, b := range []string{"c", "c/d", "./c/../e", "x//y/"} {
		a := "/root/dir"
		assert.Equal(t, Normalize(b), Relative(a, Resolve(a, b)), b)
	}
}

func TestDirname(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "", expected: "."},
		{path: "a", expected: "."},
		{path: "a/b", expected: "a"},
		{path: "a/b/", expected: "a"},
		{path: "/a", expected: "/"},
		{path: "///", expected: "/"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, Dirname(tt.path))
		})
	}
}

func TestJoinSplit(t *testing.T) {
	assert.Equal(t, ".", Join("", ""))
	assert.Equal(t, "a/b", Join("a", "", "b/"))
	assert.Equal(t, []string{"a", "b"}, Split("/a//./b/"))
	assert.Empty(t, Split("."))
	assert.Empty(t, Split("/"))
	assert.True(t, IsAbsolute("/a"))
	assert.False(t, IsAbsolute("a"))
}
