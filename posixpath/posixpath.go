// Package posixpath implements POSIX path algebra that is independent of the host operating system.
//
// Paths inside archives always use forward slashes, so these functions never consult the filesystem or the working
// directory: the root "/" stands in for the working directory in Resolve.
package posixpath

import (
	"path"
	"strings"
)

// Sep is the path separator.
const Sep = "/"

// IsAbsolute reports whether p is absolute.
func IsAbsolute(p string) bool {
	return strings.HasPrefix(p, Sep)
}

// Normalize collapses "." and ".." elements and duplicate separators.
//
// An empty path normalizes to ".". Trailing separators are dropped. Normalize is idempotent.
func Normalize(p string) string {
	return path.Clean(p)
}

// Resolve composes the given segments from right to left until an absolute path is formed, then normalizes it.
//
// Empty segments are ignored. If no segment is absolute, the result is resolved against "/".
func Resolve(segments ...string) string {
	var resolved string
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		if s == "" {
			continue
		}

		if resolved == "" {
			resolved = s
		} else {
			resolved = s + Sep + resolved
		}

		if IsAbsolute(s) {
			break
		}
	}

	if !IsAbsolute(resolved) {
		resolved = Sep + resolved
	}

	return path.Clean(resolved)
}

// Relative returns the shortest relative path from from to to after resolving both.
//
// Returns "" if both resolve to the same path.
func Relative(from, to string) string {
	from, to = Resolve(from), Resolve(to)
	if from == to {
		return ""
	}

	fromParts, toParts := Split(from), Split(to)

	i := 0
	for n := min(len(fromParts), len(toParts)); i < n && fromParts[i] == toParts[i]; i++ {
	}

	parts := make([]string, 0, len(fromParts)-i+len(toParts)-i)
	for range fromParts[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, toParts[i:]...)

	return strings.Join(parts, Sep)
}

// Dirname returns all but the last element of p.
//
// Unlike path.Dir, trailing separators are ignored: Dirname("a/b/") is "a".
func Dirname(p string) string {
	if p == "" {
		return "."
	}

	if trimmed := strings.TrimRight(p, Sep); trimmed != "" {
		p = trimmed
	} else {
		return Sep
	}

	return path.Dir(p)
}

// Join joins the given elements and normalizes the result. Joining nothing but empty strings returns ".".
func Join(elem ...string) string {
	if p := path.Join(elem...); p != "" {
		return p
	}

	return "."
}

// Split returns the non-empty elements of p.
//
// The result of Split("/a//b/") is ["a", "b"]; Split(".") and Split("/") both return no elements.
func Split(p string) []string {
	parts := strings.Split(p, Sep)
	out := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}

	return out
}
