package internal

import "strings"

// RootDirFinder computes the top-level directory that is ancestor to every entry of an archive.
//
// Archive paths always use `/`. Given these three entries:
//
//	test/
//	test/a.txt
//	test/path/b.txt
//
// The root directory is `test`. There is no root if any file is at top level or if two entries disagree on their first
// path element.
type RootDirFinder struct {
	root   string
	noRoot bool
}

// Add adds an entry's path, returning false as soon as there can be no common root so the search may stop.
//
// dir must be true if the entry is a directory: a top-level directory may itself be the root.
func (f *RootDirFinder) Add(path string, dir bool) bool {
	if f.noRoot {
		return false
	}

	first, _, nested := strings.Cut(strings.TrimPrefix(path, "./"), "/")
	switch {
	case first == "" || first == "." || first == "..":
		f.noRoot = true
	case !nested && !dir:
		f.noRoot = true
	case f.root == "":
		f.root = first
	case f.root != first:
		f.noRoot = true
	}

	return !f.noRoot
}

// Root returns the common root directory, empty if there is none.
func (f *RootDirFinder) Root() string {
	if f.noRoot {
		return ""
	}

	return f.root
}
