// Package util contains helpers for naming local files and directories.
package util

import (
	"path/filepath"
	"strings"
)

// archiveExts are the suffixes StemAndExt strips, compression suffixes first.
var archiveExts = map[string]bool{
	".zip": true, ".7z": true, ".rar": true, ".tar": true, ".cpio": true, ".iso": true,
	".tgz": true, ".tbz2": true, ".txz": true, ".tzst": true, ".tlz": true, ".tlz4": true,
	".gz": true, ".bz2": true, ".xz": true, ".zst": true, ".lz4": true, ".lz": true, ".sz": true, ".br": true,
	".mz": true,
}

// StemAndExt splits the base name of path into a stem and the archive extensions that follow it.
//
// For example, `filepath.Ext("file.tar.gz")` would return ".gz", but `StemAndExt("file.tar.gz")` returns "file" and
// ".tar.gz". Only known archive and compression suffixes are stripped, at most two of them, so "v1.2.zip" yields
// "v1.2" and "notes.txt" is returned whole.
func StemAndExt(path string) (stem, ext string) {
	stem = filepath.Base(path)

	for range 2 {
		e := filepath.Ext(stem)
		if e == stem || !archiveExts[strings.ToLower(e)] {
			break
		}

		stem, ext = stem[:len(stem)-len(e)], stem[len(stem)-len(e):]+ext
	}

	return
}
