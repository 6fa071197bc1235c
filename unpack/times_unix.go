//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package unpack

import (
	"time"

	"golang.org/x/sys/unix"
)

// lutimes is os.Chtimes that does not follow symbolic links.
func lutimes(path string, atime, mtime time.Time) error {
	if mtime.IsZero() {
		return nil
	}
	if atime.IsZero() {
		atime = mtime
	}

	return unix.Lutimes(path, []unix.Timeval{
		unix.NsecToTimeval(atime.UnixNano()),
		unix.NsecToTimeval(mtime.UnixNano()),
	})
}
