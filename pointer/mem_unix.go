//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package pointer

import "golang.org/x/sys/unix"

// mapRegion returns an anonymous private mapping of at least one byte so that an empty region still has an address.
func mapRegion(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, max(size, 1), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func unmapRegion(m []byte) error {
	return unix.Munmap(m)
}
