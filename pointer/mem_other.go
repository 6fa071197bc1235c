//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package pointer

// mapRegion falls back to the Go heap where anonymous mappings are not available.
func mapRegion(size int) ([]byte, error) {
	return make([]byte, max(size, 1)), nil
}

func unmapRegion([]byte) error {
	return nil
}
