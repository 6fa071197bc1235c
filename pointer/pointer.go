// Package pointer provides Pointer, an owned region of memory that lives outside the Go heap.
//
// Regions are released explicitly with [Pointer.Free]. A cleanup is also attached to each allocation so that a Pointer
// which becomes unreachable without being freed still returns its memory, but that is a backstop and should never be
// relied upon.
//
// A Pointer is not safe for concurrent use. Independent Pointers may be used from different goroutines.
package pointer

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/nguyengg/unarchive/arcerr"
)

// Pointer is a handle to a region of foreign memory.
//
// The zero value is a NULL Pointer: it owns nothing, reports a size of zero, and every read or fill fails with
// [arcerr.ErrNull].
type Pointer struct {
	// mapping is the region as allocated, mem is the visible prefix of mapping.
	mapping []byte
	mem     []byte
	managed bool
	cleanup runtime.Cleanup
}

// Alloc allocates a new region of size bytes.
func Alloc(size int) (*Pointer, error) {
	p := &Pointer{}
	if err := p.alloc(size); err != nil {
		return nil, err
	}

	return p, nil
}

// FromBytes allocates a new region large enough to hold data and copies data into it.
func FromBytes(data []byte) (*Pointer, error) {
	p, err := Alloc(len(data))
	if err != nil {
		return nil, err
	}

	copy(p.mem, data)
	return p, nil
}

// Wrap creates a managed Pointer over memory that is owned by someone else.
//
// A managed Pointer has unknown size, cannot be read or filled, and Free only detaches it from b.
func Wrap(b []byte) *Pointer {
	if b == nil {
		return &Pointer{}
	}

	return &Pointer{mem: b, managed: true}
}

func (p *Pointer) alloc(size int) error {
	if size < 0 {
		return arcerr.Newf(arcerr.ErrNull, arcerr.ENULL, "invalid allocation size %d", size)
	}

	m, err := mapRegion(size)
	if err != nil {
		return arcerr.Wrap(arcerr.ErrNull, arcerr.ENULL, fmt.Errorf("allocate %d bytes error: %w", size, err))
	}

	p.attach(m, size)
	return nil
}

func (p *Pointer) attach(m []byte, size int) {
	p.mapping, p.mem, p.managed = m, m[:size], false
	p.cleanup = runtime.AddCleanup(p, release, m)

	live.Add(1)
	liveBytes.Add(int64(len(m)))
}

// release is used by both Free and the cleanup.
func release(m []byte) {
	live.Add(-1)
	liveBytes.Add(-int64(len(m)))
	_ = unmapRegion(m)
}

// IsNull returns true if the Pointer does not reference any memory.
func (p *Pointer) IsNull() bool {
	return p == nil || p.mem == nil
}

// IsManaged returns true if the Pointer was created with Wrap.
func (p *Pointer) IsManaged() bool {
	return p != nil && p.managed
}

// Size returns the size of the region.
//
// The boolean is false if the size is unknown, which is the case for managed Pointers.
func (p *Pointer) Size() (int, bool) {
	switch {
	case p.IsNull():
		return 0, true
	case p.managed:
		return 0, false
	default:
		return len(p.mem), true
	}
}

// Raw returns the address of the region, 0 if the Pointer is NULL or empty.
func (p *Pointer) Raw() uintptr {
	if p.IsNull() {
		return 0
	}

	if p.managed {
		return uintptr(unsafe.Pointer(unsafe.SliceData(p.mem)))
	}

	return uintptr(unsafe.Pointer(unsafe.SliceData(p.mapping)))
}

// Bytes returns a view of the region without copying.
//
// The returned slice aliases foreign memory and must not be used after Free. Use Read to get an owned copy.
func (p *Pointer) Bytes() []byte {
	if p.IsNull() {
		return nil
	}

	return p.mem
}

// Fill copies data into the region.
//
// If grow is true and data is larger than the region, the region is reallocated to fit first. Otherwise data is
// truncated to the size of the region. Returns the number of bytes copied.
func (p *Pointer) Fill(data []byte, grow bool) (int, error) {
	if err := p.checkOwned("fill"); err != nil {
		return 0, err
	}

	if grow && len(data) > len(p.mem) {
		if err := p.Realloc(len(data), true); err != nil {
			return 0, err
		}
	}

	return copy(p.mem, data), nil
}

// Read copies the first n bytes of the region into a new Go-owned slice.
func (p *Pointer) Read(n int) ([]byte, error) {
	if err := p.checkOwned("read"); err != nil {
		return nil, err
	}

	if n < 0 || n > len(p.mem) {
		return nil, arcerr.Newf(arcerr.ErrArchive, arcerr.ErrnoProgrammer, "read %d bytes out of bounds (size %d)", n, len(p.mem))
	}

	b := make([]byte, n)
	copy(b, p.mem)
	return b, nil
}

// ReadAll is equivalent to Read with the full size of the region.
func (p *Pointer) ReadAll() ([]byte, error) {
	if err := p.checkOwned("read"); err != nil {
		return nil, err
	}

	return p.Read(len(p.mem))
}

// Realloc resizes the region, preserving the overlapping prefix.
//
// If avoidShrink is true and size is less than the current size, Realloc is a no-op. Reallocating a NULL Pointer is
// the same as allocating it.
func (p *Pointer) Realloc(size int, avoidShrink bool) error {
	if p == nil {
		return arcerr.New(arcerr.ErrNull, arcerr.ENULL, "realloc on nil pointer")
	}
	if p.managed {
		return arcerr.New(arcerr.ErrArchive, arcerr.ErrnoProgrammer, "cannot realloc a managed pointer")
	}
	if p.mem == nil || size < 0 {
		if p.mem != nil {
			return arcerr.Newf(arcerr.ErrArchive, arcerr.ErrnoProgrammer, "invalid allocation size %d", size)
		}
		return p.alloc(size)
	}

	switch {
	case size == len(p.mem):
		return nil
	case size < len(p.mem) && avoidShrink:
		return nil
	case size <= len(p.mapping):
		// fits in the current mapping; zero the regrown tail.
		if size > len(p.mem) {
			clear(p.mapping[len(p.mem):size])
		}
		p.mem = p.mapping[:size]
		return nil
	}

	m, err := mapRegion(size)
	if err != nil {
		return arcerr.Wrap(arcerr.ErrNull, arcerr.ENULL, fmt.Errorf("reallocate %d bytes error: %w", size, err))
	}
	copy(m, p.mem)

	p.Free()
	p.attach(m, size)
	return nil
}

// Free releases the region and resets the Pointer to NULL.
//
// Free is idempotent. Freeing a managed Pointer only detaches it.
func (p *Pointer) Free() {
	if p.IsNull() {
		return
	}

	if !p.managed {
		p.cleanup.Stop()
		release(p.mapping)
	}

	p.mapping, p.mem, p.managed, p.cleanup = nil, nil, false, runtime.Cleanup{}
}

func (p *Pointer) String() string {
	switch size, ok := p.Size(); {
	case p.IsNull():
		return "Pointer(NULL)"
	case !ok:
		return fmt.Sprintf("Pointer(%#x, managed)", p.Raw())
	default:
		return fmt.Sprintf("Pointer(%#x, %d)", p.Raw(), size)
	}
}

func (p *Pointer) checkOwned(op string) error {
	if p.IsNull() {
		return arcerr.Newf(arcerr.ErrNull, arcerr.ENULL, "%s on NULL pointer", op)
	}
	if p.managed {
		return arcerr.Newf(arcerr.ErrArchive, arcerr.ErrnoProgrammer, "%s on managed pointer", op)
	}

	return nil
}

var (
	live      atomic.Int64
	liveBytes atomic.Int64
)

// HeapStats describes the process-wide foreign heap.
type HeapStats struct {
	// Live is the number of allocated regions that have not been released.
	Live int64
	// Bytes is the total size of those regions.
	Bytes int64
}

// Stats returns the current HeapStats.
func Stats() HeapStats {
	return HeapStats{Live: live.Load(), Bytes: liveBytes.Load()}
}
