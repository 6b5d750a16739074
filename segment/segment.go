// Package segment reserves a single page-aligned, anonymous region of
// real memory for a heap.Heap to manage, the way a client program would
// rather than the allocator core carving its segment out of thin air.
package segment

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var errNoActiveRegion = errors.New("segment: no active region (call InitSegment first)")

const pageSize = 4096

// OSSegment owns at most one mmap'd region at a time.
type OSSegment struct {
	region []byte
}

// New returns a segment helper with no active region.
func New() *OSSegment {
	return &OSSegment{}
}

// InitSegment reserves a fresh anonymous region of at least totalBytes,
// rounded up to a whole number of pages, releasing any region this
// OSSegment previously held. It returns the region's base address, or
// nil and false if the reservation failed.
func (s *OSSegment) InitSegment(totalBytes uintptr) (unsafe.Pointer, bool) {
	if s.region != nil {
		_ = unix.Munmap(s.region)
		s.region = nil
	}

	length := roundUpToPage(totalBytes)
	region, err := unix.Mmap(-1, 0, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, false
	}

	s.region = region
	return unsafe.Pointer(&s.region[0]), true
}

// Start returns the base address of the active region, or nil and false
// if none has been reserved.
func (s *OSSegment) Start() (unsafe.Pointer, bool) {
	if s.region == nil {
		return nil, false
	}
	return unsafe.Pointer(&s.region[0]), true
}

// Size returns the byte length of the active region (the page-rounded
// reservation size, not the caller's original request).
func (s *OSSegment) Size() uintptr {
	return uintptr(len(s.region))
}

// Release returns the active region to the OS. Provided so a
// long-running harness process (or a test) can clean up between
// segments.
func (s *OSSegment) Release() error {
	if s.region == nil {
		return errNoActiveRegion
	}
	err := unix.Munmap(s.region)
	s.region = nil
	return err
}

func roundUpToPage(n uintptr) uintptr {
	return (n + pageSize - 1) &^ (pageSize - 1)
}
