package heap

import (
	"runtime"
	"testing"
	"unsafe"
)

// newFixture backs a Heap with a plain Go byte slice instead of a real
// mmap'd segment.OSSegment region. The backing array of a heap-allocated
// slice is never moved by the Go garbage collector, so treating its
// address as a stable uintptr across calls is as safe here as it is for
// the real mmap-backed segment the production path uses.
func newFixture(t *testing.T, variant Variant, length int) (*Heap, []byte) {
	t.Helper()
	buf := make([]byte, length)
	h := NewHeap(variant)
	if !h.Init(unsafe.Pointer(&buf[0]), uintptr(length)) {
		t.Fatalf("Init failed for a %d-byte segment", length)
	}
	// The Heap holds only a uintptr, so keep buf reachable until the test
	// ends even when the caller discards the returned slice.
	t.Cleanup(func() { runtime.KeepAlive(buf) })
	return h, buf
}

func headerAddr(p unsafe.Pointer) uintptr { return headerOfPayload(uintptr(p)) }

func bufPtr(buf []byte) unsafe.Pointer { return unsafe.Pointer(&buf[0]) }

func unsafePointerOf(addr uintptr) unsafe.Pointer { return unsafe.Pointer(addr) }

func writePayload(p unsafe.Pointer, size uintptr, fill byte) {
	if size == 0 {
		return
	}
	s := unsafe.Slice((*byte)(p), size)
	for i := range s {
		s[i] = fill
	}
}

func readPayloadByte(p unsafe.Pointer, idx int) byte {
	return *(*byte)(unsafe.Pointer(uintptr(p) + uintptr(idx)))
}
