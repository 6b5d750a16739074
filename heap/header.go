package heap

import "unsafe"

// Alignment is the fixed word size every header, payload, and block size
// is rounded to. The header word is a single uintptr, so this package
// assumes a 64-bit platform.
const Alignment = uintptr(8)

// MaxRequestSize bounds a single Alloc/Resize request.
const MaxRequestSize = uintptr(1) << 30

const usedBit = uintptr(1)

// noneAddr is the sentinel for "no address": an absent free-list link,
// an absent prev pointer, or (at the Heap level) an uninitialized
// segment. Real segments come from segment.OSSegment's mmap, which never
// returns address zero, so zero is safe to reserve as "none".
const noneAddr = uintptr(0)

// Storing segment addresses as uintptr across calls (rather than keeping
// live unsafe.Pointer values) is safe here specifically because the
// segment is backed by an mmap'd region outside the Go runtime's heap:
// nothing the garbage collector does can move or reclaim it between
// calls, unlike an ordinary Go allocation. The Heap keeps segmentStart
// and freeHead as plain uintptr values between calls and converts them
// back to unsafe.Pointer only here, in readWord and writeWord.

func readWord(h uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(h))
}

func writeWord(h uintptr, v uintptr) {
	*(*uintptr)(unsafe.Pointer(h)) = v
}

// sizeOf returns the payload size encoded in the header at h.
func sizeOf(h uintptr) uintptr { return readWord(h) &^ usedBit }

// isUsed reports the used/free flag encoded in the header at h.
func isUsed(h uintptr) bool { return readWord(h)&usedBit != 0 }

// setUsed flips the header at h to used, leaving its size untouched.
func setUsed(h uintptr) { writeWord(h, readWord(h)|usedBit) }

// setFree flips the header at h to free, leaving its size untouched.
func setFree(h uintptr) { writeWord(h, readWord(h)&^usedBit) }

// writeSizeAndUsed writes a fresh header word. size must already be a
// multiple of Alignment.
func writeSizeAndUsed(h uintptr, size uintptr, used bool) {
	v := size
	if used {
		v |= usedBit
	}
	writeWord(h, v)
}

// payloadOf returns the payload address for the block headered at h.
func payloadOf(h uintptr) uintptr { return h + Alignment }

// headerOfPayload returns the header address for a payload pointer.
func headerOfPayload(p uintptr) uintptr { return p - Alignment }

// nextHeader returns the header of the block immediately to the right of h.
func nextHeader(h uintptr) uintptr { return h + Alignment + sizeOf(h) }

// roundUp rounds n up to the nearest multiple of m. m must be a power of two.
func roundUp(n, m uintptr) uintptr {
	return (n + m - 1) &^ (m - 1)
}

// isPastEnd reports whether addr has reached or passed the end of h's segment.
func (h *Heap) isPastEnd(addr uintptr) bool {
	return addr >= h.segmentStart+h.segmentSize
}
