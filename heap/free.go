package heap

import (
	"log/slog"
	"unsafe"
)

// Free marks the block behind payload free. A nil payload ("none") is a
// no-op. On the explicit variant the freed block is pushed onto the
// free list head and then merged with every contiguous free block to
// its right. Coalescing never looks left: the block to the left has no
// footer to read its size from, so reaching it would mean scanning from
// the start of the segment on every free.
func (h *Heap) Free(payload unsafe.Pointer) {
	if payload == nil {
		return
	}

	hdr := headerOfPayload(uintptr(payload))
	freed := sizeOf(hdr)
	h.nused -= freed
	setFree(hdr)

	if h.variant == Explicit {
		h.insertAtHead(hdr)
		h.coalesceRight(hdr)
	}

	h.logf(slog.LevelDebug, "free", "header", hdr, "size", freed, "nused", h.nused)
}

// coalesceRight absorbs every free block immediately to the right of hdr
// into hdr, one header rewrite per absorbed neighbor.
func (h *Heap) coalesceRight(hdr uintptr) {
	next := nextHeader(hdr)
	for !h.isPastEnd(next) && !isUsed(next) {
		h.unlink(next)
		merged := sizeOf(hdr) + Alignment + sizeOf(next)
		writeSizeAndUsed(hdr, merged, false)
		next = nextHeader(hdr)
	}
}
