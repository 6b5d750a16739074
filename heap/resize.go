package heap

import (
	"log/slog"
	"unsafe"
)

// Resize changes the size of the block behind oldPayload, dispatching on
// five cases:
//
//	A) oldPayload == none        -> Alloc(newSize)
//	B) newSize == 0              -> Free(oldPayload); return none
//	C) newSize fits in the block -> shrink in place, maybe splitting off a tail
//	D) a run of free right neighbors covers the gap -> grow in place
//	E) otherwise                 -> allocate, copy, free the original
func (h *Heap) Resize(oldPayload unsafe.Pointer, newSize uintptr) unsafe.Pointer {
	if oldPayload == nil {
		return h.Alloc(newSize)
	}
	if newSize == 0 {
		h.Free(oldPayload)
		return nil
	}

	addr := uintptr(oldPayload)
	hdr := headerOfPayload(addr)
	oldSize := sizeOf(hdr)

	need := roundUp(newSize, Alignment)
	if h.variant == Explicit {
		need = maxUintptr(need, h.minBlockSize())
	}

	if need <= oldSize {
		return h.shrink(hdr, oldSize, need)
	}

	if p := h.growInPlace(hdr, oldSize, need); p != nil {
		return p
	}

	// growInPlace may have absorbed some (but not enough) right
	// neighbors before giving up; hdr's recorded size reflects that.
	grown := sizeOf(hdr)
	return h.relocate(hdr, addr, grown, need, newSize)
}

// shrink is Case C: need already fits inside oldSize. A trailing free
// block is split off only if it would meet the variant's minimum size.
func (h *Heap) shrink(hdr, oldSize, need uintptr) unsafe.Pointer {
	if oldSize >= need+h.splitThreshold() {
		writeSizeAndUsed(hdr, need, true)
		trailer := hdr + Alignment + need
		trailerSize := oldSize - need - Alignment
		writeSizeAndUsed(trailer, trailerSize, false)
		if h.variant == Explicit {
			h.insertAtHead(trailer)
		}
		h.nused -= oldSize - need
		h.logf(slog.LevelDebug, "resize shrink+split", "header", hdr, "size", need, "nused", h.nused)
	}
	// Otherwise the remainder is too small to host its own free block;
	// the block keeps its old size and nused is unchanged.
	return unsafe.Pointer(payloadOf(hdr))
}

// growInPlace is Case D: absorb contiguous free right neighbors until
// the block reaches at least need bytes, then fall into shrink's logic
// inline (an explicit loop, not a reentrant call into Resize/Alloc).
// Only the explicit variant unlinks absorbed neighbors from the free
// list; the implicit variant has no free list to maintain.
// Returns nil if no absorption made progress, or if the absorbed run
// still falls short of need (in which case hdr's header has already
// been committed to the enlarged size, and the caller must fall back
// to relocation).
func (h *Heap) growInPlace(hdr, oldSize, need uintptr) unsafe.Pointer {
	accumulated := oldSize
	for accumulated < need {
		neighbor := hdr + Alignment + accumulated
		if h.isPastEnd(neighbor) || isUsed(neighbor) {
			break
		}
		if h.variant == Explicit {
			h.unlink(neighbor)
		}
		accumulated += Alignment + sizeOf(neighbor)
	}

	if accumulated == oldSize {
		return nil
	}

	writeSizeAndUsed(hdr, accumulated, true)
	h.nused += accumulated - oldSize
	h.logf(slog.LevelDebug, "resize grow", "header", hdr, "size", accumulated, "nused", h.nused)

	if accumulated < need {
		return nil
	}
	return h.shrink(hdr, accumulated, need)
}

// relocate is Case E: allocate a fresh block, copy the overlapping
// prefix, and free the original.
func (h *Heap) relocate(hdr, oldPayloadAddr, oldSize, need, newSize uintptr) unsafe.Pointer {
	p := h.Alloc(newSize)
	if p == nil {
		h.outOfMemory("resize", newSize)
		return nil
	}

	copyLen := minUintptr(oldSize, need)
	memcopy(uintptr(p), oldPayloadAddr, copyLen)
	h.Free(unsafe.Pointer(oldPayloadAddr))

	h.logf(slog.LevelDebug, "resize relocate", "from", hdr, "to", headerOfPayload(uintptr(p)), "copied", copyLen)
	return p
}

func memcopy(dst, src, n uintptr) {
	if n == 0 {
		return
	}
	dstSlice := unsafe.Slice((*byte)(unsafe.Pointer(dst)), n)
	srcSlice := unsafe.Slice((*byte)(unsafe.Pointer(src)), n)
	copy(dstSlice, srcSlice)
}
