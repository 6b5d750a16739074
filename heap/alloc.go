package heap

import (
	"log/slog"
	"unsafe"
)

// Alloc finds the first free block that fits requested bytes (rounded up
// to Alignment and clamped to the variant's minimum block size),
// splitting it if the remainder is worth keeping as its own block, and
// returns the payload address. It returns nil if requested is zero,
// exceeds MaxRequestSize, or no free block is large enough.
func (h *Heap) Alloc(requested uintptr) unsafe.Pointer {
	if requested == 0 || requested > MaxRequestSize {
		h.reject("alloc", requested)
		return nil
	}

	needed := roundUp(requested, Alignment)
	if h.variant == Explicit {
		needed = maxUintptr(needed, h.minBlockSize())
	}

	victim, ok := h.findFit(needed)
	if !ok {
		h.outOfMemory("alloc", requested)
		return nil
	}
	return h.commitAlloc(victim, needed)
}

func (h *Heap) findFit(needed uintptr) (uintptr, bool) {
	if h.variant == Explicit {
		return h.findFitExplicit(needed)
	}
	return h.findFitImplicit(needed)
}

func (h *Heap) findFitImplicit(needed uintptr) (uintptr, bool) {
	cur := h.segmentStart
	for steps := 0; !h.isPastEnd(cur); steps++ {
		if steps > h.maxWalkSteps {
			return 0, false
		}
		if !isUsed(cur) && sizeOf(cur) >= needed {
			return cur, true
		}
		cur = nextHeader(cur)
	}
	return 0, false
}

func (h *Heap) findFitExplicit(needed uintptr) (uintptr, bool) {
	cur := h.freeHead
	for steps := 0; cur != noneAddr; steps++ {
		if steps > h.maxWalkSteps {
			return 0, false
		}
		if sizeOf(cur) >= needed {
			return cur, true
		}
		cur = h.nextLink(cur)
	}
	return 0, false
}

// commitAlloc turns the free block at victim into a used block of size
// needed, absorbing the whole block instead of splitting when the
// remainder would be too small to host a free block of its own.
func (h *Heap) commitAlloc(victim, needed uintptr) unsafe.Pointer {
	block := sizeOf(victim)
	split := block >= needed+h.splitThreshold()
	if !split {
		needed = block
	}

	writeSizeAndUsed(victim, needed, true)
	h.nused += needed
	if h.variant == Explicit {
		h.unlink(victim)
	}

	if split {
		trailer := victim + Alignment + needed
		trailerSize := block - needed - Alignment
		writeSizeAndUsed(trailer, trailerSize, false)
		if h.variant == Explicit {
			h.insertAtHead(trailer)
		}
	}

	h.logf(slog.LevelDebug, "alloc", "header", victim, "size", needed, "split", split, "nused", h.nused)
	return unsafe.Pointer(payloadOf(victim))
}
