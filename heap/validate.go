package heap

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/iansmith/segalloc/internal/diag"
)

// Dump renders the current segment state to w without validating it,
// for ad hoc inspection (the harness's "dump" script command).
func (h *Heap) Dump(w io.Writer) {
	blocks, _, _ := h.walkSegment()
	diag.Dump(w, diag.Snapshot{
		Variant:      h.variant.String(),
		SegmentStart: h.segmentStart,
		SegmentSize:  h.segmentSize,
		NUsed:        h.nused,
		FreeHead:     h.freeHead,
		Blocks:       blocks,
	})
}

// Validate runs two read-only consistency passes: a segment walk
// confirming every block's size tiles exactly across [segmentStart,
// segmentStart+segmentSize), and, for the explicit variant, a free-list
// integrity check (head has no prev, no used block is ever visited, no
// cycle, every free block found by the segment walk is reachable from
// freeHead). On failure it logs a diagnostic dump and falls into the
// debugger breakpoint hook.
func (h *Heap) Validate() bool {
	blocks, ok, err := h.walkSegment()
	if ok && h.variant == Explicit {
		ok, err = h.checkFreeList(blocks)
	}

	h.lastDiagnostic = err
	if !ok {
		h.dump(blocks)
		h.logf(slog.LevelError, "validate failed", "err", err)
		diag.Breakpoint()
	}
	return ok
}

func (h *Heap) walkSegment() ([]diag.Block, bool, error) {
	var blocks []diag.Block
	var total uintptr
	cur := h.segmentStart
	for steps := 0; !h.isPastEnd(cur); steps++ {
		if steps > h.maxWalkSteps {
			return blocks, false, errors.Wrap(ErrConsistencyViolation, "segment walk exceeded step budget")
		}
		size := sizeOf(cur)
		blocks = append(blocks, diag.Block{Header: cur, Used: isUsed(cur), Size: size})
		total += size + Alignment
		cur = nextHeader(cur)
	}
	if total != h.segmentSize {
		return blocks, false, errors.Wrapf(ErrConsistencyViolation, "segment tiling mismatch: blocks sum to %d, segment is %d", total, h.segmentSize)
	}
	return blocks, true, nil
}

func (h *Heap) checkFreeList(blocks []diag.Block) (bool, error) {
	if h.freeHead != noneAddr && h.prevLink(h.freeHead) != noneAddr {
		return false, errors.Wrap(ErrConsistencyViolation, "free list head has a non-none prev link")
	}

	visited := make(map[uintptr]bool, len(blocks))
	cur := h.freeHead
	for steps := 0; cur != noneAddr; steps++ {
		if steps > h.maxWalkSteps {
			return false, errors.Wrap(ErrConsistencyViolation, "free list walk exceeded step budget")
		}
		if isUsed(cur) {
			return false, errors.Wrapf(ErrConsistencyViolation, "free list visits a used block at %#x", cur)
		}
		if visited[cur] {
			return false, errors.Wrapf(ErrConsistencyViolation, "free list cycles back to %#x", cur)
		}
		visited[cur] = true
		cur = h.nextLink(cur)
	}

	for _, b := range blocks {
		if !b.Used && !visited[b.Header] {
			return false, errors.Wrapf(ErrConsistencyViolation, "free block at %#x unreachable from the free list", b.Header)
		}
	}
	return true, nil
}

func (h *Heap) dump(blocks []diag.Block) {
	var buf bytes.Buffer
	diag.Dump(&buf, diag.Snapshot{
		Variant:      h.variant.String(),
		SegmentStart: h.segmentStart,
		SegmentSize:  h.segmentSize,
		NUsed:        h.nused,
		FreeHead:     h.freeHead,
		Blocks:       blocks,
	})
	h.logf(slog.LevelError, "heap dump", "snapshot", buf.String())
}
