// Package heap implements a single-threaded, single-segment user-space
// heap allocator over a caller-supplied region of memory, in two
// variants: an implicit free list found by scanning block headers, and
// an explicit free list threaded through free block payloads.
package heap

import (
	"context"
	"log/slog"
	"unsafe"

	"github.com/pkg/errors"
)

// Variant selects which free-block bookkeeping strategy a Heap uses.
type Variant int

const (
	// Implicit finds free blocks by linearly scanning every header in
	// the segment. No coalescing is ever performed on free.
	Implicit Variant = iota
	// Explicit threads a doubly linked free list through free block
	// payloads and coalesces rightward (never leftward) on free.
	Explicit
)

func (v Variant) String() string {
	switch v {
	case Explicit:
		return "explicit"
	default:
		return "implicit"
	}
}

// Heap is a single allocator instance bound to a single segment. It is
// not safe for concurrent use: all bookkeeping fields are touched without
// synchronization, so callers needing concurrency must serialize access
// themselves.
type Heap struct {
	variant Variant

	segmentStart uintptr
	segmentSize  uintptr
	nused        uintptr
	freeHead     uintptr // explicit variant only; noneAddr otherwise

	maxWalkSteps int

	logger         *slog.Logger
	lastDiagnostic error
}

// Option configures a Heap at construction time.
type Option func(*Heap)

// WithLogger attaches a structured logger. A nil logger (the default)
// makes every heap operation silent.
func WithLogger(l *slog.Logger) Option {
	return func(h *Heap) { h.logger = l }
}

// NewHeap constructs an uninitialized Heap of the given variant. Init
// must be called before Alloc/Resize/Free/Validate do anything useful.
func NewHeap(variant Variant, opts ...Option) *Heap {
	h := &Heap{variant: variant, freeHead: noneAddr}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Variant reports which free-list strategy this Heap uses.
func (h *Heap) Variant() Variant { return h.variant }

// NUsed reports the diagnostic-only running total of bytes committed to
// live allocations. It is never consulted by alloc/free/resize logic
// itself.
func (h *Heap) NUsed() uintptr { return h.nused }

// LastDiagnostic returns the wrapped error behind the most recent
// rejection, out-of-memory, or consistency failure, or nil.
func (h *Heap) LastDiagnostic() error { return h.lastDiagnostic }

func (h *Heap) minBlockSize() uintptr {
	if h.variant == Explicit {
		return 2 * Alignment
	}
	return Alignment
}

func (h *Heap) splitThreshold() uintptr {
	if h.variant == Explicit {
		return 3 * Alignment
	}
	return 2 * Alignment
}

// Init carves a single free block spanning [base, base+length) and
// resets all bookkeeping. It returns false, leaving the segment state
// untouched and recording ErrSegmentTooSmall in LastDiagnostic, if length
// is too small to host a header plus a single minimal block for this
// variant.
func (h *Heap) Init(base unsafe.Pointer, length uintptr) bool {
	var minLen uintptr
	if h.variant == Explicit {
		minLen = 3 * Alignment
	} else {
		minLen = 2 * Alignment
	}
	if length < minLen {
		h.lastDiagnostic = errors.Wrapf(ErrSegmentTooSmall, "length=%d minimum=%d", length, minLen)
		h.logf(slog.LevelError, "init rejected", "length", length, "minimum", minLen)
		return false
	}

	h.segmentStart = uintptr(base)
	h.segmentSize = length
	h.nused = 0
	h.freeHead = noneAddr
	h.lastDiagnostic = nil
	// Generous but finite: more steps than the segment could ever hold
	// blocks, used only to turn a corrupted-list infinite loop into a
	// diagnosed failure.
	h.maxWalkSteps = int(length/Alignment) + 16

	writeSizeAndUsed(h.segmentStart, length-Alignment, false)
	if h.variant == Explicit {
		h.freeHead = h.segmentStart
		h.setPrevLink(h.segmentStart, noneAddr)
		h.setNextLink(h.segmentStart, noneAddr)
	}

	h.logf(slog.LevelInfo, "init", "variant", h.variant.String(), "segment_start", h.segmentStart, "segment_size", h.segmentSize)
	return true
}

func (h *Heap) logf(level slog.Level, msg string, args ...any) {
	if h.logger == nil {
		return
	}
	h.logger.Log(context.Background(), level, msg, args...)
}

func (h *Heap) reject(op string, requested uintptr) {
	h.lastDiagnostic = errors.Wrapf(ErrRequestRejected, "%s(%d)", op, requested)
	h.logf(slog.LevelWarn, "request rejected", "op", op, "requested", requested)
}

func (h *Heap) outOfMemory(op string, requested uintptr) {
	h.lastDiagnostic = errors.Wrapf(ErrOutOfMemory, "%s(%d)", op, requested)
	h.logf(slog.LevelWarn, "out of memory", "op", op, "requested", requested, "nused", h.nused)
}

// defaultHeap backs the package-level convenience wrappers below, so
// simple callers don't need to construct and thread through their own
// Heap.
var defaultHeap = NewHeap(Explicit)

// Default returns the package-level Heap instance.
func Default() *Heap { return defaultHeap }

// SetVariant replaces the default instance with a fresh Heap of the
// given variant, discarding any prior state.
func SetVariant(v Variant, opts ...Option) { defaultHeap = NewHeap(v, opts...) }

// Init delegates to the default Heap. See (*Heap).Init.
func Init(base unsafe.Pointer, length uintptr) bool { return defaultHeap.Init(base, length) }

// Alloc delegates to the default Heap. See (*Heap).Alloc.
func Alloc(requested uintptr) unsafe.Pointer { return defaultHeap.Alloc(requested) }

// Resize delegates to the default Heap. See (*Heap).Resize.
func Resize(oldPayload unsafe.Pointer, newSize uintptr) unsafe.Pointer {
	return defaultHeap.Resize(oldPayload, newSize)
}

// Free delegates to the default Heap. See (*Heap).Free.
func Free(payload unsafe.Pointer) { defaultHeap.Free(payload) }

// Validate delegates to the default Heap. See (*Heap).Validate.
func Validate() bool { return defaultHeap.Validate() }
