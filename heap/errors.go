package heap

import "github.com/pkg/errors"

// The four internal error kinds the allocator reasons about. None of
// these ever cross the public Alloc/Resize/Free/Init boundary — those
// keep the "none"/bool contract spec'd for them. They exist so the
// logger and LastDiagnostic have something concrete to report.
var (
	// ErrSegmentTooSmall means Init was handed a region shorter than one
	// header plus the variant's minimum block size.
	ErrSegmentTooSmall = errors.New("segalloc: segment too small for a minimal block")

	// ErrRequestRejected means a requested size was zero or exceeded MaxRequestSize.
	ErrRequestRejected = errors.New("segalloc: requested size is zero or exceeds MaxRequestSize")

	// ErrOutOfMemory means no free block (implicit: by scan, explicit: on
	// the free list) was large enough to satisfy a request.
	ErrOutOfMemory = errors.New("segalloc: no free block satisfies the request")

	// ErrConsistencyViolation means Validate found the segment or free
	// list in a state the five invariants forbid, including a walk that
	// exceeded its step budget.
	ErrConsistencyViolation = errors.New("segalloc: heap consistency check failed")
)
