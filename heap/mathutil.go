package heap

import "github.com/cznic/mathutil"

// Block sizes live comfortably inside an int64 (MaxRequestSize is 2^30),
// so clamping goes through mathutil the way cznic-exp/lldb's falloc.go
// clamps its own file-offset arithmetic, rather than hand-rolling a
// uintptr min/max pair.

func maxUintptr(a, b uintptr) uintptr {
	return uintptr(mathutil.MaxInt64(int64(a), int64(b)))
}

func minUintptr(a, b uintptr) uintptr {
	return uintptr(mathutil.MinInt64(int64(a), int64(b)))
}
