// Command segalloc-harness drives a heap.Heap through a scripted
// allocation trace, reserving its backing segment via an OS mmap rather
// than linking the allocator into a larger program.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/gobuffalo/envy"

	"github.com/iansmith/segalloc/heap"
	"github.com/iansmith/segalloc/segment"
)

func main() {
	scriptPath := flag.String("script", "", "path to an allocation script (default: read stdin)")
	segmentSize := flag.Uint64("segment-size", 0, "segment size in bytes (default: $SEGALLOC_SEGMENT_SIZE or 1<<32)")
	variantFlag := flag.String("variant", "explicit", "free-list variant: explicit or implicit")
	trace := flag.Bool("trace", false, "log every heap operation at debug level")
	flag.Parse()

	size := *segmentSize
	if size == 0 {
		size = resolveSegmentSize()
	}

	var logLevel slog.Level = slog.LevelInfo
	if *trace {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	variant := heap.Explicit
	if *variantFlag == "implicit" {
		variant = heap.Implicit
	}

	seg := segment.New()
	base, ok := seg.InitSegment(uintptr(size))
	if !ok {
		fmt.Fprintln(os.Stderr, "segalloc-harness: failed to reserve segment")
		os.Exit(1)
	}

	h := heap.NewHeap(variant, heap.WithLogger(logger))
	if !h.Init(base, seg.Size()) {
		fmt.Fprintln(os.Stderr, "segalloc-harness: init rejected the reserved segment")
		os.Exit(1)
	}

	in := os.Stdin
	if *scriptPath != "" {
		f, err := os.Open(*scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "segalloc-harness: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	run := newRunner(h, os.Stdout)
	if err := run.execute(in); err != nil {
		fmt.Fprintf(os.Stderr, "segalloc-harness: %v\n", err)
		os.Exit(1)
	}
}

// resolveSegmentSize falls back to a 2^32-byte default segment — an
// anonymous mapping that large costs address space, not committed
// memory, until touched.
func resolveSegmentSize() uint64 {
	const defaultSize = uint64(1) << 32
	raw := envy.Get("SEGALLOC_SEGMENT_SIZE", "")
	if raw == "" {
		return defaultSize
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return defaultSize
	}
	return n
}
