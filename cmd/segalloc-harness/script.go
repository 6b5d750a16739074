package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unsafe"

	"github.com/iansmith/segalloc/heap"
)

// runner executes a line-oriented allocation script against a Heap.
// Grammar, one command per line, '#' starts a comment:
//
//	alloc <tag> <size>     allocate <size> bytes, remember the payload as <tag>
//	resize <tag> <size>    resize <tag>'s block to <size> bytes
//	free <tag>             free <tag>'s block
//	validate               run Validate, reporting pass/fail
//	dump                   print the current segment state
type runner struct {
	h      *heap.Heap
	out    io.Writer
	tags   map[string]unsafe.Pointer
	lineNo int
}

func newRunner(h *heap.Heap, out io.Writer) *runner {
	return &runner{h: h, out: out, tags: make(map[string]unsafe.Pointer)}
}

func (r *runner) execute(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		r.lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := r.dispatch(strings.Fields(line)); err != nil {
			return fmt.Errorf("line %d: %w", r.lineNo, err)
		}
	}
	return scanner.Err()
}

func (r *runner) dispatch(fields []string) error {
	switch fields[0] {
	case "alloc":
		return r.doAlloc(fields[1:])
	case "resize":
		return r.doResize(fields[1:])
	case "free":
		return r.doFree(fields[1:])
	case "validate":
		return r.doValidate(fields[1:])
	case "dump":
		return r.doDump(fields[1:])
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func (r *runner) doAlloc(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("alloc requires <tag> <size>")
	}
	size, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("alloc size: %w", err)
	}
	p := r.h.Alloc(uintptr(size))
	if p == nil {
		fmt.Fprintf(r.out, "alloc %s %d -> none\n", args[0], size)
		return nil
	}
	r.tags[args[0]] = p
	fmt.Fprintf(r.out, "alloc %s %d -> %p\n", args[0], size, p)
	return nil
}

func (r *runner) doResize(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("resize requires <tag> <size>")
	}
	size, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("resize size: %w", err)
	}
	old := r.tags[args[0]]
	p := r.h.Resize(old, uintptr(size))
	if p == nil {
		delete(r.tags, args[0])
		fmt.Fprintf(r.out, "resize %s %d -> none\n", args[0], size)
		return nil
	}
	r.tags[args[0]] = p
	fmt.Fprintf(r.out, "resize %s %d -> %p\n", args[0], size, p)
	return nil
}

func (r *runner) doFree(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("free requires <tag>")
	}
	r.h.Free(r.tags[args[0]])
	delete(r.tags, args[0])
	fmt.Fprintf(r.out, "free %s\n", args[0])
	return nil
}

func (r *runner) doValidate(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("validate takes no arguments")
	}
	ok := r.h.Validate()
	fmt.Fprintf(r.out, "validate -> %v\n", ok)
	if !ok {
		fmt.Fprintf(r.out, "  %v\n", r.h.LastDiagnostic())
	}
	return nil
}

func (r *runner) doDump(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("dump takes no arguments")
	}
	r.h.Dump(r.out)
	return nil
}
