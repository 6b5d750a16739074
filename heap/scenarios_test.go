package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These exercise a handful of representative end-to-end traces, all with
// a segment length of 256 bytes on the explicit variant.

func TestScenario1_FreshHeapFill(t *testing.T) {
	h, _ := newFixture(t, Explicit, 256)

	a := h.Alloc(16)
	b := h.Alloc(16)
	c := h.Alloc(16)
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotNil(t, c)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, c)
	assert.NotEqual(t, a, c)

	assert.EqualValues(t, 48, h.NUsed())
	assert.EqualValues(t, 176, sizeOf(h.freeHead))
	assert.True(t, h.Validate())
}

func TestScenario2_FreeAndCoalesce(t *testing.T) {
	h, _ := newFixture(t, Explicit, 256)
	a := h.Alloc(16)
	b := h.Alloc(16)
	c := h.Alloc(16)
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotNil(t, c)

	// Coalescing is right-only, so whichever of b/c is freed last is the
	// one whose rightward walk sweeps up everything already freed to its
	// right. Freeing c (absorbing the 176-byte remainder) before b
	// (absorbing the now-200-byte run starting at c) is what collapses
	// the three-way gap into a single reachable block.
	h.Free(c)
	h.Free(b)

	require.Equal(t, headerAddr(b), h.freeHead)
	assert.EqualValues(t, 224, sizeOf(h.freeHead))
	assert.Equal(t, noneAddr, h.nextLink(h.freeHead))
	assert.True(t, h.Validate())
}

func TestScenario3_ShrinkWithSplit(t *testing.T) {
	h, _ := newFixture(t, Explicit, 256)
	a := h.Alloc(64)
	require.NotNil(t, a)
	aHdr := headerAddr(a)

	got := h.Resize(a, 16)
	require.NotNil(t, got)
	assert.Equal(t, a, got, "shrink must not move the payload")

	assert.EqualValues(t, 16, sizeOf(aHdr))
	assert.True(t, isUsed(aHdr))

	trailer := nextHeader(aHdr)
	assert.EqualValues(t, 40, sizeOf(trailer))
	assert.False(t, isUsed(trailer))
	assert.True(t, h.Validate())
}

func TestScenario4_GrowViaRightCoalesce(t *testing.T) {
	h, _ := newFixture(t, Explicit, 256)
	a := h.Alloc(16)
	b := h.Alloc(16)
	require.NotNil(t, a)
	require.NotNil(t, b)
	aHdr := headerAddr(a)

	h.Free(b)

	got := h.Resize(a, 40)
	require.NotNil(t, got)
	assert.Equal(t, a, got, "in-place grow must not move the payload")

	assert.EqualValues(t, 40, sizeOf(aHdr))
	assert.True(t, isUsed(aHdr))

	trailer := nextHeader(aHdr)
	assert.EqualValues(t, 200, sizeOf(trailer))
	assert.False(t, isUsed(trailer))
	assert.True(t, h.isPastEnd(nextHeader(trailer)))
	assert.True(t, h.Validate())
}

func TestScenario5_GrowFallsBackToRelocate(t *testing.T) {
	h, _ := newFixture(t, Explicit, 256)
	a := h.Alloc(16)
	b := h.Alloc(16)
	require.NotNil(t, a)
	require.NotNil(t, b)

	aBytes := (*[16]byte)(a)
	for i := range aBytes {
		aBytes[i] = byte(i + 1)
	}

	got := h.Resize(a, 40)
	require.NotNil(t, got)
	assert.NotEqual(t, a, got, "b is still live, so a cannot grow in place")

	gotBytes := (*[16]byte)(got)
	assert.Equal(t, *aBytes, *gotBytes, "relocation must preserve the overlapping prefix")
	assert.True(t, h.Validate())
}

func TestScenario6_RejectionPaths(t *testing.T) {
	h, _ := newFixture(t, Explicit, 256)

	assert.Nil(t, h.Alloc(0))
	assert.Nil(t, h.Alloc(MaxRequestSize+1))
	h.Free(nil) // no-op, must not panic
	assert.True(t, h.Validate())
}
