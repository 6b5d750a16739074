package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResize_ImplicitGrowAbsorbsFreeRightNeighbor(t *testing.T) {
	h, _ := newFixture(t, Implicit, 256)
	a := h.Alloc(16)
	b := h.Alloc(16)
	require.NotNil(t, a)
	require.NotNil(t, b)
	aHdr := headerAddr(a)

	h.Free(b)
	got := h.Resize(a, 40)
	require.NotNil(t, got)
	assert.Equal(t, a, got)
	assert.EqualValues(t, 40, sizeOf(aHdr))
}

func TestResize_RelocateFailsReturnsNilAndKeepsOriginal(t *testing.T) {
	h, _ := newFixture(t, Explicit, 64)
	a := h.Alloc(16)
	require.NotNil(t, a)
	_ = h.Alloc(16) // pin the rest of the segment so growth and relocation both fail

	got := h.Resize(a, 1000)
	assert.Nil(t, got)
	assert.True(t, isUsed(headerAddr(a)), "a must remain valid and used after a failed resize")
}

func TestResize_ShrinkWithoutEnoughRoomKeepsSize(t *testing.T) {
	h, _ := newFixture(t, Explicit, 256)
	p := h.Alloc(16)
	require.NotNil(t, p)
	hdr := headerAddr(p)

	got := h.Resize(p, 15) // rounds up to 16, same as the current size: nothing to shrink
	require.NotNil(t, got)
	assert.Equal(t, p, got)
	assert.EqualValues(t, 16, sizeOf(hdr), "too-small remainder must not be split off")
}
