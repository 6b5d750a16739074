package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFree_MarksBlockFree(t *testing.T) {
	h, _ := newFixture(t, Explicit, 256)
	p := h.Alloc(16)
	require.NotNil(t, p)
	hdr := headerAddr(p)
	require.True(t, isUsed(hdr))

	h.Free(p)
	assert.False(t, isUsed(hdr))
}

func TestFree_ImplicitNeverCoalesces(t *testing.T) {
	h, _ := newFixture(t, Implicit, 256)
	a := h.Alloc(16)
	b := h.Alloc(16)
	require.NotNil(t, a)
	require.NotNil(t, b)
	aHdr := headerAddr(a)

	h.Free(a)
	h.Free(b)

	// Two adjacent free blocks must remain distinct: the implicit
	// variant has no coalescing logic at all.
	assert.EqualValues(t, 16, sizeOf(aHdr))
	bHdr := nextHeader(aHdr)
	assert.False(t, isUsed(bHdr))
	assert.EqualValues(t, 16, sizeOf(bHdr))
}

func TestFree_ExplicitNeverCoalescesLeft(t *testing.T) {
	h, _ := newFixture(t, Explicit, 256)
	a := h.Alloc(16)
	b := h.Alloc(16)
	require.NotNil(t, a)
	require.NotNil(t, b)
	aHdr := headerAddr(a)

	h.Free(a) // a's right neighbor (b) is still used; no merge possible yet
	h.Free(b) // b merges rightward into the trailing remainder, never leftward into a

	assert.EqualValues(t, 16, sizeOf(aHdr), "a must not have grown by absorbing b leftward")
	assert.False(t, isUsed(aHdr))
}

func TestFree_DecrementsNUsed(t *testing.T) {
	h, _ := newFixture(t, Explicit, 256)
	p := h.Alloc(32)
	require.NotNil(t, p)
	require.EqualValues(t, 32, h.NUsed())

	h.Free(p)
	assert.Zero(t, h.NUsed())
}
