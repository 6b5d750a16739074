package heap

// The explicit variant threads a doubly linked free list through the
// payload bytes of free blocks themselves: the first aligned word holds
// the previous link, the second holds the next link. Both are addresses
// of other block headers, or noneAddr.

func (h *Heap) prevLink(addr uintptr) uintptr {
	return readWord(payloadOf(addr))
}

func (h *Heap) nextLink(addr uintptr) uintptr {
	return readWord(payloadOf(addr) + Alignment)
}

func (h *Heap) setPrevLink(addr, v uintptr) {
	writeWord(payloadOf(addr), v)
}

func (h *Heap) setNextLink(addr, v uintptr) {
	writeWord(payloadOf(addr)+Alignment, v)
}

// insertAtHead splices a free block onto the front of the free list (LIFO).
func (h *Heap) insertAtHead(addr uintptr) {
	h.setPrevLink(addr, noneAddr)
	h.setNextLink(addr, h.freeHead)
	if h.freeHead != noneAddr {
		h.setPrevLink(h.freeHead, addr)
	}
	h.freeHead = addr
}

// unlink removes a free block from the free list, wherever it sits.
func (h *Heap) unlink(addr uintptr) {
	prev := h.prevLink(addr)
	next := h.nextLink(addr)
	if prev == noneAddr {
		h.freeHead = next
	} else {
		h.setNextLink(prev, next)
	}
	if next != noneAddr {
		h.setPrevLink(next, prev)
	}
}
