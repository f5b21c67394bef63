package heap

import "unsafe"

// Realloc resizes a payload. A nil payload behaves as Malloc, a zero size
// as Free, a negative size or a free block is invalid input and yields nil
// without touching the block, and an unchanged
// aligned size returns the payload untouched. Targets at or above the
// mapping threshold and mapped blocks always move; small in-heap resizes
// shrink in place, grow through the arena tail or by absorbing free forward
// neighbours, and move only as a last resort.
func (a *Allocator) Realloc(payload unsafe.Pointer, size int) unsafe.Pointer {
	if payload == nil {
		return a.Malloc(size)
	}

	if size == 0 {
		a.Free(payload)

		return nil
	}

	if size < 0 {
		return nil
	}

	block := headerOf(payload)
	if block.status == statusFree {
		return nil
	}

	n := alignUp(uintptr(size))
	if n == block.size {
		return payload
	}

	if n+headerSize >= a.config.Threshold || block.status == statusMapped {
		return a.reallocMove(block, payload, size, n)
	}

	if n > block.size {
		if block.next == nil {
			// The block is the arena tail: widen it in place.
			if _, err := a.extendBreak(n - block.size); err != nil {
				return a.oom(err)
			}

			block.size = n
			block.status = statusAlloc
		} else {
			a.absorbForward(block, n)
		}

		if n > block.size {
			return a.reallocMove(block, payload, size, n)
		}
	}

	if block.size-n >= headerSize+Alignment {
		a.split(block, n)
	}

	return payload
}

// absorbForward merges free forward neighbours into block until it covers n
// payload bytes or runs out of free neighbours. The merged headers are
// dropped exactly as in the coalescing pass, but only forward from block.
func (a *Allocator) absorbForward(block *blockHeader, n uintptr) {
	for n > block.size && block.next != nil && block.next.status == statusFree {
		absorbed := block.next
		block.size += absorbed.size + headerSize
		block.next = absorbed.next

		if absorbed.next != nil {
			absorbed.next.prev = block
		}
	}
}

// reallocMove is the copy-and-free path: allocate fresh, copy the payload
// prefix that survives the resize, release the old block. On allocation
// failure the old block is left untouched.
func (a *Allocator) reallocMove(block *blockHeader, payload unsafe.Pointer, size int, n uintptr) unsafe.Pointer {
	newPayload := a.Malloc(size)
	if newPayload == nil {
		return nil
	}

	copyLen := block.size
	if n < copyLen {
		copyLen = n
	}

	memCopy(newPayload, payload, copyLen)
	a.Free(payload)

	return newPayload
}
