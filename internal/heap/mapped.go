package heap

import "unsafe"

// mapAlloc obtains an independent anonymous region for an aligned request
// of n bytes, lays a header down at its front and appends the block to the
// mapped list. Mapped blocks are never split, coalesced or reused.
func (a *Allocator) mapAlloc(n uintptr) (*blockHeader, error) {
	ptr, err := a.backend.Map(n + headerSize)
	if err != nil {
		return nil, outOfMemory(n, err)
	}

	block := headerAt(ptr)
	block.size = n
	block.status = statusMapped
	block.prev = nil
	block.next = nil

	if a.mappedList == nil {
		a.mappedList = block
	} else {
		last := lastBlock(a.mappedList)
		block.prev = last
		last.next = block
	}

	a.stats.mapped.Add(1)

	return block, nil
}

// releaseMapped unlinks a mapped block and returns its region to the OS.
// The block ceases to exist together with its mapping.
func (a *Allocator) releaseMapped(block *blockHeader) error {
	size := block.size + headerSize

	if block == a.mappedList {
		a.mappedList = block.next
		if block.next != nil {
			block.next.prev = nil
		}
	} else {
		block.prev.next = block.next
		if block.next != nil {
			block.next.prev = block.prev
		}
	}

	if err := a.backend.Unmap(unsafe.Pointer(block), size); err != nil {
		return &AllocError{
			Type:    "unmap_failed",
			Size:    block.size,
			Message: "backend could not release mapping",
			Cause:   err,
		}
	}

	a.stats.unmapped.Add(1)

	return nil
}
