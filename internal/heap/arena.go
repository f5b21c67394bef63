package heap

// lastBlock walks to the final entry of a non-empty block list.
func lastBlock(head *blockHeader) *blockHeader {
	last := head
	for last.next != nil {
		last = last.next
	}

	return last
}

// heapAlloc serves an aligned request of n bytes from the break arena. The
// first request primes the arena; later ones coalesce, try best-fit and
// fall back to growing past the current tail.
func (a *Allocator) heapAlloc(n, maxChunk uintptr) (*blockHeader, error) {
	if !a.heapInitialised {
		block, err := a.preallocate(maxChunk)
		if err != nil {
			return nil, err
		}

		if canSplit(block, n) {
			a.split(block, n)
		}

		return block, nil
	}

	a.coalesce()

	if block := a.findBestFit(n); block != nil {
		if canSplit(block, n) {
			a.split(block, n)
		}

		block.status = statusAlloc

		return block, nil
	}

	return a.expand(n)
}

// preallocate primes the arena: one break extension of the full threshold,
// amortising later extensions, with the resulting block capped at maxChunk.
// The block is born allocated and becomes the heap list's only entry.
func (a *Allocator) preallocate(maxChunk uintptr) (*blockHeader, error) {
	ptr, err := a.extendBreak(a.config.Threshold)
	if err != nil {
		return nil, err
	}

	block := headerAt(ptr)
	block.size = maxChunk - headerSize
	block.status = statusAlloc
	block.prev = nil
	block.next = nil

	a.heapList = block
	a.heapInitialised = true

	return block, nil
}

// coalesce merges every run of adjacent free blocks in a single forward
// pass. The scan resumes from a just-merged block, so k consecutive free
// blocks collapse to one.
func (a *Allocator) coalesce() {
	block := a.heapList
	for block != nil && block.next != nil {
		if block.status == statusFree && block.next.status == statusFree {
			absorbed := block.next
			block.size += absorbed.size + headerSize
			block.next = absorbed.next

			if absorbed.next != nil {
				absorbed.next.prev = block
			}
		} else {
			block = block.next
		}
	}
}

// findBestFit returns the free block of smallest sufficient size, first
// encountered on ties, or nil when no free block qualifies.
func (a *Allocator) findBestFit(n uintptr) *blockHeader {
	var best *blockHeader

	for block := a.heapList; block != nil; block = block.next {
		if block.status == statusFree && block.size >= n {
			if best == nil || block.size < best.size {
				best = block
			}
		}
	}

	return best
}

// canSplit reports whether a block serving n payload bytes leaves enough
// slack for a successor header plus one aligned payload unit.
func canSplit(block *blockHeader, n uintptr) bool {
	return block.size-n > headerSize+Alignment
}

// split carves block down to n payload bytes and splices the remainder in
// as a free successor taking over the forward link.
func (a *Allocator) split(block *blockHeader, n uintptr) {
	rest := successorAt(block, n)
	rest.status = statusFree
	rest.size = block.size - n - headerSize
	rest.prev = block
	rest.next = block.next

	if block.next != nil {
		block.next.prev = rest
	}

	block.next = rest
	block.size = n
	block.status = statusAlloc
}

// expand grows the arena past its tail: a free tail is widened in place to
// n bytes, an allocated tail gets a fresh block appended after it.
func (a *Allocator) expand(n uintptr) (*blockHeader, error) {
	last := lastBlock(a.heapList)

	if last.status == statusFree {
		if _, err := a.extendBreak(n - last.size); err != nil {
			return nil, err
		}

		last.size = n
		last.status = statusAlloc

		return last, nil
	}

	ptr, err := a.extendBreak(n + headerSize)
	if err != nil {
		return nil, err
	}

	block := headerAt(ptr)
	block.size = n
	block.status = statusAlloc
	block.prev = last
	block.next = nil
	last.next = block

	return block, nil
}
