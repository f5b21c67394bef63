package heap

import (
	"unsafe"

	"github.com/osmemlabs/osmem-go/internal/sysmem"
)

// Allocator owns the allocator's process-wide state: the heap list carved
// from the break region, the mapped-region list and the initialisation flag.
// It is single-threaded and non-reentrant; callers serialise operations.
type Allocator struct {
	backend sysmem.Backend
	config  *Config

	heapList        *blockHeader
	mappedList      *blockHeader
	heapInitialised bool

	stats counters
}

// New creates an allocator on top of the given backend.
func New(backend sysmem.Backend, opts ...Option) *Allocator {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &Allocator{
		backend: backend,
		config:  config,
	}
}

// allocPolicy is the per-entry-point routing policy. Requests of threshold
// bytes or more (header included) are served by a fresh mapping; smaller
// ones come from the break arena, whose first block is capped at maxChunk
// when the arena is primed.
type allocPolicy struct {
	threshold uintptr
	maxChunk  uintptr
}

func (a *Allocator) mallocPolicy() allocPolicy {
	return allocPolicy{threshold: a.config.Threshold, maxChunk: a.config.Threshold}
}

// callocPolicy routes page-sized-or-larger requests straight to the mapping
// backend: mapped pages arrive zeroed, so the clear is free there.
func (a *Allocator) callocPolicy() allocPolicy {
	pageSize := a.backend.PageSize()

	return allocPolicy{threshold: pageSize, maxChunk: pageSize}
}

// allocate routes an aligned request to the arena or the mapping backend.
func (a *Allocator) allocate(n uintptr, policy allocPolicy) (*blockHeader, error) {
	if n+headerSize >= policy.threshold {
		return a.mapAlloc(n)
	}

	return a.heapAlloc(n, policy.maxChunk)
}

// Malloc allocates size bytes and returns the payload pointer, or nil when
// size is not positive.
func (a *Allocator) Malloc(size int) unsafe.Pointer {
	if size <= 0 {
		return nil
	}

	n := alignUp(uintptr(size))

	block, err := a.allocate(n, a.mallocPolicy())
	if err != nil {
		return a.oom(err)
	}

	a.stats.allocations.Add(1)
	a.stats.bytesAllocated.Add(uint64(n))

	return payloadOf(block)
}

// Calloc allocates an array of nmemb elements of size bytes each, zeroed,
// and returns the payload pointer, or nil when either operand is not
// positive.
func (a *Allocator) Calloc(nmemb, size int) unsafe.Pointer {
	if nmemb <= 0 || size <= 0 {
		return nil
	}

	total := uintptr(nmemb) * uintptr(size)
	n := alignUp(total)

	block, err := a.allocate(n, a.callocPolicy())
	if err != nil {
		return a.oom(err)
	}

	payload := payloadOf(block)

	// Mapped regions arrive zeroed by the OS; reused heap blocks do not.
	// Only the requested bytes are cleared, not the alignment padding.
	if block.status != statusMapped {
		memClear(payload, total)
	}

	a.stats.allocations.Add(1)
	a.stats.bytesAllocated.Add(uint64(n))

	return payload
}

// Free releases a payload previously returned by Malloc, Calloc or Realloc.
// Heap blocks flip to free and wait for the next allocation's coalesce and
// best-fit pass; mapped blocks are unlinked and their region returned to the
// OS. Free of nil is a no-op.
func (a *Allocator) Free(payload unsafe.Pointer) {
	if payload == nil {
		return
	}

	block := headerOf(payload)

	switch block.status {
	case statusAlloc:
		block.status = statusFree
		a.stats.frees.Add(1)
	case statusMapped:
		if err := a.releaseMapped(block); err != nil {
			if !a.config.PropagateOOM {
				a.config.FatalHandler(err)
			}

			return
		}

		a.stats.frees.Add(1)
	default:
		// Already free: a double free. Undefined by contract, deliberately
		// not detected.
	}
}

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats {
	return a.stats.snapshot()
}

// Cleanup returns every live mapping to the OS. The break region stays with
// the process; only mapped blocks hold releasable resources.
func (a *Allocator) Cleanup() error {
	var firstErr error

	for a.mappedList != nil {
		if err := a.releaseMapped(a.mappedList); err != nil {
			if firstErr == nil {
				firstErr = err
			}

			break
		}
	}

	return firstErr
}

// oom resolves a backend failure per configuration: nil payload when
// propagation is on, otherwise the fatal handler.
func (a *Allocator) oom(err error) unsafe.Pointer {
	if a.config.PropagateOOM {
		return nil
	}

	a.config.FatalHandler(err)

	return nil
}

// extendBreak grows the break region, keeping the extension counters.
func (a *Allocator) extendBreak(delta uintptr) (unsafe.Pointer, error) {
	ptr, err := a.backend.ExtendBreak(delta)
	if err != nil {
		return nil, outOfMemory(delta, err)
	}

	a.stats.breakExtensions.Add(1)
	a.stats.breakBytes.Add(uint64(delta))

	return ptr, nil
}
