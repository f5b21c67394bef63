package heap

import "sync/atomic"

// Stats is a snapshot of allocator counters.
type Stats struct {
	AllocationCount uint64
	FreeCount       uint64
	BytesAllocated  uint64
	BreakExtensions uint64
	BreakBytes      uint64
	MappedCount     uint64
	UnmappedCount   uint64
	MappedLive      uint64
}

// counters are updated on every public operation. The allocator itself is
// single-threaded; atomics only make Stats safe to read from an observer.
type counters struct {
	allocations     atomic.Uint64
	frees           atomic.Uint64
	bytesAllocated  atomic.Uint64
	breakExtensions atomic.Uint64
	breakBytes      atomic.Uint64
	mapped          atomic.Uint64
	unmapped        atomic.Uint64
}

func (c *counters) snapshot() Stats {
	mapped := c.mapped.Load()
	unmapped := c.unmapped.Load()

	return Stats{
		AllocationCount: c.allocations.Load(),
		FreeCount:       c.frees.Load(),
		BytesAllocated:  c.bytesAllocated.Load(),
		BreakExtensions: c.breakExtensions.Load(),
		BreakBytes:      c.breakBytes.Load(),
		MappedCount:     mapped,
		UnmappedCount:   unmapped,
		MappedLive:      mapped - unmapped,
	}
}
