package heap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osmemlabs/osmem-go/internal/sysmem"
)

// newTestAllocator builds an allocator over a simulated backend with OOM
// propagation on, so fault-injection tests get nil instead of a dead test
// runner.
func newTestAllocator(tb testing.TB, opts ...Option) (*Allocator, *sysmem.SimBackend) {
	tb.Helper()

	backend := sysmem.NewSimBackend(4<<20, 4096)
	opts = append([]Option{WithPropagateOOM(true)}, opts...)

	return New(backend, opts...), backend
}

// checkIntact asserts the structural invariants hold, as they must at every
// public-operation boundary.
func checkIntact(tb testing.TB, a *Allocator) {
	tb.Helper()
	require.NoError(tb, a.CheckIntegrity())
}

// heapBlocks snapshots the heap list as (size, status) pairs in list order.
func heapBlocks(a *Allocator) []blockHeader {
	var blocks []blockHeader
	for block := a.heapList; block != nil; block = block.next {
		blocks = append(blocks, blockHeader{size: block.size, status: block.status})
	}

	return blocks
}

// mappedCount walks the mapped list.
func mappedCount(a *Allocator) int {
	count := 0
	for block := a.mappedList; block != nil; block = block.next {
		count++
	}

	return count
}
