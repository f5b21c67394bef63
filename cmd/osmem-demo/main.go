package main

import (
	"fmt"
	"os"
	"unsafe"

	osmem "github.com/osmemlabs/osmem-go"
)

func main() {
	if err := osmem.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise allocator: %v\n", err)
		os.Exit(1)
	}
	defer osmem.Cleanup()

	// A small allocation served from the break arena.
	p := osmem.Malloc(100)
	buf := unsafe.Slice((*byte)(p), 100)
	copy(buf, "served from the break arena")

	// Grow it in place or by moving, contents preserved either way.
	p = osmem.Realloc(p, 240)
	fmt.Printf("realloc(100 -> 240): %q\n", unsafe.Slice((*byte)(p), 27))

	// A zeroed page-sized-or-larger array goes straight to a mapping.
	q := osmem.Calloc(1, 200000)
	fmt.Printf("calloc(1, 200000) zeroed: %t\n", isZero(unsafe.Slice((*byte)(q), 200000)))

	osmem.Free(p)
	osmem.Free(q)

	stats := osmem.GetStats()
	fmt.Printf("allocations=%d frees=%d breakExtensions=%d mappedLive=%d\n",
		stats.AllocationCount, stats.FreeCount, stats.BreakExtensions, stats.MappedLive)
}

func isZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}

	return true
}
