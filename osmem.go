// Package osmem exposes the classic four heap operations — Malloc, Calloc,
// Realloc and Free — over a process-wide allocator built on two raw OS
// primitives: a contiguous growable break region and anonymous page
// mappings. The policy engine lives in internal/heap; this package binds it
// to the platform backend as a singleton.
//
// The allocator is single-threaded and non-reentrant by contract. Callers
// serialise operations.
package osmem

import (
	"fmt"
	"unsafe"

	"github.com/osmemlabs/osmem-go/internal/heap"
	"github.com/osmemlabs/osmem-go/internal/sysmem"
)

// Stats is a snapshot of the allocator counters.
type Stats = heap.Stats

// Option configures the process-wide allocator at Initialize time.
type Option = heap.Option

// Re-exported construction options.
var (
	WithThreshold    = heap.WithThreshold
	WithPropagateOOM = heap.WithPropagateOOM
	WithFatalHandler = heap.WithFatalHandler
)

var global *heap.Allocator

// Initialize builds the process-wide allocator with explicit options. Any
// operation called first initialises it with defaults instead.
func Initialize(opts ...Option) error {
	backend, err := sysmem.NewOSBackend(0)
	if err != nil {
		return fmt.Errorf("osmem: initialising backend: %w", err)
	}

	global = heap.New(backend, opts...)

	return nil
}

// Single-threaded by contract, so lazy initialisation needs no locking.
func allocator() *heap.Allocator {
	if global == nil {
		if err := Initialize(); err != nil {
			panic(err)
		}
	}

	return global
}

// Malloc allocates size bytes and returns the payload pointer, or nil when
// size is not positive.
func Malloc(size int) unsafe.Pointer {
	return allocator().Malloc(size)
}

// Calloc allocates a zeroed array of nmemb elements of size bytes each, or
// returns nil when either operand is not positive.
func Calloc(nmemb, size int) unsafe.Pointer {
	return allocator().Calloc(nmemb, size)
}

// Realloc resizes a payload previously returned by Malloc, Calloc or
// Realloc. Realloc(nil, n) behaves as Malloc(n); Realloc(p, 0) frees p and
// returns nil.
func Realloc(payload unsafe.Pointer, size int) unsafe.Pointer {
	return allocator().Realloc(payload, size)
}

// Free releases a payload. Free of nil is a no-op.
func Free(payload unsafe.Pointer) {
	allocator().Free(payload)
}

// GetStats returns a snapshot of the allocator counters.
func GetStats() Stats {
	return allocator().Stats()
}

// Cleanup returns every live mapping to the OS, for use at process exit.
func Cleanup() error {
	return allocator().Cleanup()
}
