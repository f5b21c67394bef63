// Package heap implements the allocator's policy and bookkeeping engine:
// the block metadata model, size-class routing between the break region and
// anonymous mappings, free-list management (best-fit search, splitting,
// coalescing, in-place expansion) and the realloc state machine. Raw memory
// comes from a sysmem.Backend; this package owns everything above it.
package heap

import (
	"fmt"
	"unsafe"
)

// Alignment is the byte granularity for headers and payload sizes.
const Alignment = 8

// blockStatus tracks which list a block belongs to and whether it is in use.
type blockStatus uint32

const (
	// statusFree marks a reusable block in the heap list.
	statusFree blockStatus = iota
	// statusAlloc marks an in-use block in the heap list.
	statusAlloc
	// statusMapped marks a block that owns its own OS mapping.
	statusMapped
)

func (s blockStatus) String() string {
	switch s {
	case statusFree:
		return "free"
	case statusAlloc:
		return "alloc"
	case statusMapped:
		return "mapped"
	default:
		return "invalid"
	}
}

// blockHeader is the fixed-size metadata record stored immediately before
// every payload. size counts payload bytes only and is always a multiple of
// Alignment. The links tie the block into the heap list or the mapped list.
type blockHeader struct {
	size   uintptr
	status blockStatus
	prev   *blockHeader
	next   *blockHeader
}

// headerSize is the on-memory size of a header rounded up to Alignment;
// payloads start exactly headerSize bytes after their header.
const headerSize = (unsafe.Sizeof(blockHeader{}) + Alignment - 1) &^ (Alignment - 1)

func (b *blockHeader) String() string {
	return fmt.Sprintf("block{addr: %#x, size: %d, status: %s}",
		uintptr(unsafe.Pointer(b)), b.size, b.status)
}

// alignUp rounds n up to the nearest multiple of Alignment.
func alignUp(n uintptr) uintptr {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// headerAt treats the memory at ptr as a block header.
func headerAt(ptr unsafe.Pointer) *blockHeader {
	return (*blockHeader)(ptr)
}

// payloadOf returns the payload pointer for a header.
func payloadOf(b *blockHeader) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(b), headerSize)
}

// headerOf recovers the header from a payload pointer.
func headerOf(payload unsafe.Pointer) *blockHeader {
	return (*blockHeader)(unsafe.Add(payload, -int(headerSize)))
}

// successorAt returns the position of the would-be successor header when a
// block is split at payload size n.
func successorAt(b *blockHeader, n uintptr) *blockHeader {
	return (*blockHeader)(unsafe.Add(unsafe.Pointer(b), headerSize+n))
}

// memClear zeroes n bytes starting at ptr.
func memClear(ptr unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}

	clear(unsafe.Slice((*byte)(ptr), n))
}

// memCopy copies n bytes from src to dst. The regions never overlap: every
// caller copies between an existing block and a freshly obtained one.
func memCopy(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}

	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}
