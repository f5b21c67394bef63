//go:build unix

package sysmem

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultBreakReservation is the address-space reservation backing the break
// region. Reserved pages are PROT_NONE and cost nothing until committed.
const DefaultBreakReservation = 1 << 30

// OSBackend implements Backend on top of anonymous mappings. The break
// region is a single contiguous reservation whose front is committed on
// demand with mprotect; raw brk(2) is not usable under the Go runtime, but
// the contract is the same: one region, growing upward, stable addresses.
type OSBackend struct {
	reserve   []byte
	committed uintptr
	brk       uintptr
	mappings  map[uintptr][]byte
	pageSize  uintptr
}

// NewOSBackend reserves reservation bytes of address space for the break
// region. A reservation of 0 selects DefaultBreakReservation.
func NewOSBackend(reservation uintptr) (*OSBackend, error) {
	if reservation == 0 {
		reservation = DefaultBreakReservation
	}

	reserve, err := unix.Mmap(-1, 0, int(reservation), unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, &BackendError{
			Op:      "reserve",
			Size:    reservation,
			Message: "cannot reserve break region",
			Cause:   err,
		}
	}

	return &OSBackend{
		reserve:  reserve,
		mappings: make(map[uintptr][]byte),
		pageSize: uintptr(unix.Getpagesize()),
	}, nil
}

// ExtendBreak grows the break region by delta bytes, committing whole pages
// as the break crosses them.
func (o *OSBackend) ExtendBreak(delta uintptr) (unsafe.Pointer, error) {
	if o.brk+delta > uintptr(len(o.reserve)) {
		return nil, &BackendError{
			Op:      "brk",
			Size:    delta,
			Message: "break reservation exhausted",
		}
	}

	newBrk := o.brk + delta
	if newBrk > o.committed {
		commit := o.pageCeil(newBrk)
		if err := unix.Mprotect(o.reserve[o.committed:commit], unix.PROT_READ|unix.PROT_WRITE); err != nil {
			return nil, &BackendError{
				Op:      "brk",
				Size:    delta,
				Message: "cannot commit break pages",
				Cause:   err,
			}
		}

		o.committed = commit
	}

	ptr := unsafe.Pointer(&o.reserve[o.brk])
	o.brk = newBrk

	return ptr, nil
}

// Map obtains a fresh anonymous readable-writable mapping of size bytes.
func (o *OSBackend) Map(size uintptr) (unsafe.Pointer, error) {
	region, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, &BackendError{
			Op:      "map",
			Size:    size,
			Message: "anonymous mapping failed",
			Cause:   err,
		}
	}

	ptr := unsafe.Pointer(&region[0])
	o.mappings[uintptr(ptr)] = region

	return ptr, nil
}

// Unmap releases a mapping previously returned by Map.
func (o *OSBackend) Unmap(ptr unsafe.Pointer, size uintptr) error {
	region, ok := o.mappings[uintptr(ptr)]
	if !ok {
		return &BackendError{
			Op:      "unmap",
			Size:    size,
			Message: "address was not returned by Map",
		}
	}

	delete(o.mappings, uintptr(ptr))

	if err := unix.Munmap(region); err != nil {
		return &BackendError{
			Op:      "unmap",
			Size:    size,
			Message: "munmap failed",
			Cause:   err,
		}
	}

	return nil
}

// PageSize reports the OS page granularity.
func (o *OSBackend) PageSize() uintptr {
	return o.pageSize
}

// Close releases the break reservation and any mappings still live.
func (o *OSBackend) Close() error {
	var firstErr error

	for addr, region := range o.mappings {
		delete(o.mappings, addr)

		if err := unix.Munmap(region); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if o.reserve != nil {
		if err := unix.Munmap(o.reserve); err != nil && firstErr == nil {
			firstErr = err
		}

		o.reserve = nil
	}

	return firstErr
}

func (o *OSBackend) pageCeil(n uintptr) uintptr {
	return (n + o.pageSize - 1) &^ (o.pageSize - 1)
}
