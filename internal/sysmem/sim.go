package sysmem

import "unsafe"

// SimBackend is an in-process Backend used by tests. The break region is a
// pre-allocated slab grown by bumping an offset, mappings are plain Go
// allocations, and either primitive can be made to fail on demand so OOM
// paths can be driven without terminating the test runner.
type SimBackend struct {
	slab     []byte
	brk      uintptr
	mappings map[uintptr][]byte
	pageSize uintptr

	// Fault injection. When set, the next matching call fails and the
	// flag resets.
	FailBreak bool
	FailMap   bool

	// Call accounting, read by tests.
	BreakCalls int
	BreakBytes uintptr
	MapCalls   int
	UnmapCalls int
}

// NewSimBackend creates a simulated backend with a break slab of capacity
// bytes and the given page size. Zero values select 16 MiB and 4096.
func NewSimBackend(capacity, pageSize uintptr) *SimBackend {
	if capacity == 0 {
		capacity = 16 << 20
	}

	if pageSize == 0 {
		pageSize = 4096
	}

	return &SimBackend{
		slab:     make([]byte, capacity),
		mappings: make(map[uintptr][]byte),
		pageSize: pageSize,
	}
}

// ExtendBreak bumps the slab offset by delta bytes.
func (s *SimBackend) ExtendBreak(delta uintptr) (unsafe.Pointer, error) {
	if s.FailBreak {
		s.FailBreak = false

		return nil, &BackendError{Op: "brk", Size: delta, Message: "injected break failure"}
	}

	if s.brk+delta > uintptr(len(s.slab)) {
		return nil, &BackendError{Op: "brk", Size: delta, Message: "break slab exhausted"}
	}

	ptr := unsafe.Pointer(&s.slab[s.brk])
	s.brk += delta
	s.BreakCalls++
	s.BreakBytes += delta

	return ptr, nil
}

// Map hands out a zeroed Go allocation, tracked so Unmap can verify it.
func (s *SimBackend) Map(size uintptr) (unsafe.Pointer, error) {
	if s.FailMap {
		s.FailMap = false

		return nil, &BackendError{Op: "map", Size: size, Message: "injected map failure"}
	}

	region := make([]byte, size)
	ptr := unsafe.Pointer(&region[0])
	s.mappings[uintptr(ptr)] = region
	s.MapCalls++

	return ptr, nil
}

// Unmap forgets a mapping previously returned by Map.
func (s *SimBackend) Unmap(ptr unsafe.Pointer, size uintptr) error {
	if _, ok := s.mappings[uintptr(ptr)]; !ok {
		return &BackendError{Op: "unmap", Size: size, Message: "address was not returned by Map"}
	}

	delete(s.mappings, uintptr(ptr))
	s.UnmapCalls++

	return nil
}

// PageSize reports the simulated page granularity.
func (s *SimBackend) PageSize() uintptr {
	return s.pageSize
}

// LiveMappings reports how many mappings are currently outstanding.
func (s *SimBackend) LiveMappings() int {
	return len(s.mappings)
}

// BreakUsed reports how many break bytes have been handed out.
func (s *SimBackend) BreakUsed() uintptr {
	return s.brk
}
