//go:build unix

package sysmem

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSBackendBreakGrowsContiguously(t *testing.T) {
	backend, err := NewOSBackend(1 << 20)
	require.NoError(t, err)
	defer backend.Close()

	first, err := backend.ExtendBreak(100)
	require.NoError(t, err)

	// Committed break memory is writable.
	buf := unsafe.Slice((*byte)(first), 100)
	for i := range buf {
		buf[i] = 0xCC
	}

	second, err := backend.ExtendBreak(64)
	require.NoError(t, err)

	assert.Equal(t, uintptr(first)+100, uintptr(second))
	assert.Equal(t, byte(0xCC), buf[99])
}

func TestOSBackendBreakReservationExhaustion(t *testing.T) {
	backend, err := NewOSBackend(1 << 16)
	require.NoError(t, err)
	defer backend.Close()

	_, err = backend.ExtendBreak(1 << 17)
	require.Error(t, err)

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "brk", backendErr.Op)
}

func TestOSBackendMapLifecycle(t *testing.T) {
	backend, err := NewOSBackend(1 << 16)
	require.NoError(t, err)
	defer backend.Close()

	ptr, err := backend.Map(200000)
	require.NoError(t, err)

	buf := unsafe.Slice((*byte)(ptr), 200000)
	for _, b := range buf {
		require.Zero(t, b)
	}

	buf[0] = 0xAB
	require.NoError(t, backend.Unmap(ptr, 200000))

	err = backend.Unmap(ptr, 200000)
	assert.Error(t, err)
}
