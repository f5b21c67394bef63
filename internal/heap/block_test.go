package heap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderSize(t *testing.T) {
	assert.Zero(t, headerSize%Alignment, "header size must be a multiple of the alignment unit")
	assert.GreaterOrEqual(t, headerSize, unsafe.Sizeof(blockHeader{}))
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		name string
		in   uintptr
		want uintptr
	}{
		{"zero", 0, 0},
		{"one", 1, 8},
		{"below boundary", 7, 8},
		{"on boundary", 8, 8},
		{"above boundary", 9, 16},
		{"large", 200000, 200000},
		{"large unaligned", 131069, 131072},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, alignUp(tt.in))
		})
	}
}

func TestPayloadHeaderRoundTrip(t *testing.T) {
	raw := make([]byte, headerSize+64)
	block := headerAt(unsafe.Pointer(&raw[0]))

	payload := payloadOf(block)
	require.Equal(t, uintptr(unsafe.Pointer(block))+headerSize, uintptr(payload))

	recovered := headerOf(payload)
	assert.Equal(t, block, recovered)
}

func TestSuccessorAt(t *testing.T) {
	raw := make([]byte, headerSize+128)
	block := headerAt(unsafe.Pointer(&raw[0]))

	succ := successorAt(block, 64)
	assert.Equal(t, uintptr(unsafe.Pointer(block))+headerSize+64, uintptr(unsafe.Pointer(succ)))
}

func TestMemClear(t *testing.T) {
	buf := make([]byte, 32)
	for i := range buf {
		buf[i] = 0xAA
	}

	memClear(unsafe.Pointer(&buf[0]), 16)

	for i := 0; i < 16; i++ {
		assert.Zero(t, buf[i])
	}

	for i := 16; i < 32; i++ {
		assert.Equal(t, byte(0xAA), buf[i])
	}
}

func TestMemCopy(t *testing.T) {
	src := []byte("payload contents here")
	dst := make([]byte, len(src))

	memCopy(unsafe.Pointer(&dst[0]), unsafe.Pointer(&src[0]), uintptr(len(src)))

	assert.Equal(t, src, dst)
}
