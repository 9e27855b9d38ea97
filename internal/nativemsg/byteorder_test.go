package nativemsg

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These cases assume a little-endian architecture.
func TestNativeEndian(t *testing.T) {
	if NativeEndian != binary.LittleEndian {
		t.Skip("big-endian platform")
	}

	var tests = []struct {
		raw []byte
		n   uint32
	}{
		{[]byte("\x01\x00\x00\x00"), 1},
		{[]byte("\x00\x00\x00\x01"), 0x1000000},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.n), func(t *testing.T) {
			assert.Equal(t, tt.n, NativeEndian.Uint32(tt.raw))

			rt := make([]byte, 4)
			NativeEndian.PutUint32(rt, tt.n)
			assert.Equal(t, tt.raw, rt)
		})
	}
}

func TestParseByteOrder(t *testing.T) {
	var tests = []struct {
		name string
		want binary.ByteOrder
	}{
		{"", NativeEndian},
		{"native", NativeEndian},
		{" Native ", NativeEndian},
		{"little", binary.LittleEndian},
		{"le", binary.LittleEndian},
		{"big", binary.BigEndian},
		{"big-endian", binary.BigEndian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseByteOrder(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}

	_, err := ParseByteOrder("middle")
	assert.Error(t, err)
}

func TestIsNative(t *testing.T) {
	assert.True(t, IsNative(NativeEndian))
	if NativeEndian == binary.LittleEndian {
		assert.False(t, IsNative(binary.BigEndian))
	} else {
		assert.False(t, IsNative(binary.LittleEndian))
	}
}
