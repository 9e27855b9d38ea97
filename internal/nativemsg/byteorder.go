package nativemsg

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"
)

// NativeEndian is the runtime native byte order.
//
// Browsers decode the length header in their own native order, which only
// works because the browser and the host run on the same machine.
var NativeEndian binary.ByteOrder

func init() {
	var i int32 = 1
	b := (*byte)(unsafe.Pointer(&i))
	if *b == 0 {
		NativeEndian = binary.BigEndian
	} else {
		NativeEndian = binary.LittleEndian
	}
}

// Byte order policy names accepted by ParseByteOrder.
const (
	OrderNative = "native"
	OrderLittle = "little"
	OrderBig    = "big"
)

// ParseByteOrder maps a policy name to a byte order.  The empty string
// selects the native order.
func ParseByteOrder(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", OrderNative:
		return NativeEndian, nil
	case OrderLittle, "little-endian", "le":
		return binary.LittleEndian, nil
	case OrderBig, "big-endian", "be":
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("unknown byte order %q (want native, little or big)", name)
}

// IsNative reports whether order matches the running platform.
func IsNative(order binary.ByteOrder) bool {
	return order.String() == NativeEndian.String()
}
