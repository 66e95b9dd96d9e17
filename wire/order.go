package wire

import (
	"encoding/binary"

	"golang.org/x/sys/cpu"
)

// ByteOrder is the byte order used to encode a multi-byte integer
// field.
type ByteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

var (
	BigEndian    ByteOrder = binary.BigEndian
	LittleEndian ByteOrder = binary.LittleEndian

	// NativeEndian is the host's byte order, resolved to one of
	// BigEndian or LittleEndian so that it compares equal to the
	// matching concrete order.
	NativeEndian = nativeOrder()
)

func nativeOrder() ByteOrder {
	if cpu.IsBigEndian {
		return BigEndian
	}
	return LittleEndian
}
