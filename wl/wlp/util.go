package wlp

import (
	"encoding/binary"
	"math"
	"unsafe"
)

var hostByteOrder binary.ByteOrder

func init() {
	var endianCheck uint32 = 0x1
	b := (*[4]byte)(unsafe.Pointer(&endianCheck))
	if b[0] == 1 {
		hostByteOrder = binary.LittleEndian
	} else {
		hostByteOrder = binary.BigEndian
	}
}

// HostByteOrder is the byte order used on the wire. Wayland peers always share
// a host, so the protocol uses native order.
func HostByteOrder() binary.ByteOrder {
	return hostByteOrder
}

func fixedToFloat64(fixed int32) float64 {
	i := ((1023 + 44) << 52) + (1 << 51) + uint64(fixed)
	return math.Float64frombits(i) - (3 << 43)
}

func float64ToFixed(float float64) int32 {
	float += 3 << 43
	return int32(math.Float64bits(float))
}

// padded returns n rounded up to the 32-bit word boundary.
func padded(n int) int {
	return (n + 3) &^ 3
}

// DecodeHeader splits the 8 byte message header.
func DecodeHeader(buf []byte) (id ObjectID, opcode uint16, size int) {
	id = ObjectID(hostByteOrder.Uint32(buf[:4]))
	arg2 := hostByteOrder.Uint32(buf[4:8])
	opcode = uint16(arg2 & 0xFFFF)
	size = int(arg2 >> 16)
	return
}

// EncodeHeader is the inverse of DecodeHeader.
func EncodeHeader(buf []byte, id ObjectID, opcode uint16, size int) {
	hostByteOrder.PutUint32(buf[:4], uint32(id))
	hostByteOrder.PutUint32(buf[4:8], uint32(size)<<16|uint32(opcode))
}
