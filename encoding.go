package mbslave

import (
	"encoding/binary"
	"math"
)

// ByteOrder selects whether a register's physical word is big- or
// little-endian on the wire, independent of word order for multi-word types.
type ByteOrder uint8

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

// WordOrder selects which 16-bit word of a 32/64-bit value is transmitted
// first. Adapted from simonvetter-modbus/encoding.go, which threads the same
// distinction through its bytesToUint32/uint32ToBytes helpers.
type WordOrder uint8

const (
	HighWordFirst WordOrder = iota
	LowWordFirst
)

func wireOrder(bo ByteOrder) binary.ByteOrder {
	if bo == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// putU16 encodes a single 16-bit word per the requested byte order.
func putU16(bo ByteOrder, v uint16) []byte {
	out := make([]byte, 2)
	wireOrder(bo).PutUint16(out, v)
	return out
}

func getU16(bo ByteOrder, in []byte) uint16 {
	return wireOrder(bo).Uint16(in)
}

// swapWords32 transposes the two 16-bit halves of a 4-byte buffer in place.
func swapWords32(b []byte) {
	b[0], b[1], b[2], b[3] = b[2], b[3], b[0], b[1]
}

// swapWords64 transposes all four 16-bit words of an 8-byte buffer in place,
// reversing their order (word 0 <-> word 3, word 1 <-> word 2).
func swapWords64(b []byte) {
	b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7] =
		b[6], b[7], b[4], b[5], b[2], b[3], b[0], b[1]
}

// putU32 encodes a 32-bit value as 4 bytes, honoring both byte order and word
// order. With byte order big-endian and word order low-word-first, the value
// 0xAABBCCDD is emitted as CC DD AA BB.
func putU32(bo ByteOrder, wo WordOrder, v uint32) []byte {
	out := make([]byte, 4)
	wireOrder(bo).PutUint32(out, v)

	switch bo {
	case BigEndian:
		if wo == LowWordFirst {
			swapWords32(out)
		}
	case LittleEndian:
		if wo == HighWordFirst {
			swapWords32(out)
		}
	}

	return out
}

func getU32(bo ByteOrder, wo WordOrder, in []byte) uint32 {
	buf := make([]byte, 4)
	copy(buf, in[:4])

	switch bo {
	case BigEndian:
		if wo == LowWordFirst {
			swapWords32(buf)
		}
	case LittleEndian:
		if wo == HighWordFirst {
			swapWords32(buf)
		}
	}

	return wireOrder(bo).Uint32(buf)
}

func putU64(bo ByteOrder, wo WordOrder, v uint64) []byte {
	out := make([]byte, 8)
	wireOrder(bo).PutUint64(out, v)

	switch bo {
	case BigEndian:
		if wo == LowWordFirst {
			swapWords64(out)
		}
	case LittleEndian:
		if wo == HighWordFirst {
			swapWords64(out)
		}
	}

	return out
}

func getU64(bo ByteOrder, wo WordOrder, in []byte) uint64 {
	buf := make([]byte, 8)
	copy(buf, in[:8])

	switch bo {
	case BigEndian:
		if wo == LowWordFirst {
			swapWords64(buf)
		}
	case LittleEndian:
		if wo == HighWordFirst {
			swapWords64(buf)
		}
	}

	return wireOrder(bo).Uint64(buf)
}

func putF32(bo ByteOrder, wo WordOrder, v float32) []byte {
	return putU32(bo, wo, math.Float32bits(v))
}

func getF32(bo ByteOrder, wo WordOrder, in []byte) float32 {
	return math.Float32frombits(getU32(bo, wo, in))
}

func putF64(bo ByteOrder, wo WordOrder, v float64) []byte {
	return putU64(bo, wo, math.Float64bits(v))
}

func getF64(bo ByteOrder, wo WordOrder, in []byte) float64 {
	return math.Float64frombits(getU64(bo, wo, in))
}

// beU16 / putBeU16 are the plain big-endian helpers used throughout the PDU
// layer itself (function-code headers, addresses, quantities), which are
// always transmitted big-endian regardless of any register's configured
// byte/word order.
func beU16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

func putBeU16(b []byte, v uint16) {
	binary.BigEndian.PutUint16(b, v)
}

// encodeBools packs booleans LSB-first within each byte, matching the coil
// LSB-first bit-packing rule for coil/discrete-input status bytes.
func encodeBools(in []bool) []byte {
	byteCount := (len(in) + 7) / 8
	out := make([]byte, byteCount)
	for i, v := range in {
		if v {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// decodeBools is the inverse of encodeBools for a known quantity of bits.
func decodeBools(quantity int, in []byte) []bool {
	out := make([]bool, quantity)
	for i := 0; i < quantity; i++ {
		out[i] = (in[i/8]>>uint(i%8))&0x01 == 0x01
	}
	return out
}
