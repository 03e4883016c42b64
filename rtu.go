package mbslave

// RTU ADU framing: slave address (1) + PDU + CRC-16 (2, little-endian on
// the wire). CRC polynomial/seed are the standard Modbus CRC-16
// (poly 0xA001 reflected, init 0xFFFF); simonvetter-modbus's client-side
// rtu_transport.go uses the same algorithm for its own frame checks, and
// this engine's dispatcher only ever sees the PDU these functions strip
// down to.
const (
	rtuAddrBroadcast = 0x00
	rtuMinFrameSize  = 4 // addr + fc + crc lo/hi, the shortest possible frame
)

// crc16Modbus computes the standard Modbus RTU CRC-16 over data.
func crc16Modbus(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc >>= 1
				crc ^= 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// RTUFrameStatus reports why an RTU frame failed to decode, before any PDU
// dispatch is attempted.
type RTUFrameStatus uint8

const (
	RTUOK RTUFrameStatus = iota
	RTUFrameTooShort
	RTUFrameBadCRC
	RTUFrameNotAddressed
)

// DecodeRTUFrame validates frame's CRC and slave addressing, returning the
// bare PDU (function code onward, with slave address and CRC stripped) on
// success. slaveAddr is this instance's configured address; enableDefaultAddr
// additionally accepts the well-known "default response" address used by
// some RTU bus setups.
func DecodeRTUFrame(frame []byte, slaveAddr uint8, enableDefaultAddr bool, defaultAddr uint8) ([]byte, uint8, RTUFrameStatus) {
	if len(frame) < rtuMinFrameSize {
		return nil, 0, RTUFrameTooShort
	}

	payload := frame[:len(frame)-2]
	gotCRC := uint16(frame[len(frame)-2]) | uint16(frame[len(frame)-1])<<8
	wantCRC := crc16Modbus(payload)
	if gotCRC != wantCRC {
		return nil, frame[0], RTUFrameBadCRC
	}

	addr := frame[0]
	if addr != slaveAddr && addr != rtuAddrBroadcast && !(enableDefaultAddr && addr == defaultAddr) {
		return nil, addr, RTUFrameNotAddressed
	}

	return payload[1:], addr, RTUOK
}

// EncodeRTUFrame assembles slaveAddr + pdu + CRC-16 into a complete RTU
// frame ready to write to the wire.
func EncodeRTUFrame(slaveAddr uint8, pdu []byte) []byte {
	frame := make([]byte, 0, 1+len(pdu)+2)
	frame = append(frame, slaveAddr)
	frame = append(frame, pdu...)
	crc := crc16Modbus(frame)
	frame = append(frame, byte(crc), byte(crc>>8))
	return frame
}
