package mbslave

// MBAP header layout: transaction id (2) + protocol id (2, always 0) +
// length (2, unit id + PDU bytes) + unit id (1), followed by the PDU.
// Pure byte-transform functions only: the actual socket read/write loop is
// ambient transport concern, not this engine's, per the core's
// carve-out of transport I/O. Grounded on the MBAP assembly/parsing shape
// in simonvetter-modbus's TCP transport, adapted here to a pure codec with
// no connection state.
const (
	mbapHeaderSize = 7
	mbapProtocolID = 0x0000
	mbapMaxPDUSize = 253
)

// MBAPFrame is a decoded TCP Application Data Unit.
type MBAPFrame struct {
	TransactionID uint16
	UnitID        uint8
	PDU           []byte
}

// TCPDecodeStatus reports why an MBAP frame failed to decode.
type TCPDecodeStatus uint8

const (
	TCPOK TCPDecodeStatus = iota
	TCPShortFrame
	TCPBadProtocolID
	TCPBadLength
)

// DecodeMBAPFrame parses a single complete MBAP ADU (header plus PDU) read
// from a TCP stream.
func DecodeMBAPFrame(buf []byte) (MBAPFrame, TCPDecodeStatus) {
	if len(buf) < mbapHeaderSize {
		return MBAPFrame{}, TCPShortFrame
	}

	transactionID := beU16(buf[0:2])
	protocolID := beU16(buf[2:4])
	length := beU16(buf[4:6])
	unitID := buf[6]

	if protocolID != mbapProtocolID {
		return MBAPFrame{}, TCPBadProtocolID
	}
	if length == 0 || int(length) != len(buf)-6 {
		return MBAPFrame{}, TCPBadLength
	}

	return MBAPFrame{
		TransactionID: transactionID,
		UnitID:        unitID,
		PDU:           buf[mbapHeaderSize:],
	}, TCPOK
}

// EncodeMBAPFrame assembles a complete MBAP ADU ready to write to a TCP
// stream, echoing transactionID and unitID from the originating request.
func EncodeMBAPFrame(transactionID uint16, unitID uint8, pdu []byte) []byte {
	out := make([]byte, mbapHeaderSize, mbapHeaderSize+len(pdu))
	putBeU16(out[0:2], transactionID)
	putBeU16(out[2:4], mbapProtocolID)
	putBeU16(out[4:6], uint16(1+len(pdu)))
	out[6] = unitID
	return append(out, pdu...)
}
