package mbslave

import "testing"

func TestEncodeDecodeMBAPFrameRoundTrip(t *testing.T) {
	pdu := []byte{0x03, 0x00, 0x01, 0x00, 0x01}
	raw := EncodeMBAPFrame(0x1234, 7, pdu)

	frame, status := DecodeMBAPFrame(raw)
	if status != TCPOK {
		t.Fatalf("expected TCPOK, got %v", status)
	}
	if frame.TransactionID != 0x1234 {
		t.Errorf("expected transaction id 0x1234, got 0x%04X", frame.TransactionID)
	}
	if frame.UnitID != 7 {
		t.Errorf("expected unit id 7, got %v", frame.UnitID)
	}
	if string(frame.PDU) != string(pdu) {
		t.Errorf("expected pdu %X back, got %X", pdu, frame.PDU)
	}
}

func TestDecodeMBAPFrameShort(t *testing.T) {
	_, status := DecodeMBAPFrame([]byte{0x00, 0x01})
	if status != TCPShortFrame {
		t.Errorf("expected TCPShortFrame, got %v", status)
	}
}

func TestDecodeMBAPFrameBadProtocolID(t *testing.T) {
	raw := EncodeMBAPFrame(1, 1, []byte{0x03, 0x00, 0x00, 0x00, 0x01})
	raw[2], raw[3] = 0x00, 0x01

	_, status := DecodeMBAPFrame(raw)
	if status != TCPBadProtocolID {
		t.Errorf("expected TCPBadProtocolID, got %v", status)
	}
}

func TestDecodeMBAPFrameBadLength(t *testing.T) {
	raw := EncodeMBAPFrame(1, 1, []byte{0x03, 0x00, 0x00, 0x00, 0x01})
	raw = append(raw, 0xFF) // trailing garbage the declared length doesn't cover

	_, status := DecodeMBAPFrame(raw)
	if status != TCPBadLength {
		t.Errorf("expected TCPBadLength, got %v", status)
	}
}
