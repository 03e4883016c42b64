package mbslave

import "testing"

func TestCalcLRC(t *testing.T) {
	// a frame whose bytes (including the LRC itself) sum to 0 mod 256
	data := []byte{0x11, 0x03, 0x00, 0x01, 0x00, 0x01}
	lrc := calcLRC(data)

	full := append(append([]byte{}, data...), lrc)
	var sum int
	for _, b := range full {
		sum += int(b)
	}
	if sum%256 != 0 {
		t.Errorf("expected data+lrc to sum to 0 mod 256, got %v", sum%256)
	}
}

func TestEncodeDecodeASCIIFrameRoundTrip(t *testing.T) {
	pdu := []byte{0x03, 0x00, 0x01, 0x00, 0x01}
	frame := EncodeASCIIFrame(17, pdu, '\n')

	got, addr, status := DecodeASCIIFrame(frame, '\n', 17, false, 0)
	if status != AsciiOK {
		t.Fatalf("expected AsciiOK, got %v", status)
	}
	if addr != 17 {
		t.Errorf("expected address 17, got %v", addr)
	}
	if string(got) != string(pdu) {
		t.Errorf("expected pdu %X back, got %X", pdu, got)
	}
}

func TestDecodeASCIIFrameLRCCheckedBeforeAddressFilter(t *testing.T) {
	frame := EncodeASCIIFrame(5, []byte{0x03, 0x00, 0x01, 0x00, 0x01}, '\n')
	// corrupt the LRC byte pair (second-to-last hex pair before CR LF)
	frame[len(frame)-4] = 'F'
	frame[len(frame)-3] = 'F'

	_, _, status := DecodeASCIIFrame(frame, '\n', 17, false, 0)
	if status != AsciiBadLRC {
		t.Errorf("expected a bad LRC to be reported even though the frame is addressed to someone else, got %v", status)
	}
}

func TestDecodeASCIIFrameNotAddressed(t *testing.T) {
	frame := EncodeASCIIFrame(5, []byte{0x03, 0x00, 0x01, 0x00, 0x01}, '\n')

	_, addr, status := DecodeASCIIFrame(frame, '\n', 17, false, 0)
	if status != AsciiNotAddressed {
		t.Errorf("expected AsciiNotAddressed, got %v", status)
	}
	if addr != 5 {
		t.Errorf("expected the foreign address 5 to be reported, got %v", addr)
	}
}

func TestDecodeASCIIFrameMalformed(t *testing.T) {
	_, _, status := DecodeASCIIFrame([]byte("not a frame"), '\n', 17, false, 0)
	if status != AsciiMalformed {
		t.Errorf("expected AsciiMalformed, got %v", status)
	}
}
