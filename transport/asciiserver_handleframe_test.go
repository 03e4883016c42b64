package transport

import (
	"bytes"
	"testing"

	"github.com/brightgrid-io/mbslave"
)

func TestASCIIServerHandleFrameRoundTrip(t *testing.T) {
	var v uint16 = 0xBEEF
	inst := mbslave.NewInstance(mbslave.WithHoldingRegisters([]mbslave.RegDesc{mbslave.RegU16Ptr(0, &v)}))
	srv := NewASCIIServer(inst, ASCIIConfig{SlaveAddr: 17}, nil)

	req := mbslave.EncodeASCIIFrame(17, []byte{0x03, 0x00, 0x00, 0x00, 0x01}, '\n')

	var out bytes.Buffer
	srv.handleFrame(&out, req)

	pdu, addr, status := mbslave.DecodeASCIIFrame(out.Bytes(), '\n', 17, false, 0)
	if status != mbslave.AsciiOK {
		t.Fatalf("expected a well-framed response, got status %v", status)
	}
	if addr != 17 {
		t.Errorf("expected response addressed to 17, got %v", addr)
	}
	want := []byte{0x03, 0x02, 0xBE, 0xEF}
	if string(pdu) != string(want) {
		t.Errorf("expected % X, got % X", want, pdu)
	}
}

func TestASCIIServerHandleFrameBadLRCNotesCommError(t *testing.T) {
	inst := mbslave.NewInstance()
	srv := NewASCIIServer(inst, ASCIIConfig{SlaveAddr: 17}, nil)

	req := mbslave.EncodeASCIIFrame(18, []byte{0x03, 0x00, 0x00, 0x00, 0x01}, '\n')
	// corrupt a hex digit in the LRC byte pair (the last two hex chars
	// before the trailing CR+delimiter)
	req[len(req)-4] = '0'
	req[len(req)-3] = '0'

	var out bytes.Buffer
	srv.handleFrame(&out, req)

	if out.Len() != 0 {
		t.Errorf("expected no response written for a bad-LRC frame, got % X", out.Bytes())
	}
	// diagnostics sub-function 0x0C returns the bus communication error count
	diag := inst.HandleRequest([]byte{0x08, 0x00, 0x0C, 0x00, 0x00})
	if want := []byte{0x08, 0x00, 0x0C, 0x00, 0x01}; string(diag) != string(want) {
		t.Errorf("expected bus comm error count of 1, got % X", diag)
	}
}

func TestASCIIServerHandleFrameNotAddressedWritesNothing(t *testing.T) {
	inst := mbslave.NewInstance()
	srv := NewASCIIServer(inst, ASCIIConfig{SlaveAddr: 17}, nil)

	req := mbslave.EncodeASCIIFrame(18, []byte{0x03, 0x00, 0x00, 0x00, 0x01}, '\n')

	var out bytes.Buffer
	srv.handleFrame(&out, req)

	if out.Len() != 0 {
		t.Errorf("expected no response written for a frame addressed to someone else, got % X", out.Bytes())
	}
}
