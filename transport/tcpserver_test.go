package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/brightgrid-io/mbslave"
)

func TestTCPServerRoundTrip(t *testing.T) {
	var v uint16 = 0x1234
	inst := mbslave.NewInstance(mbslave.WithHoldingRegisters([]mbslave.RegDesc{mbslave.RegU16Ptr(0, &v)}))

	srv := NewTCPServer(inst, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve a port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx, addr) }()

	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	// MBAP header: transaction=0x0001, protocol=0x0000, length=0x0006, unit=0x01
	// PDU: read holding register 0x03 0x0000 0x0001
	req := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x06, 0x01, 0x03, 0x00, 0x00, 0x00, 0x01}
	if _, err := conn.Write(req); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	want := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x05, 0x01, 0x03, 0x02, 0x12, 0x34}
	if string(buf[:n]) != string(want) {
		t.Errorf("expected % X, got % X", want, buf[:n])
	}
}
