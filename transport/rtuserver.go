package transport

import (
	"context"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/brightgrid-io/mbslave"
	"github.com/brightgrid-io/mbslave/mblog"
)

// RTUServer drives a single Modbus RTU slave over a serial port, using
// go.bug.st/serial the way simonvetter-modbus's client-side serial.go
// does, generalized here to the server/slave role.
type RTUServer struct {
	inst              *mbslave.Instance
	log               mblog.Logger
	slaveAddr         uint8
	enableDefaultAddr bool
	defaultAddr       uint8
	interFrameTimeout time.Duration

	mu sync.Mutex
}

// RTUConfig describes the serial port and addressing parameters for an
// RTUServer.
type RTUConfig struct {
	Mode              serial.Mode
	SlaveAddr         uint8
	EnableDefaultAddr bool
	DefaultAddr       uint8
	// InterFrameTimeout bounds how long a read waits for the silent
	// interval that, per the RTU framing rule, marks the end of a frame.
	InterFrameTimeout time.Duration
}

// NewRTUServer builds a server bound to inst and cfg. log may be nil.
func NewRTUServer(inst *mbslave.Instance, cfg RTUConfig, log mblog.Logger) *RTUServer {
	if log == nil {
		log = mblog.New("transport.rtu")
	}
	timeout := cfg.InterFrameTimeout
	if timeout == 0 {
		timeout = 10 * time.Millisecond
	}
	return &RTUServer{
		inst:              inst,
		log:               log,
		slaveAddr:         cfg.SlaveAddr,
		enableDefaultAddr: cfg.EnableDefaultAddr,
		defaultAddr:       cfg.DefaultAddr,
		interFrameTimeout: timeout,
	}
}

// Serve opens portName and serves requests until ctx is canceled.
func (s *RTUServer) Serve(ctx context.Context, portName string, mode *serial.Mode) error {
	port, err := serial.Open(portName, mode)
	if err != nil {
		return err
	}
	defer port.Close()

	go func() {
		<-ctx.Done()
		_ = port.Close()
	}()

	s.log.Infof("serving RTU on %s", portName)

	buf := make([]byte, 0, 256)
	chunk := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		_ = port.SetReadTimeout(s.interFrameTimeout)
		n, err := port.Read(chunk)
		if err != nil {
			return err
		}
		if n == 0 {
			if len(buf) > 0 {
				s.handleFrame(port, buf)
				buf = buf[:0]
			}
			continue
		}
		buf = append(buf, chunk[:n]...)
	}
}

func (s *RTUServer) handleFrame(w interface{ Write([]byte) (int, error) }, frame []byte) {
	pdu, addr, status := mbslave.DecodeRTUFrame(frame, s.slaveAddr, s.enableDefaultAddr, s.defaultAddr)
	switch status {
	case mbslave.RTUOK:
	case mbslave.RTUFrameNotAddressed:
		return
	case mbslave.RTUFrameBadCRC:
		s.inst.NoteBusCommError()
		return
	default:
		s.log.Warnf("dropping malformed RTU frame: status=%d", status)
		return
	}

	s.inst.NoteBusMessage()

	s.mu.Lock()
	respPDU := s.inst.HandleRequest(pdu)
	s.mu.Unlock()

	// a broadcast (address 0) is applied but never answered
	if len(respPDU) == 0 || addr == 0 {
		return
	}

	resp := mbslave.EncodeRTUFrame(addr, respPDU)
	if _, err := w.Write(resp); err != nil {
		s.log.Errorf("writing RTU response: %v", err)
	}
}
