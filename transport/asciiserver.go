package transport

import (
	"context"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/brightgrid-io/mbslave"
	"github.com/brightgrid-io/mbslave/mblog"
)

// ASCIIServer drives a single Modbus ASCII slave over a serial port. Framing
// is delimited (':' start, CR+delimiter end) rather than silent-interval
// based, so the read loop here scans for the trailing delimiter instead of
// timing gaps the way RTUServer does.
type ASCIIServer struct {
	inst              *mbslave.Instance
	log               mblog.Logger
	slaveAddr         uint8
	enableDefaultAddr bool
	defaultAddr       uint8
	delimiter         byte
	readTimeout       time.Duration

	mu sync.Mutex
}

// ASCIIConfig describes the serial port and addressing parameters for an
// ASCIIServer.
type ASCIIConfig struct {
	SlaveAddr         uint8
	EnableDefaultAddr bool
	DefaultAddr       uint8
	// Delimiter is the frame-terminating byte following the trailing CR.
	// Defaults to '\n' if zero, matching Instance's own default.
	Delimiter byte
	// ReadTimeout bounds each individual port read while scanning for the
	// terminating delimiter.
	ReadTimeout time.Duration
}

// NewASCIIServer builds a server bound to inst and cfg. log may be nil.
func NewASCIIServer(inst *mbslave.Instance, cfg ASCIIConfig, log mblog.Logger) *ASCIIServer {
	if log == nil {
		log = mblog.New("transport.ascii")
	}
	delim := cfg.Delimiter
	if delim == 0 {
		delim = '\n'
	}
	timeout := cfg.ReadTimeout
	if timeout == 0 {
		timeout = 50 * time.Millisecond
	}
	return &ASCIIServer{
		inst:              inst,
		log:               log,
		slaveAddr:         cfg.SlaveAddr,
		enableDefaultAddr: cfg.EnableDefaultAddr,
		defaultAddr:       cfg.DefaultAddr,
		delimiter:         delim,
		readTimeout:       timeout,
	}
}

// Serve opens portName and serves requests until ctx is canceled.
func (s *ASCIIServer) Serve(ctx context.Context, portName string, mode *serial.Mode) error {
	port, err := serial.Open(portName, mode)
	if err != nil {
		return err
	}
	defer port.Close()

	go func() {
		<-ctx.Done()
		_ = port.Close()
	}()

	s.log.Infof("serving ASCII on %s", portName)

	_ = port.SetReadTimeout(s.readTimeout)
	buf := make([]byte, 0, 512)
	chunk := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := port.Read(chunk)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		buf = append(buf, chunk[:n]...)

		for {
			idx := indexDelim(buf, s.delimiter)
			if idx < 0 {
				break
			}
			frame := buf[:idx+1]
			s.handleFrame(port, frame)
			buf = buf[idx+1:]
		}
	}
}

func indexDelim(buf []byte, delim byte) int {
	for i, b := range buf {
		if b == delim {
			return i
		}
	}
	return -1
}

func (s *ASCIIServer) handleFrame(w interface{ Write([]byte) (int, error) }, frame []byte) {
	pdu, addr, status := mbslave.DecodeASCIIFrame(frame, s.delimiter, s.slaveAddr, s.enableDefaultAddr, s.defaultAddr)
	switch status {
	case mbslave.AsciiOK:
	case mbslave.AsciiNotAddressed:
		return
	case mbslave.AsciiBadLRC:
		s.inst.NoteBusCommError()
		return
	default:
		s.log.Warnf("dropping malformed ASCII frame: status=%d", status)
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

	resp := mbslave.EncodeASCIIFrame(addr, respPDU, s.delimiter)
	if _, err := w.Write(resp); err != nil {
		s.log.Errorf("writing ASCII response: %v", err)
	}
}
