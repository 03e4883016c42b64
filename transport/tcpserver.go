// Package transport provides the network/serial I/O loops that feed raw
// ADUs into an mbslave.Instance and write back its responses: mbslave
// itself never touches a socket or a serial port.
// Grounded on simonvetter-modbus's server.go/tcp_transport.go accept-loop
// shape, generalized to wrap the new descriptor-based Instance instead of
// its own RequestHandler interface.
package transport

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/brightgrid-io/mbslave"
	"github.com/brightgrid-io/mbslave/mblog"
)

// TCPServer accepts Modbus TCP connections and dispatches each request to
// inst, serializing access with a mutex since Instance itself carries none.
type TCPServer struct {
	inst *mbslave.Instance
	log  mblog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewTCPServer builds a server bound to inst. log may be nil, in which
// case a default mblog.Logger is created.
func NewTCPServer(inst *mbslave.Instance, log mblog.Logger) *TCPServer {
	if log == nil {
		log = mblog.New("transport.tcp")
	}
	return &TCPServer{inst: inst, log: log}
}

// ListenAndServe binds addr and serves connections until ctx is canceled.
func (s *TCPServer) ListenAndServe(ctx context.Context, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.log.Infof("listening on %s", addr)

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.serveConn(ctx, conn)
	}
}

func (s *TCPServer) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	s.log.Debugf("accepted connection from %s", conn.RemoteAddr())

	buf := make([]byte, 260)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := conn.Read(buf)
		if err != nil {
			return
		}

		frame, status := mbslave.DecodeMBAPFrame(buf[:n])
		if status != mbslave.TCPOK {
			s.log.Warnf("dropping malformed TCP ADU: status=%d", status)
			continue
		}

		s.mu.Lock()
		respPDU := s.inst.HandleRequest(frame.PDU)
		s.mu.Unlock()

		if len(respPDU) == 0 {
			continue
		}

		resp := mbslave.EncodeMBAPFrame(frame.TransactionID, frame.UnitID, respPDU)
		if _, err := conn.Write(resp); err != nil {
			return
		}
	}
}
