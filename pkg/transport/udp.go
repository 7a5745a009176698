// Package transport carries serialized OSC messages to a VMC receiver over
// UDP. Each message is one datagram; there is no framing, no retry, and no
// acknowledgement. The next frame supersedes anything lost on the wire.
package transport

import (
	"fmt"
	"net"
	"sync/atomic"

	"go.uber.org/zap"

	"vmcbridge/pkg/osc"
)

// DefaultPort is the common VMC receiver port (Warudo, VSeeFace).
// VMagicMirror listens on 39540.
const DefaultPort = 39539

// UDPSender owns one connected UDP socket aimed at a single receiver.
// Send is best-effort: serialization or socket errors drop the message and
// never surface past this layer.
type UDPSender struct {
	conn  *net.UDPConn
	raddr *net.UDPAddr
	drops atomic.Uint64
	log   *zap.Logger
}

// NewUDPSender resolves and dials the destination immediately. A bad host
// or port fails here, before any frame is processed; UDP itself is
// connectionless so no traffic is exchanged.
func NewUDPSender(host string, port int) (*UDPSender, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("transport: invalid port %d", port)
	}
	raddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %s:%d: %w", host, port, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", raddr, err)
	}
	return &UDPSender{conn: conn, raddr: raddr, log: zap.L().Named("transport")}, nil
}

// RemoteAddr returns the receiver endpoint.
func (s *UDPSender) RemoteAddr() net.Addr { return s.raddr }

// Send serializes m and writes it as one datagram. Failures are counted
// and logged at debug level only; a stalled receiver must not stall the
// caller's frame loop.
func (s *UDPSender) Send(m osc.Message) {
	b, err := m.MarshalBinary()
	if err != nil {
		s.drops.Add(1)
		s.log.Debug("encode failed", zap.String("address", m.Address), zap.Error(err))
		return
	}
	if _, err := s.conn.Write(b); err != nil {
		s.drops.Add(1)
		s.log.Debug("send failed", zap.String("address", m.Address), zap.Error(err))
	}
}

// Drops reports how many messages were discarded since construction.
func (s *UDPSender) Drops() uint64 { return s.drops.Load() }

// Close releases the socket.
func (s *UDPSender) Close() error { return s.conn.Close() }
