// Package session composes the VMC encoder with the UDP transport. A
// Session is the single integration point callers drive: one SendFrame per
// tracked face per video frame.
package session

import (
	"go.uber.org/zap"

	"vmcbridge/pkg/tracking"
	"vmcbridge/pkg/transport"
	"vmcbridge/pkg/vmc"
)

// Session owns exactly one socket and one session clock. It is not safe
// for concurrent use: the per-frame message sequence must not interleave
// with another frame's, so callers with multiple producers serialize
// SendFrame themselves.
type Session struct {
	enc *vmc.Encoder
	tr  *transport.UDPSender
	log *zap.Logger
}

// New connects a session to a VMC receiver. The session clock starts here;
// an unresolvable host or invalid port fails immediately.
func New(host string, port int) (*Session, error) {
	tr, err := transport.NewUDPSender(host, port)
	if err != nil {
		return nil, err
	}
	log := zap.L().Named("session")
	log.Info("vmc session open", zap.Stringer("receiver", tr.RemoteAddr()))
	return &Session{enc: vmc.NewEncoder(), tr: tr, log: log}, nil
}

// SendFrame encodes one snapshot and transmits the resulting message
// sequence in order. It never fails: transport errors are absorbed
// best-effort and the next frame resends full state. With multiple faces
// per video frame, call once per face, sequentially.
func (s *Session) SendFrame(snap tracking.Snapshot) {
	for _, m := range s.enc.EncodeFrame(snap) {
		s.tr.Send(m)
	}
}

// Drops reports messages discarded by the transport since construction.
func (s *Session) Drops() uint64 { return s.tr.Drops() }

// Close releases the socket. The session must not be used afterwards.
func (s *Session) Close() error {
	s.log.Info("vmc session closed", zap.Uint64("dropped", s.tr.Drops()))
	return s.tr.Close()
}
