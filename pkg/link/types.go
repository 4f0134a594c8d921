package link

import (
	"io"
	"sync"

	fx "github.com/robotalks/romi.go/pkg/framework"
)

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// PacketStream presents a PacketReadWriter as a byte stream.
// Each Write becomes one packet; reads drain packets in order.
type PacketStream struct {
	ReadWriter PacketReadWriter

	lock    sync.Mutex
	pending []byte
}

// NewPacketStream creates a PacketStream.
func NewPacketStream(rw PacketReadWriter) *PacketStream {
	return &PacketStream{ReadWriter: rw}
}

// Read implements io.Reader.
func (s *PacketStream) Read(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for len(s.pending) == 0 {
		pkt, err := s.ReadWriter.ReadPacket()
		if err != nil {
			return 0, err
		}
		s.pending = pkt
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (s *PacketStream) Write(p []byte) (int, error) {
	if err := s.ReadWriter.WritePacket(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close implements io.Closer.
func (s *PacketStream) Close() error {
	if closer, ok := s.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (s *PacketStream) AddToLoop(loop *fx.Loop) {
	if adder, ok := s.ReadWriter.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := s.ReadWriter.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
}
