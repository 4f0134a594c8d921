package telemetry

import (
	"fmt"
	"io"
)

// Header bytes starting every packet.
const (
	Sync0 byte = 0xAA
	Sync1 byte = 0x55
)

// HeaderSize is the size of the packet header.
const HeaderSize = 5

// MaxPayload is the largest payload a Packet carries.
const MaxPayload = 0xff

// PacketSeq defines the type of packet sequence number.
type PacketSeq byte

// Next calculates the next sequence number.
func (s PacketSeq) Next() PacketSeq {
	n := byte(s) + 1
	if n == 0 || n >= 0xf0 {
		n = 1
	}
	return PacketSeq(n)
}

// IsValid checks if it's a valid sequence number.
func (s PacketSeq) IsValid() bool {
	n := byte(s)
	return n > 0 && n < 0xf0
}

// Packet is a framed payload.
type Packet struct {
	Seq  PacketSeq
	Code byte
	Data []byte
}

// Bytes returns encoded bytes for sending.
func (p *Packet) Bytes() ([]byte, error) {
	if len(p.Data) > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(p.Data))
	}
	b := make([]byte, HeaderSize+len(p.Data))
	b[0], b[1], b[2], b[3], b[4] = Sync0, Sync1, byte(p.Seq), p.Code, byte(len(p.Data))
	copy(b[HeaderSize:], p.Data)
	return b, nil
}

// WriteTo implements io.WriterTo.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	b, err := p.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}
