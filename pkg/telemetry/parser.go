package telemetry

// Parser reassembles packets from a byte stream.
type Parser struct {
	state   parseState
	packet  *Packet
	recvLen int
	lastSeq PacketSeq
	dropped int
}

type parseState int

const (
	stateSync0 parseState = iota // hunting for the first header byte
	stateSync1                   // waiting for the second header byte
	stateSeq                     // waiting for sequence
	stateCode                    // waiting for payload code
	stateLen                     // waiting for payload length
	stateData                    // waiting for payload
)

// Parse consumes one byte and returns a packet when it completes.
func (p *Parser) Parse(b byte) *Packet {
	switch p.state {
	case stateSync0:
		if b == Sync0 {
			p.state = stateSync1
		}
	case stateSync1:
		switch b {
		case Sync1:
			p.state = stateSeq
		case Sync0:
		default:
			p.state = stateSync0
		}
	case stateSeq:
		if seq := PacketSeq(b); seq.IsValid() {
			p.packet = &Packet{Seq: seq}
			p.state = stateCode
			return nil
		}
		p.resync(b)
	case stateCode:
		p.packet.Code = b
		p.state = stateLen
	case stateLen:
		if b == 0 {
			return p.packetReady()
		}
		p.packet.Data, p.recvLen = make([]byte, b), 0
		p.state = stateData
	case stateData:
		p.packet.Data[p.recvLen] = b
		p.recvLen++
		if p.recvLen >= len(p.packet.Data) {
			return p.packetReady()
		}
	}
	return nil
}

// Feed parses the bytes, calling fn for every complete packet.
func (p *Parser) Feed(data []byte, fn func(*Packet)) {
	for _, b := range data {
		if pkt := p.Parse(b); pkt != nil {
			fn(pkt)
		}
	}
}

// Dropped gets the number of packets missed according to sequence gaps.
func (p *Parser) Dropped() int {
	return p.dropped
}

// Reset resets the internal state of parser.
func (p *Parser) Reset() {
	p.state, p.packet = stateSync0, nil
}

func (p *Parser) resync(b byte) {
	p.packet = nil
	p.state = stateSync0
	if b == Sync0 {
		p.state = stateSync1
	}
}

func (p *Parser) packetReady() *Packet {
	pkt := p.packet
	p.state, p.packet = stateSync0, nil
	if p.lastSeq.IsValid() {
		for s := p.lastSeq.Next(); s != pkt.Seq; s = s.Next() {
			p.dropped++
		}
	}
	p.lastSeq = pkt.Seq
	return pkt
}
