package link

// Control characters recognized by the Framer.
const (
	CR        = '\r'
	LF        = '\n'
	Backspace = 0x08
)

// DefaultLineSize is the capacity of the line buffer.
const DefaultLineSize = 24

// Framer assembles bytes into carriage-return terminated lines.
// Line feeds are ignored, backspace removes the last byte, and bytes
// beyond the buffer capacity are dropped until the line ends.
// It's not safe for concurrent use.
type Framer struct {
	buf []byte
	n   int
}

// NewFramer creates a Framer holding lines of up to size bytes.
func NewFramer(size int) *Framer {
	if size <= 0 {
		size = DefaultLineSize
	}
	return &Framer{buf: make([]byte, size)}
}

// Feed consumes one byte and returns the line when it completes.
func (f *Framer) Feed(b byte) (string, bool) {
	switch {
	case b == CR:
		line := string(f.buf[:f.n])
		f.n = 0
		return line, true
	case b == LF:
	case b == Backspace:
		if f.n > 0 {
			f.n--
		}
	case f.n < len(f.buf):
		f.buf[f.n] = b
		f.n++
	}
	return "", false
}

// Pending gets the bytes of the incomplete line.
func (f *Framer) Pending() []byte {
	return f.buf[:f.n]
}
