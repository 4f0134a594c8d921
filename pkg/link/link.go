package link

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/share"
)

// DefaultRxSize is the capacity of the receive queue.
const DefaultRxSize = 64

// Link implements hw.Link over a byte stream. Run reads the stream on
// its own goroutine into a protected receive queue; the owning task
// polls CheckForCompleteLine, which never blocks.
type Link struct {
	name   string
	port   io.ReadWriter
	rx     *share.Queue[byte]
	framer *Framer

	sendLock sync.Mutex
}

// New creates a Link on the port.
func New(name string, port io.ReadWriter) *Link {
	return &Link{
		name: name,
		port: port,
		rx: share.MustNewQueue[byte](name+"_rx", DefaultRxSize,
			share.QueueOptions{Protect: true}),
		framer: NewFramer(DefaultLineSize),
	}
}

// Name implements framework.Named.
func (l *Link) Name() string {
	return l.name
}

// RxQueue exposes the receive queue for diagnostics.
func (l *Link) RxQueue() *share.Queue[byte] {
	return l.rx
}

// Receive queues bytes as if they were read from the port.
// Bytes are dropped when the queue is full.
func (l *Link) Receive(p []byte) int {
	var dropped int
	for _, b := range p {
		if !l.rx.PutFromISR(b) {
			dropped++
		}
	}
	if dropped > 0 {
		glog.Warningf("%s: dropped %d bytes", l.name, dropped)
	}
	return len(p) - dropped
}

// CheckForCompleteLine implements hw.Link. It consumes queued bytes
// until a line completes or the queue is empty.
func (l *Link) CheckForCompleteLine() (string, bool) {
	for {
		b, err := l.rx.Get()
		if err != nil {
			return "", false
		}
		if line, ok := l.framer.Feed(b); ok {
			glog.V(2).Infof("%s: RCV %q", l.name, line)
			return line, true
		}
	}
}

// Send implements hw.Link.
func (l *Link) Send(p []byte) error {
	l.sendLock.Lock()
	defer l.sendLock.Unlock()
	if _, err := l.port.Write(p); err != nil {
		return fmt.Errorf("%s: send: %w", l.name, err)
	}
	return nil
}

// Run implements Runnable.
func (l *Link) Run(ctx context.Context) error {
	// a port which can't be closed stops only when its Read returns
	closer, ok := l.port.(io.Closer)
	if !ok {
		closer = nopCloser{}
	}
	return fx.RunWithContextCloser(ctx, closer, func() error {
		buf := make([]byte, DefaultRxSize)
		for {
			n, err := l.port.Read(buf)
			if n > 0 {
				// spin on a full queue rather than losing bytes
				for _, b := range buf[:n] {
					for !l.rx.PutFromISR(b) {
						if ctx.Err() != nil {
							return ctx.Err()
						}
						runtime.Gosched()
					}
				}
			}
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
		}
	})
}

// AddToLoop implements LoopAdder.
func (l *Link) AddToLoop(loop *fx.Loop) {
	if adder, ok := l.port.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := l.port.(fx.Runnable); ok {
		loop.AddRunnable(fx.NamedRun(l.name+"-port", runnable))
	}
	loop.AddRunnable(l)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
