package sh

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/link"
	"github.com/robotalks/romi.go/pkg/link/mqtt"
	"github.com/robotalks/romi.go/pkg/romi"
	"github.com/robotalks/romi.go/pkg/telemetry"
)

// Conn is the operator side of a robot link: commands go out as
// lines, telemetry packets come back.
type Conn struct {
	Name string
	Port io.ReadWriter
	// OnFrame is invoked from the reading goroutine for every frame.
	OnFrame func(*telemetry.Frame)

	parser telemetry.Parser

	lock   sync.Mutex
	last   *telemetry.Frame
	frames int
	bad    int
}

// NewConn creates a Conn on a port.
func NewConn(name string, port io.ReadWriter) *Conn {
	return &Conn{Name: name, Port: port}
}

// Dial connects to a robot. target is a serial device path, an
// mqtt:// broker URL or a ws:// URL of the robot websocket link.
func Dial(target, robotID string, baudRate int) (*Conn, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", target, err)
	}
	switch u.Scheme {
	case "mqtt", "tcp":
		client, err := mqtt.NewClientFromURL(target)
		if err != nil {
			return nil, err
		}
		ch := mqtt.NewChannel(client).ForOperator(robotID)
		return NewConn(robotID, link.NewPacketStream(ch)), nil
	case "ws", "wss":
		conn, err := websocket.Dial(target, "", "http://localhost/")
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", target, err)
		}
		return NewConn(u.Host, conn), nil
	case "", "file":
		port, err := link.OpenSerialPort(u.Path, baudRate)
		if err != nil {
			return nil, err
		}
		return NewConn(u.Path, port), nil
	}
	return nil, fmt.Errorf("unknown target scheme: %q", u.Scheme)
}

// Send sends a command line.
func (c *Conn) Send(cmd romi.Command) error {
	if _, err := c.Port.Write(cmd.Line()); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	return nil
}

// Last gets the most recent frame, nil before any.
func (c *Conn) Last() *telemetry.Frame {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.last
}

// Stats gets the number of decoded frames, undecodable packets and
// packets lost in transit.
func (c *Conn) Stats() (frames, bad, dropped int) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.frames, c.bad, c.parser.Dropped()
}

// Run implements Runnable.
func (c *Conn) Run(ctx context.Context) error {
	closer, ok := c.Port.(io.Closer)
	if !ok {
		closer = nopCloser{}
	}
	return fx.RunWithContextCloser(ctx, closer, func() error {
		buf := make([]byte, 256)
		var decoded []*telemetry.Frame
		for {
			n, err := c.Port.Read(buf)
			if n > 0 {
				decoded = decoded[:0]
				c.lock.Lock()
				c.parser.Feed(buf[:n], func(pkt *telemetry.Packet) {
					if f := c.handlePacket(pkt); f != nil {
						decoded = append(decoded, f)
					}
				})
				c.lock.Unlock()
				if c.OnFrame != nil {
					for _, f := range decoded {
						c.OnFrame(f)
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

func (c *Conn) handlePacket(pkt *telemetry.Packet) *telemetry.Frame {
	f, err := telemetry.DecodeFrame(pkt)
	if err != nil {
		glog.V(2).Infof("%s: packet %d: %v", c.Name, pkt.Seq, err)
		c.bad++
		return nil
	}
	c.last = f
	c.frames++
	return f
}

// AddToLoop implements LoopAdder.
func (c *Conn) AddToLoop(loop *fx.Loop) {
	if adder, ok := c.Port.(fx.LoopAdder); ok {
		loop.Add(adder)
	}
	loop.AddRunnable(fx.NamedRun(c.Name, c))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
