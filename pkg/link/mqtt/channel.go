package mqtt

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"

	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/link"
)

// Topic names under the robot ID.
const (
	TopicCommand   = "cmd"
	TopicTelemetry = "telemetry"
	TopicStatus    = "status"
)

// DefaultBacklog is the number of command packets buffered while the
// link reader is busy.
const DefaultBacklog = 16

// Channel implements link.PacketReadWriter on a pair of topics.
type Channel struct {
	Client   *Client
	SubTopic string
	PubTopic string
	// Session is announced, retained, on StatusTopic when set.
	StatusTopic string
	Session     string

	packetCh chan []byte
	done     chan struct{}
	once     sync.Once
}

// NewChannel creates a Channel.
func NewChannel(c *Client) *Channel {
	return &Channel{
		Client:   c,
		Session:  uuid.NewString(),
		packetCh: make(chan []byte, DefaultBacklog),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *Channel) WithTopics(sub, pub string) *Channel {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForRobot receives commands and publishes telemetry of the robot.
func (p *Channel) ForRobot(id string) *Channel {
	p.StatusTopic = id + "/" + TopicStatus
	return p.WithTopics(id+"/"+TopicCommand, id+"/"+TopicTelemetry)
}

// ForOperator sends commands to the robot and receives its telemetry.
func (p *Channel) ForOperator(id string) *Channel {
	return p.WithTopics(id+"/"+TopicTelemetry, id+"/"+TopicCommand)
}

// ReadPacket implements PacketReader.
func (p *Channel) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *Channel) WritePacket(pkt []byte) error {
	token := p.Client.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Close implements io.Closer. Pending and later reads get io.EOF.
func (p *Channel) Close() error {
	p.once.Do(func() {
		close(p.done)
	})
	return nil
}

// Run implements Runnable. Readers are released however it returns.
func (p *Channel) Run(ctx context.Context) error {
	defer p.Close()
	token := p.Client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	defer p.Client.Close()
	sub := p.Client.Sub(p.SubTopic, p.handleMsg)
	defer sub.Close()
	if p.StatusTopic != "" {
		p.Client.PubWith(p.StatusTopic, []byte(p.Session), 0, true)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (p *Channel) handleMsg(topic string, payload []byte) {
	select {
	case p.packetCh <- payload:
	default:
		glog.Warningf("%s: backlog full, packet dropped", topic)
	}
}

// AddToLoop implements LoopAdder.
func (p *Channel) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("mqtt", p))
}

// NewLink connects to the broker as the robot.
func NewLink(brokerURL, robotID string) (*link.Link, error) {
	c, err := NewClientFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	ch := NewChannel(c).ForRobot(robotID)
	return link.New("mqtt", link.NewPacketStream(ch)), nil
}
