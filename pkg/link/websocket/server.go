// Package websocket serves the link to browser clients. Every client
// receives the telemetry; commands from any client are merged.
package websocket

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/link"
)

// DefaultPath is where the link is served.
const DefaultPath = "/link"

// DefaultBacklog is the number of buffered command packets.
const DefaultBacklog = 16

// Server implements link.PacketReadWriter for all connected clients.
type Server struct {
	Addr string
	Path string

	lock     sync.Mutex
	conns    map[*websocket.Conn]struct{}
	packetCh chan []byte
	done     chan struct{}
	once     sync.Once
}

// NewServer creates a Server listening on addr.
func NewServer(addr string) *Server {
	return &Server{
		Addr:     addr,
		Path:     DefaultPath,
		conns:    make(map[*websocket.Conn]struct{}),
		packetCh: make(chan []byte, DefaultBacklog),
		done:     make(chan struct{}),
	}
}

// Handler gets the websocket handler.
func (s *Server) Handler() http.Handler {
	return websocket.Handler(s.serve)
}

// Clients gets the number of connected clients.
func (s *Server) Clients() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.conns)
}

func (s *Server) serve(conn *websocket.Conn) {
	s.lock.Lock()
	s.conns[conn] = struct{}{}
	s.lock.Unlock()
	glog.Infof("websocket client %s connected", conn.Request().RemoteAddr)
	defer func() {
		s.lock.Lock()
		delete(s.conns, conn)
		s.lock.Unlock()
		conn.Close()
	}()
	for {
		var pkt []byte
		if err := websocket.Message.Receive(conn, &pkt); err != nil {
			if err != io.EOF {
				glog.Warningf("websocket client %s: %v", conn.Request().RemoteAddr, err)
			}
			return
		}
		select {
		case s.packetCh <- pkt:
		case <-s.done:
			return
		default:
			glog.Warningf("websocket backlog full, packet dropped")
		}
	}
}

// ReadPacket implements PacketReader.
func (s *Server) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-s.packetCh:
		return pkt, nil
	case <-s.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter. A client failing to receive
// is disconnected.
func (s *Server) WritePacket(pkt []byte) error {
	s.lock.Lock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.lock.Unlock()
	for _, conn := range conns {
		if err := websocket.Message.Send(conn, pkt); err != nil {
			glog.Warningf("websocket send: %v", err)
			conn.Close()
		}
	}
	return nil
}

// Close implements io.Closer.
func (s *Server) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on the listener until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(s.Path, s.Handler())
	srv := &http.Server{Handler: mux}
	glog.Infof("websocket link on %s%s", ln.Addr(), s.Path)
	defer s.Close()
	err := fx.RunWithContextCancel(ctx, func() { srv.Close() }, func() error {
		return srv.Serve(ln)
	})
	if err == http.ErrServerClosed {
		err = nil
	}
	return err
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("websocket", s))
}

// NewLink creates a Link served on addr.
func NewLink(addr string) (*link.Link, *Server) {
	s := NewServer(addr)
	return link.New("websocket", link.NewPacketStream(s)), s
}
