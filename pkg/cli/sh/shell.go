package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/romi.go/pkg/config"
	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/link"
	"github.com/robotalks/romi.go/pkg/link/websocket"
	"github.com/robotalks/romi.go/pkg/romi"
	"github.com/robotalks/romi.go/pkg/telemetry"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *config.Config
	Loop   *ConnLoop
}

// ConnLoop is a running loop with a robot connection.
type ConnLoop struct {
	Ctx    context.Context
	Cancel func()
	Target string
	Loop   *fx.Loop
	Conn   *Conn
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&SpeedCmd,
		&StopCmd,
		&IMUCmd,
		&FrameCmd,
		&StatsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Loop == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// DoCommand sends a command to the connected robot.
func DoCommand(c *ishell.Context, cmd romi.Command) error {
	s := ShellFrom(c)
	if s.Loop == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	if err := s.Loop.Conn.Send(cmd); err != nil {
		c.Err(err)
		return err
	}
	if !s.OutputJSON {
		c.Println("OK")
	}
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DefaultTarget picks the link to connect from the config: MQTT,
// then serial, then the websocket of a local robot.
func (s *Shell) DefaultTarget() string {
	switch {
	case s.Config.MQTTBrokerURL != "":
		return s.Config.MQTTBrokerURL
	case s.Config.SerialPort != "":
		return s.Config.SerialPort
	case s.Config.WebsocketAddr != "":
		return "ws://" + s.Config.WebsocketAddr + websocket.DefaultPath
	}
	return ""
}

// Connect connects a robot.
func (s *Shell) Connect(target string) error {
	conn, err := Dial(target, s.Config.ID, s.Config.BaudRate)
	if err != nil {
		return err
	}
	connLoop := &ConnLoop{Target: target, Conn: conn}
	connLoop.Ctx, connLoop.Cancel = context.WithCancel(context.Background())
	connLoop.Loop = fx.NewLoop(fx.NewSystemClock())
	connLoop.Loop.Add(conn)
	if s.Loop != nil {
		s.Loop.Cancel()
	}
	s.Loop = connLoop
	go connLoop.Loop.Run(connLoop.Ctx)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", conn.Name))
	return nil
}

// Disconnect disconnects current robot.
func (s *Shell) Disconnect() {
	if s.Loop != nil {
		s.Loop.Cancel()
		s.Loop = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if target := s.DefaultTarget(); s.AutoConnect && target != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", target)
		}
		if err := s.Connect(target); err != nil {
			log.Fatalf("connect %q failed: %v", target, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

func (s *Shell) printJSON(c *ishell.Context, v interface{}) {
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

func parseOnOff(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("expect on or off, got %q", arg)
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name: "ports",
		Help: "list serial ports",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ports, err := link.SerialPorts()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if ports == nil {
					ports = []string{}
				}
				s.printJSON(c, ports)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// ConnectCmd connects a robot.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[SERIAL|mqtt://BROKER/PREFIX|ws://HOST/PATH]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			target := s.DefaultTarget()
			if len(c.Args) > 0 {
				target = c.Args[0]
			}
			if target == "" {
				c.Err(fmt.Errorf("no target specified"))
				return
			}
			if err := s.Connect(target); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current robot.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// SpeedCmd sets the speed setpoint.
	SpeedCmd = ishell.Cmd{
		Name:    "spd",
		Aliases: []string{"speed"},
		Help:    "IN_PER_SEC",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("speed expected"))
				return
			}
			v, err := strconv.ParseFloat(c.Args[0], 64)
			if err != nil {
				c.Err(fmt.Errorf("invalid speed: %w", err))
				return
			}
			DoCommand(c, romi.SpeedCommand(v))
		}),
	}

	// StopCmd stops the robot.
	StopCmd = ishell.Cmd{
		Name:    "stop",
		Aliases: []string{"s"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			DoCommand(c, romi.StopCommand())
		}),
	}

	// IMUCmd toggles the heading feedback of the observer.
	IMUCmd = ishell.Cmd{
		Name: "imu",
		Help: "on|off",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("on or off expected"))
				return
			}
			on, err := parseOnOff(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			DoCommand(c, romi.HeadingFeedbackCommand(on))
		}),
	}

	// FrameCmd prints the latest telemetry frame.
	FrameCmd = ishell.Cmd{
		Name:    "frame",
		Aliases: []string{"f"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			f := s.Loop.Conn.Last()
			if f == nil {
				c.Err(fmt.Errorf("no telemetry received"))
				return
			}
			if s.OutputJSON {
				s.printJSON(c, f)
				return
			}
			c.Println(FormatFrame(f))
		}),
	}

	// StatsCmd prints link statistics.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			frames, bad, dropped := s.Loop.Conn.Stats()
			if s.OutputJSON {
				s.printJSON(c, map[string]int{"frames": frames, "bad": bad, "dropped": dropped})
				return
			}
			c.Printf("frames %d bad %d dropped %d\n", frames, bad, dropped)
		}),
	}
)

// FormatFrame renders the frame for display.
func FormatFrame(f *telemetry.Frame) string {
	return fmt.Sprintf("t=%d/%dms setpoint=%.1f x=%.2f y=%.2f heading=%.3f (pred %.3f)\n"+
		"  vel %.2f/%.2f (pred %.2f/%.2f) pos %.2f/%.2f (pred %.2f/%.2f)\n"+
		"  cmd %.1f/%.1f offset %.2f yaw_rate %.3f",
		f.TimeLeft, f.TimeRight, f.SpeedSetpoint, f.X, f.Y, f.Heading, f.PredHeading,
		f.VelLeft, f.VelRight, f.PredVelLeft, f.PredVelRight,
		f.PosLeft, f.PosRight, f.PredPosLeft, f.PredPosRight,
		f.CmdLeft, f.CmdRight, f.Offset, f.YawRate)
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(config.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
