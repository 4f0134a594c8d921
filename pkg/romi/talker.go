package romi

import (
	"errors"

	"github.com/golang/glog"

	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/hw"
	"github.com/robotalks/romi.go/pkg/telemetry"
)

// Talker states.
const (
	TalkerListening fx.State = iota
	TalkerCommand
)

// Talker serves the operator link. Receiving has priority: a frame is
// only assembled on a tick without a complete command line.
type Talker struct {
	Config  TalkerConfig
	Link    hw.Link
	Shares  *Shares
	Encoder *telemetry.Encoder

	state     fx.State
	assembled int
	sent      int
	rejected  int
}

// NewTalker creates the task body.
func NewTalker(conf TalkerConfig, link hw.Link, shares *Shares) *Talker {
	return &Talker{
		Config:  conf,
		Link:    link,
		Shares:  shares,
		Encoder: telemetry.NewEncoder(),
	}
}

// Sent gets the number of frames sent.
func (t *Talker) Sent() int {
	return t.sent
}

// Rejected gets the number of lines which were not valid commands.
func (t *Talker) Rejected() int {
	return t.rejected
}

// Step implements Stepper.
func (t *Talker) Step(fx.StepContext) (fx.State, error) {
	if line, ok := t.Link.CheckForCompleteLine(); ok {
		t.state = TalkerCommand
		t.handle(line)
		return t.state, nil
	}
	t.state = TalkerListening
	if !t.ready() {
		return t.state, nil
	}
	frame := t.assemble()
	skip := t.assembled%t.Config.SendEvery != 0
	t.assembled++
	if skip {
		return t.state, nil
	}
	pkt, err := t.Encoder.Encode(frame)
	if err != nil {
		glog.Warningf("telemetry encode: %v", err)
		return t.state, nil
	}
	if err := t.Link.Send(pkt); err != nil {
		glog.Warningf("telemetry send: %v", err)
		return t.state, nil
	}
	t.sent++
	return t.state, nil
}

func (t *Talker) handle(line string) {
	cmd, err := ParseCommand(line)
	if err != nil {
		t.rejected++
		if !errors.Is(err, ErrNotCommand) || bool(glog.V(2)) {
			glog.Warningf("operator: %v", err)
		}
		return
	}
	glog.Infof("operator: %s", cmd)
	s := t.Shares
	switch cmd.Kind {
	case CmdSpeed:
		s.SpeedSetpoint.Put(cmd.Value)
	case CmdStop:
		s.SpeedSetpoint.Put(0)
	case CmdHeadingFeedback:
		s.HeadingOff.Put(cmd.Value == 0)
	}
}

// ready checks every producer has more than one sample, so taking one
// never leaves a queue empty for the other consumers.
func (t *Talker) ready() bool {
	s := t.Shares
	return s.TimeLeft.HasMany() &&
		s.TimeRight.HasMany() &&
		s.CmdLeft.HasMany() &&
		s.Heading.HasMany() &&
		s.PredPosLeft.HasMany()
}

func (t *Talker) assemble() *telemetry.Frame {
	s := t.Shares
	get := func(q interface{ Get() (float64, error) }) float32 {
		v, _ := q.Get()
		return float32(v)
	}
	timeL, _ := s.TimeLeft.Get()
	timeR, _ := s.TimeRight.Get()
	return &telemetry.Frame{
		TimeLeft:      timeL,
		TimeRight:     timeR,
		PosLeft:       get(s.PosLeft),
		VelLeft:       get(s.VelLeft),
		VelRight:      get(s.VelRight),
		PosRight:      get(s.PosRight),
		CmdLeft:       get(s.CmdLeft),
		CmdRight:      get(s.CmdRight),
		Heading:       get(s.Heading),
		YawRate:       get(s.YawRate),
		Offset:        float32(s.Offset.Get()),
		X:             get(s.X),
		Y:             get(s.Y),
		PredVelRight:  get(s.PredVelRight),
		PredVelLeft:   get(s.PredVelLeft),
		PredHeading:   get(s.PredHeading),
		SpeedSetpoint: float32(s.SpeedSetpoint.Get()),
		PredPosLeft:   get(s.PredPosLeft),
		PredPosRight:  get(s.PredPosRight),
	}
}
