package romi

import (
	"errors"

	"github.com/golang/glog"

	"github.com/robotalks/romi.go/pkg/control"
	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/hw"
)

// Pursuit states.
const (
	PursuitWaiting fx.State = iota
	PursuitActive
	PursuitDone
)

// Pursuit takes over from the line follower once the robot passes the
// hand-off point and steers through the course waypoints.
//
// The course frame has y to the right and a clockwise heading, so the
// estimate is mirrored before it's handed to the Pursuer.
type Pursuit struct {
	Config  PursuitTaskConfig
	Pursuer *control.Pursuer
	Bumper  hw.BumpSensor
	Shares  *Shares

	state   fx.State
	wallHit bool
}

// NewPursuit creates the task body. bumper may be nil.
func NewPursuit(conf PursuitTaskConfig, bumper hw.BumpSensor, shares *Shares) *Pursuit {
	return &Pursuit{
		Config:  conf,
		Pursuer: control.NewPursuer(conf.PursuitConfig, conf.Course),
		Bumper:  bumper,
		Shares:  shares,
	}
}

// State gets the current state.
func (p *Pursuit) State() fx.State {
	return p.state
}

// WallHit tells whether the wall has been hit.
func (p *Pursuit) WallHit() bool {
	return p.wallHit
}

// Step implements Stepper.
func (p *Pursuit) Step(fx.StepContext) (fx.State, error) {
	s := p.Shares
	x, errX := s.X.PeekNewest()
	y, errY := s.Y.PeekNewest()
	heading, errH := s.PredHeading.PeekNewest()
	if errX != nil || errY != nil || errH != nil {
		return p.state, nil
	}
	// mirror into the course frame
	y, heading = -y, -heading

	switch p.state {
	case PursuitWaiting:
		if x >= p.Config.HandOffX {
			s.LineStop.Put(true)
			p.state = PursuitActive
			glog.Infof("pursuit: taking over at (%.2f, %.2f)", x, y)
		}
	case PursuitActive:
		force := false
		if !p.wallHit && x < p.Config.WallMaxX && y < p.Config.WallMaxY &&
			p.Bumper != nil && p.Bumper.Triggered() {
			p.wallHit, force = true, true
			if p.Config.HeadingOffOnWall {
				s.HeadingOff.Put(true)
			}
			glog.Infof("pursuit: wall hit at (%.2f, %.2f)", x, y)
		}
		steer, err := p.Pursuer.Advance(x, y, heading, force)
		if errors.Is(err, control.ErrPathComplete) {
			s.SpeedSetpoint.Put(0)
			s.Offset.Put(0)
			p.state = PursuitDone
			glog.Info("pursuit: course complete")
			if p.Config.ShutdownOnComplete {
				return p.state, fx.ErrShutdown
			}
			return p.state, nil
		}
		if err != nil {
			return p.state, err
		}
		if s.SpeedSetpoint.Get() != 0 {
			s.SpeedSetpoint.Put(steer.Speed)
			s.Offset.Put(steer.Offset)
		} else {
			s.Offset.Put(0)
		}
	}
	return p.state, nil
}
