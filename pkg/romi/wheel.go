package romi

import (
	"fmt"
	"time"

	"github.com/robotalks/romi.go/pkg/control"
	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/hw"
)

// Wheel control states.
const (
	WheelInit fx.State = iota
	WheelRunning
	WheelStopped
)

// WheelControl closes the speed loops of both wheels. The forward
// speed setpoint is split by the steering offset: the left wheel runs
// at setpoint+offset and the right one at setpoint-offset.
type WheelControl struct {
	Config WheelConfig
	Drive  *hw.Drive
	Shares *Shares

	state               fx.State
	piLeft, piRight     *control.PI
	slewLeft, slewRight *control.SlewLimiter
}

// NewWheelControl creates the task body.
func NewWheelControl(conf WheelConfig, drive *hw.Drive, shares *Shares) *WheelControl {
	return &WheelControl{
		Config:    conf,
		Drive:     drive,
		Shares:    shares,
		piLeft:    control.NewPI(conf.Kp, conf.Ki),
		piRight:   control.NewPI(conf.Kp, conf.Ki),
		slewLeft:  control.NewSlewLimiter(conf.MaxDelta),
		slewRight: control.NewSlewLimiter(conf.MaxDelta),
	}
}

// State gets the current state.
func (w *WheelControl) State() fx.State {
	return w.state
}

// Step implements Stepper.
func (w *WheelControl) Step(ctx fx.StepContext) (fx.State, error) {
	now := ctx.Now()
	s := w.Shares
	d := w.Drive
	d.LeftEncoder.Update()
	d.RightEncoder.Update()

	switch w.state {
	case WheelInit:
		w.reset(now)
		w.state = WheelRunning
	case WheelRunning:
		cmd := s.SpeedSetpoint.Get()
		if cmd == 0 {
			if err := w.apply(0, 0); err != nil {
				return w.state, err
			}
			w.slewLeft.Reset(0)
			w.slewRight.Reset(0)
			w.state = WheelStopped
			break
		}
		off := s.Offset.Get()
		velL, velR := d.LeftEncoder.Velocity(), d.RightEncoder.Velocity()
		effL := w.slewLeft.Limit(w.piLeft.Update(cmd+off, velL, now))
		effR := w.slewRight.Limit(w.piRight.Update(cmd-off, velR, now))
		if err := w.apply(effL, effR); err != nil {
			return w.state, err
		}
	case WheelStopped:
		s.CmdLeft.Put(0)
		s.CmdRight.Put(0)
		if s.SpeedSetpoint.Get() != 0 {
			d.LeftEncoder.Zero()
			d.RightEncoder.Zero()
			w.reset(now)
			w.state = WheelRunning
		}
	}

	ms := uint32(now / time.Millisecond)
	s.TimeLeft.Put(ms)
	s.TimeRight.Put(ms)
	s.PosLeft.Put(d.LeftEncoder.Position())
	s.PosRight.Put(d.RightEncoder.Position())
	s.VelLeft.Put(d.LeftEncoder.Velocity())
	s.VelRight.Put(d.RightEncoder.Velocity())
	return w.state, nil
}

func (w *WheelControl) reset(now time.Duration) {
	w.piLeft.Reset(now)
	w.piRight.Reset(now)
}

func (w *WheelControl) apply(left, right float64) error {
	if err := w.Drive.LeftMotor.SetEffort(left); err != nil {
		return fmt.Errorf("left motor: %w", err)
	}
	if err := w.Drive.RightMotor.SetEffort(right); err != nil {
		return fmt.Errorf("right motor: %w", err)
	}
	w.Shares.CmdLeft.Put(left)
	w.Shares.CmdRight.Put(right)
	return nil
}
