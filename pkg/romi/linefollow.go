package romi

import (
	"github.com/golang/glog"

	"github.com/robotalks/romi.go/pkg/control"
	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/hw"
)

// LineFollow steers along the tape until the pursuit takes over.
type LineFollow struct {
	Follower *control.LineFollower
	Sensor   hw.Reflectance
	Shares   *Shares
}

// NewLineFollow creates the task body.
func NewLineFollow(conf control.LineFollowConfig, sensor hw.Reflectance, shares *Shares) *LineFollow {
	return &LineFollow{
		Follower: control.NewLineFollower(conf),
		Sensor:   sensor,
		Shares:   shares,
	}
}

// Step implements Stepper.
func (l *LineFollow) Step(ctx fx.StepContext) (fx.State, error) {
	s := l.Shares
	readings, err := l.Sensor.Read()
	if err != nil {
		glog.Warningf("line sensor: %v", err)
		return fx.State(l.Follower.State()), nil
	}
	out, active := l.Follower.Update(readings, s.SpeedSetpoint.Get(), s.X.PeekOr(0), s.LineStop.Get(), ctx.Now())
	if active {
		s.Offset.Put(out)
	}
	return fx.State(l.Follower.State()), nil
}
