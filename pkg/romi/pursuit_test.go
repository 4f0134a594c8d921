package romi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/romi.go/pkg/control"
	fx "github.com/robotalks/romi.go/pkg/framework"
)

func placeEstimate(s *Shares, x, y, heading float64) {
	s.X.Put(x)
	s.Y.Put(y)
	s.PredHeading.Put(heading)
}

func pursuitConfig(course control.Course) PursuitTaskConfig {
	conf := DefaultConfig().Pursuit
	conf.Course = course
	return conf
}

func TestPursuitHandOff(t *testing.T) {
	s := NewShares()
	p := NewPursuit(pursuitConfig(control.DefaultCourse), nil, s)

	// nothing estimated yet
	state, err := p.Step(stepAt(0))
	require.NoError(t, err)
	require.Equal(t, PursuitWaiting, state)

	placeEstimate(s, 20, 0, 0)
	state, err = p.Step(stepAt(0))
	require.NoError(t, err)
	require.Equal(t, PursuitWaiting, state)
	require.False(t, s.LineStop.Get())

	placeEstimate(s, 31.25, 0, 0)
	state, err = p.Step(stepAt(0))
	require.NoError(t, err)
	require.Equal(t, PursuitActive, state)
	require.True(t, s.LineStop.Get())
}

func TestPursuitSteersInCourseFrame(t *testing.T) {
	course := control.Course{{X: 40, Y: 0, Speed: 5, BrakeDist: 2, HeadingGain: 3}}
	s := NewShares()
	p := NewPursuit(pursuitConfig(course), nil, s)
	placeEstimate(s, 32, 5, 0)
	_, err := p.Step(stepAt(0))
	require.NoError(t, err)

	s.SpeedSetpoint.Put(10)
	_, err = p.Step(stepAt(0))
	require.NoError(t, err)
	// the target is to the right of a robot left of the x axis
	alpha := math.Atan2(5, 8)
	require.InDelta(t, 3*alpha, s.Offset.Get(), 1e-9)
	dist := math.Hypot(8, 5)
	conf := control.DefaultPursuitConfig
	expect := 5 + (conf.FullThrottle+conf.ApproachGain*(dist-2))/(1+conf.HeadingWeight*alpha)
	require.InDelta(t, expect, s.SpeedSetpoint.Get(), 1e-9)

	// a stopped robot stays stopped
	s.SpeedSetpoint.Put(0)
	_, err = p.Step(stepAt(0))
	require.NoError(t, err)
	require.Zero(t, s.SpeedSetpoint.Get())
	require.Zero(t, s.Offset.Get())
}

func TestPursuitWallContact(t *testing.T) {
	course := control.Course{
		{X: 0, Y: 2, Speed: 10, BrakeDist: 6, HeadingGain: 9},
		{X: 15, Y: 12, Speed: 14, BrakeDist: 7, HeadingGain: 9},
	}
	bumper := fakeBumper(false)
	s := NewShares()
	p := NewPursuit(pursuitConfig(course), &bumper, s)
	p.state = PursuitActive
	s.SpeedSetpoint.Put(10)

	// contact outside of the wall region is ignored
	bumper = true
	placeEstimate(s, 10, -5, math.Pi/2)
	_, err := p.Step(stepAt(0))
	require.NoError(t, err)
	require.Equal(t, 0, p.Pursuer.Index())
	require.False(t, p.WallHit())

	placeEstimate(s, 1, -5, math.Pi/2)
	_, err = p.Step(stepAt(0))
	require.NoError(t, err)
	require.Equal(t, 1, p.Pursuer.Index())
	require.True(t, p.WallHit())
	require.True(t, s.HeadingOff.Get())
	require.Equal(t, control.DefaultPursuitConfig.SettleSpeed, s.SpeedSetpoint.Get())

	// only once
	_, err = p.Step(stepAt(0))
	require.NoError(t, err)
	require.Equal(t, 1, p.Pursuer.Index())
}

func TestPursuitComplete(t *testing.T) {
	course := control.Course{{X: 40, Y: 0, Speed: 5, HeadingGain: 3}}
	testCases := []struct {
		name     string
		shutdown bool
	}{
		{name: "shutdown", shutdown: true},
		{name: "hold"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := pursuitConfig(course)
			conf.ShutdownOnComplete = tc.shutdown
			s := NewShares()
			p := NewPursuit(conf, nil, s)
			p.state = PursuitActive
			s.SpeedSetpoint.Put(10)
			s.Offset.Put(1)
			placeEstimate(s, 40, 0, 0)
			state, err := p.Step(stepAt(0))
			require.Equal(t, PursuitDone, state)
			if tc.shutdown {
				require.Equal(t, fx.ErrShutdown, err)
			} else {
				require.NoError(t, err)
			}
			require.Zero(t, s.SpeedSetpoint.Get())
			require.Zero(t, s.Offset.Get())

			state, err = p.Step(stepAt(0))
			require.NoError(t, err)
			require.Equal(t, PursuitDone, state)
		})
	}
}
