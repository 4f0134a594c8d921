package romi

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/romi.go/pkg/sim"
)

func TestMotorsRequireEnable(t *testing.T) {
	c := NewConfig().NewChassis()
	d := c.Drive()
	require.NoError(t, d.LeftMotor.SetEffort(50))
	require.Zero(t, c.Snapshot().Effort[0])

	require.NoError(t, d.Enable())
	require.NoError(t, d.LeftMotor.SetEffort(50))
	require.NoError(t, d.RightMotor.SetEffort(-20))
	require.Equal(t, [2]float64{50, -20}, c.Snapshot().Effort)

	require.Error(t, d.LeftMotor.SetEffort(101))
	require.Error(t, d.RightMotor.SetEffort(math.NaN()))
	require.NoError(t, d.Stop())
	require.Equal(t, [2]float64{}, c.Snapshot().Effort)
}

func TestEncodersLatchOnUpdate(t *testing.T) {
	c := NewConfig().NewChassis()
	d := c.Drive()
	require.NoError(t, d.Enable())
	require.NoError(t, d.LeftMotor.SetEffort(40))
	require.NoError(t, d.RightMotor.SetEffort(40))
	c.Body.Advance(time.Second)

	require.Zero(t, d.LeftEncoder.Position())
	d.LeftEncoder.Update()
	d.RightEncoder.Update()
	s := c.Snapshot()
	require.Equal(t, s.Path[0], d.LeftEncoder.Position())
	require.Equal(t, s.Vel[1], d.RightEncoder.Velocity())
	require.Greater(t, d.LeftEncoder.Position(), 0.0)

	d.LeftEncoder.Zero()
	require.Zero(t, d.LeftEncoder.Position())
	c.Body.Advance(100 * time.Millisecond)
	d.LeftEncoder.Update()
	require.InDelta(t, c.Snapshot().Path[0]-s.Path[0], d.LeftEncoder.Position(), 1e-9)
}

func TestIMUUnwrapsHeading(t *testing.T) {
	conf := NewConfig()
	conf.Start = sim.Pose2D{Orientation: sim.AngleFromDegrees(90)}
	c := conf.NewChassis()
	d := c.Drive()
	require.NoError(t, d.Enable())
	require.NoError(t, d.LeftMotor.SetEffort(-50))
	require.NoError(t, d.RightMotor.SetEffort(50))

	imu := c.IMU()
	h, err := imu.Heading()
	require.NoError(t, err)
	require.InDelta(t, 0, h, 1e-9)
	// sample often enough to see every half turn
	for i := 0; i < 200; i++ {
		c.Body.Advance(20 * time.Millisecond)
		h, err = imu.Heading()
		require.NoError(t, err)
	}
	s := c.Snapshot()
	require.Greater(t, h, 2*math.Pi)
	require.InDelta(t, s.Heading-math.Pi/2, h, 1e-6)
	rate, err := imu.YawRate()
	require.NoError(t, err)
	require.InDelta(t, s.YawRate, rate, 1e-9)
}

func TestReflectance(t *testing.T) {
	testCases := []struct {
		name   string
		y      float64
		expect func(t *testing.T, r []uint16)
	}{
		{
			name: "centered",
			expect: func(t *testing.T, r []uint16) {
				require.Equal(t, uint16(ReflectanceFull), r[DefaultSensorCount/2])
				require.Zero(t, r[0])
				require.Zero(t, r[DefaultSensorCount-1])
			},
		},
		{
			// the line is to the right of the robot
			name: "robot left of line",
			y:    1,
			expect: func(t *testing.T, r []uint16) {
				require.Zero(t, r[DefaultSensorCount/2])
				require.NotZero(t, r[DefaultSensorCount/2+3])
			},
		},
		{
			name: "far off line",
			y:    10,
			expect: func(t *testing.T, r []uint16) {
				require.Equal(t, make([]uint16, DefaultSensorCount), r)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			conf.Start = sim.Pose2D{Pos2D: sim.Pos2D{Y: tc.y}}
			r, err := conf.NewChassis().LineSensor().Read()
			require.NoError(t, err)
			require.Len(t, r, DefaultSensorCount)
			tc.expect(t, r)
		})
	}
}

func TestBumper(t *testing.T) {
	conf := NewConfig()
	conf.Start = sim.Pose2D{
		Pos2D:       sim.Pos2D{Y: -12},
		Orientation: sim.AngleFromDegrees(90),
	}
	c := conf.NewChassis()
	require.False(t, c.Bumper().Triggered())

	c.Body.Place(sim.Pose2D{
		Pos2D:       sim.Pos2D{Y: -6 - DefaultBumperAhead + 0.5},
		Orientation: sim.AngleFromDegrees(90),
	})
	require.True(t, c.Bumper().Triggered())
}
