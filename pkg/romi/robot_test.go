package romi

import (
	"bytes"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/link"
	"github.com/robotalks/romi.go/pkg/observer"
	simromi "github.com/robotalks/romi.go/pkg/sim/bots/romi"
	"github.com/robotalks/romi.go/pkg/sim/physics"
	"github.com/robotalks/romi.go/pkg/telemetry"
)

type capturePort struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (p *capturePort) Read([]byte) (int, error) { select {} }

func (p *capturePort) Write(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.buf.Write(b)
}

func (p *capturePort) Bytes() []byte {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]byte(nil), p.buf.Bytes()...)
}

type memRecorder struct {
	reports []*Report
}

func (r *memRecorder) Record(report *Report) error {
	r.reports = append(r.reports, report)
	return nil
}

type rig struct {
	clock   *fx.ManualClock
	chassis *simromi.Chassis
	engine  *physics.Engine
	port    *capturePort
	link    *link.Link
	robot   *Robot
	loop    *fx.Loop
}

func newRig(t *testing.T) *rig {
	r := &rig{clock: &fx.ManualClock{}, port: &capturePort{}}
	r.chassis = simromi.NewConfig().NewChassis()
	r.engine = physics.NewEngine(r.clock, r.chassis.Body)
	r.engine.Sync()
	r.link = link.New("test", r.port)
	robot, err := New("test", DefaultConfig(), Hardware{
		Drive:      r.chassis.Drive(),
		IMU:        r.chassis.IMU(),
		LineSensor: r.chassis.LineSensor(),
		Bumper:     r.chassis.Bumper(),
		Link:       r.link,
	})
	require.NoError(t, err)
	require.NoError(t, robot.Start())
	r.robot = robot
	r.loop = fx.NewLoop(r.clock).Add(robot)
	return r
}

// run advances the simulation in lockstep with the scheduler.
func (r *rig) run(t *testing.T, d time.Duration) {
	for end := r.clock.Now() + d; r.clock.Now() < end; {
		r.clock.Advance(time.Millisecond)
		r.engine.Sync()
		for {
			ran, err := r.loop.Scheduler.Run(r.loop.Policy)
			require.NoError(t, err)
			if !ran {
				break
			}
		}
	}
}

func (r *rig) frames(t *testing.T) []*telemetry.Frame {
	return decodeSent(t, [][]byte{r.port.Bytes()})
}

func TestRobotDrivesOnCommand(t *testing.T) {
	r := newRig(t)
	r.run(t, 300*time.Millisecond)
	require.Equal(t, WheelStopped, r.robot.Wheel.State())
	require.Zero(t, r.chassis.Snapshot().Pose.X)

	r.link.Receive(SpeedCommand(8).Line())
	r.run(t, 1500*time.Millisecond)
	snap := r.chassis.Snapshot()
	require.Equal(t, WheelRunning, r.robot.Wheel.State())
	require.Greater(t, snap.Pose.X, 3.0)
	require.Less(t, math.Abs(snap.Pose.Y), 1.0)
	require.InDelta(t, 8, (snap.Vel[0]+snap.Vel[1])/2, 2)

	est := r.robot.Estimator.Observer.State()
	require.InDelta(t, snap.Pose.X, est[observer.PosX], 1.0)
	require.InDelta(t, snap.Pose.Y, est[observer.PosY], 1.0)

	frames := r.frames(t)
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	require.Equal(t, float32(8), last.SpeedSetpoint)
	require.Greater(t, last.X, float32(1))

	r.link.Receive(StopCommand().Line())
	r.run(t, time.Second)
	snap = r.chassis.Snapshot()
	require.Equal(t, WheelStopped, r.robot.Wheel.State())
	require.Equal(t, [2]float64{}, snap.Effort)
	require.Less(t, math.Abs(snap.Vel[0]), 0.1)
	require.Less(t, math.Abs(snap.Vel[1]), 0.1)
}

func TestRobotShutdown(t *testing.T) {
	r := newRig(t)
	rec := &memRecorder{}
	r.robot.RecordWith(rec)
	r.link.Receive(SpeedCommand(10).Line())
	r.run(t, 500*time.Millisecond)
	require.NotEqual(t, [2]float64{}, r.chassis.Snapshot().Effort)

	require.NoError(t, r.robot.Shutdown(fx.ErrShutdown))
	require.Equal(t, [2]float64{}, r.chassis.Snapshot().Effort)
	// disabled motors ignore efforts
	require.NoError(t, r.robot.Hardware.Drive.LeftMotor.SetEffort(50))
	require.Zero(t, r.chassis.Snapshot().Effort[0])

	require.Len(t, rec.reports, 1)
	report := rec.reports[0]
	require.Equal(t, "test", report.Robot)
	require.Equal(t, fx.ErrShutdown.Error(), report.Cause)
	require.Contains(t, report.Tasks, "Controller")
	require.Contains(t, report.Tasks, "Talker")
	require.Contains(t, report.Shares, "velo_set")
	require.Contains(t, report.Traces, "Task Controller:")
	require.Greater(t, report.Final[observer.PosX], 0.0)
}

func TestNewRobotValidates(t *testing.T) {
	d := newFakeDrive()
	hardware := Hardware{Drive: d.Drive(), IMU: nil, Link: &fakeLink{}}
	_, err := New("x", DefaultConfig(), hardware)
	require.Error(t, err)

	conf := DefaultConfig()
	conf.Talker.SendEvery = 0
	_, err = New("x", conf, hardware)
	require.ErrorContains(t, err, "send_every")

	conf = DefaultConfig()
	conf.Policy = "fifo"
	_, err = New("x", conf, hardware)
	require.ErrorContains(t, err, "policy")
}
