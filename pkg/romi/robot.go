package romi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/hw"
	"github.com/robotalks/romi.go/pkg/observer"
)

// Hardware is what the task set drives. Bumper is optional.
type Hardware struct {
	Drive      *hw.Drive
	IMU        hw.OrientationSensor
	LineSensor hw.Reflectance
	Bumper     hw.BumpSensor
	Link       hw.Link
}

func (h *Hardware) validate() error {
	switch {
	case h.Drive == nil || h.Drive.LeftMotor == nil || h.Drive.RightMotor == nil:
		return errors.New("missing motors")
	case h.Drive.LeftEncoder == nil || h.Drive.RightEncoder == nil:
		return errors.New("missing encoders")
	case h.IMU == nil:
		return errors.New("missing IMU")
	case h.LineSensor == nil:
		return errors.New("missing line sensor")
	case h.Link == nil:
		return errors.New("missing link")
	}
	return nil
}

// Report summarizes a run. It's produced on shutdown.
type Report struct {
	Robot    string
	Started  time.Time
	Ended    time.Time
	Cause    string
	Waypoint int
	WallHit  bool
	Final    observer.State
	Tasks    string
	Shares   string
	Traces   string
}

// Recorder persists run reports.
type Recorder interface {
	Record(*Report) error
}

// Robot is the assembled task set.
type Robot struct {
	ID       string
	Config   *Config
	Hardware Hardware
	Shares   *Shares

	Wheel      *WheelControl
	IMU        *IMUSampler
	Estimator  *Estimator
	Pursuit    *Pursuit
	LineFollow *LineFollow
	Talker     *Talker

	Tasks []*fx.Task

	recorders []Recorder
	started   time.Time
	scheduler *fx.Scheduler
}

// New creates the Robot.
func New(id string, conf *Config, hardware Hardware) (*Robot, error) {
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := hardware.validate(); err != nil {
		return nil, fmt.Errorf("hardware: %w", err)
	}
	shares := NewShares()
	r := &Robot{
		ID:         id,
		Config:     conf,
		Hardware:   hardware,
		Shares:     shares,
		Wheel:      NewWheelControl(conf.Wheel, hardware.Drive, shares),
		IMU:        &IMUSampler{IMU: hardware.IMU, Shares: shares},
		Estimator:  NewEstimator(conf.Estimator, shares),
		Pursuit:    NewPursuit(conf.Pursuit, hardware.Bumper, shares),
		LineFollow: NewLineFollow(conf.LineFollow.LineFollowConfig, hardware.LineSensor, shares),
		Talker:     NewTalker(conf.Talker, hardware.Link, shares),
		started:    time.Now(),
	}
	r.Tasks = []*fx.Task{
		r.task("Controller", PriorityWheel, conf.Wheel.Period, r.Wheel),
		r.task("IMU", PriorityIMU, conf.IMUPeriod, r.IMU),
		r.task("Observer", PriorityEstimator, conf.Estimator.Period, r.Estimator),
		r.task("Pursuer", PriorityPursuit, conf.Pursuit.Period, r.Pursuit),
		r.task("LineFollow", PriorityLineFollow, conf.LineFollow.Period, r.LineFollow),
		r.task("Talker", PriorityTalker, conf.Talker.Period, r.Talker),
	}
	return r, nil
}

func (r *Robot) task(name string, priority int, period time.Duration, stepper fx.Stepper) *fx.Task {
	t := fx.NewTask(name, priority, stepper).WithPeriod(period)
	if r.Config.Profile {
		t.WithProfile()
	}
	if r.Config.Trace {
		t.WithTrace()
	}
	return t
}

// RecordWith adds recorders invoked on shutdown.
func (r *Robot) RecordWith(recorders ...Recorder) *Robot {
	r.recorders = append(r.recorders, recorders...)
	return r
}

// Start enables the motors.
func (r *Robot) Start() error {
	if err := r.Hardware.Drive.Enable(); err != nil {
		return fmt.Errorf("enable motors: %w", err)
	}
	r.started = time.Now()
	return nil
}

// AddToLoop implements LoopAdder.
func (r *Robot) AddToLoop(loop *fx.Loop) {
	r.scheduler = loop.Scheduler
	loop.Policy = r.Config.SchedulingPolicy()
	loop.AddTask(r.Tasks...)
	if adder, ok := r.Hardware.Link.(fx.LoopAdder); ok {
		loop.Add(adder)
	}
	loop.OnShutdown(r)
}

// Shutdown implements ShutdownHook. Motors are stopped first, then the
// run is reported.
func (r *Robot) Shutdown(cause error) error {
	var errs fx.AggregatedError
	drive := r.Hardware.Drive
	errs.Add(drive.Stop(), drive.Disable())

	report := r.Report(cause)
	glog.Infof("tasks:\n%s", report.Tasks)
	glog.Infof("shares:\n%s", report.Shares)
	if report.Traces != "" {
		glog.Infof("traces:\n%s", report.Traces)
	}
	for _, rec := range r.recorders {
		if err := rec.Record(report); err != nil {
			errs.Add(fmt.Errorf("record run: %w", err))
		}
	}
	return errs.Aggregate()
}

// Report builds the run report.
func (r *Robot) Report(cause error) *Report {
	report := &Report{
		Robot:    r.ID,
		Started:  r.started,
		Ended:    time.Now(),
		Waypoint: r.Pursuit.Pursuer.Index(),
		WallHit:  r.Pursuit.WallHit(),
		Final:    r.Estimator.Observer.State(),
		Shares:   r.Shares.Registry.String(),
	}
	if cause != nil {
		report.Cause = cause.Error()
	}
	if r.scheduler != nil {
		report.Tasks = r.scheduler.String()
	} else {
		rows := make([]string, len(r.Tasks))
		for n, t := range r.Tasks {
			rows[n] = t.String()
		}
		report.Tasks = strings.Join(rows, "\n")
	}
	if r.Config.Trace {
		traces := make([]string, len(r.Tasks))
		for n, t := range r.Tasks {
			traces[n] = t.Trace()
		}
		report.Traces = strings.Join(traces, "\n")
	}
	return report
}
