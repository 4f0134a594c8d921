package romi

import (
	"fmt"
	"time"

	"github.com/robotalks/romi.go/pkg/control"
	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/observer"
)

// Task priorities.
const (
	PriorityWheel      = 5
	PriorityIMU        = 4
	PriorityEstimator  = 3
	PriorityPursuit    = 3
	PriorityLineFollow = 2
	PriorityTalker     = 1
)

// WheelConfig tunes the wheel speed loops.
type WheelConfig struct {
	Period time.Duration `yaml:"period"`
	Kp     float64       `yaml:"kp"`
	Ki     float64       `yaml:"ki"`
	// MaxDelta is the largest effort change per tick, in percent.
	MaxDelta float64 `yaml:"max_delta"`
}

// EstimatorConfig configures the observer task.
type EstimatorConfig struct {
	Period      time.Duration   `yaml:"period"`
	SupplyVolts float64         `yaml:"supply_volts"`
	Model       observer.Params `yaml:"model"`
}

// LineFollowTaskConfig configures the line follow task.
type LineFollowTaskConfig struct {
	Period                   time.Duration `yaml:"period"`
	control.LineFollowConfig `yaml:",inline"`
}

// PursuitTaskConfig configures the pursuit task.
type PursuitTaskConfig struct {
	Period                time.Duration `yaml:"period"`
	control.PursuitConfig `yaml:",inline"`
	Course                control.Course `yaml:"course"`
	// HandOffX is the travelled X where pursuit takes over from
	// line following.
	HandOffX float64 `yaml:"hand_off_x"`
	// The wall is only expected below WallMaxX and WallMaxY in the
	// course frame.
	WallMaxX float64 `yaml:"wall_max_x"`
	WallMaxY float64 `yaml:"wall_max_y"`
	// HeadingOffOnWall disables the heading feedback of the
	// observer after the wall is hit.
	HeadingOffOnWall bool `yaml:"heading_off_on_wall"`
	// ShutdownOnComplete stops the scheduler when the course is done.
	ShutdownOnComplete bool `yaml:"shutdown_on_complete"`
}

// TalkerConfig configures the operator link task.
type TalkerConfig struct {
	Period time.Duration `yaml:"period"`
	// SendEvery sends one of this many assembled frames.
	SendEvery int `yaml:"send_every"`
}

// Config is the tuning of the whole task set.
type Config struct {
	Policy     string               `yaml:"policy"`
	Profile    bool                 `yaml:"profile"`
	Trace      bool                 `yaml:"trace"`
	Wheel      WheelConfig          `yaml:"wheel"`
	IMUPeriod  time.Duration        `yaml:"imu_period"`
	Estimator  EstimatorConfig      `yaml:"estimator"`
	LineFollow LineFollowTaskConfig `yaml:"line_follow"`
	Pursuit    PursuitTaskConfig    `yaml:"pursuit"`
	Talker     TalkerConfig         `yaml:"talker"`
}

// DefaultConfig returns the tuned configuration.
func DefaultConfig() *Config {
	return &Config{
		Policy:  fx.PolicyPriority.String(),
		Profile: true,
		Trace:   true,
		Wheel: WheelConfig{
			Period:   30 * time.Millisecond,
			Kp:       0.6,
			Ki:       15,
			MaxDelta: 25,
		},
		IMUPeriod: 30 * time.Millisecond,
		Estimator: EstimatorConfig{
			Period:      30 * time.Millisecond,
			SupplyVolts: 9,
			Model:       observer.DefaultParams,
		},
		LineFollow: LineFollowTaskConfig{
			Period:           30 * time.Millisecond,
			LineFollowConfig: control.DefaultLineFollowConfig,
		},
		Pursuit: PursuitTaskConfig{
			Period:             30 * time.Millisecond,
			PursuitConfig:      control.DefaultPursuitConfig,
			Course:             append(control.Course(nil), control.DefaultCourse...),
			HandOffX:           31.25,
			WallMaxX:           3,
			WallMaxY:           10,
			HeadingOffOnWall:   true,
			ShutdownOnComplete: true,
		},
		Talker: TalkerConfig{
			Period:    10 * time.Millisecond,
			SendEvery: 2,
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, ok := fx.ParsePolicy(c.Policy); !ok {
		return fmt.Errorf("unknown scheduling policy %q", c.Policy)
	}
	periods := map[string]time.Duration{
		"wheel":       c.Wheel.Period,
		"imu":         c.IMUPeriod,
		"estimator":   c.Estimator.Period,
		"line_follow": c.LineFollow.Period,
		"pursuit":     c.Pursuit.Period,
		"talker":      c.Talker.Period,
	}
	for name, period := range periods {
		if period <= 0 {
			return fmt.Errorf("%s: period must be positive, got %v", name, period)
		}
	}
	if c.Wheel.MaxDelta <= 0 {
		return fmt.Errorf("wheel: max_delta must be positive")
	}
	if c.Talker.SendEvery < 1 {
		return fmt.Errorf("talker: send_every must be at least 1")
	}
	if err := c.Pursuit.Course.Validate(); err != nil {
		return fmt.Errorf("pursuit: %w", err)
	}
	return nil
}

// SchedulingPolicy gets the parsed policy.
func (c *Config) SchedulingPolicy() fx.Policy {
	p, _ := fx.ParsePolicy(c.Policy)
	return p
}
