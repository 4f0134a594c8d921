package romi

import (
	"flag"

	"github.com/robotalks/romi.go/pkg/sim"
	"github.com/robotalks/romi.go/pkg/sim/physics/diffdrive"
)

// Config defines the simulated chassis and its surroundings.
// Positions are in inches in the world frame: X along the start line,
// Y to the left, heading counter-clockwise.
type Config struct {
	Body  diffdrive.Params `yaml:"body"`
	Start sim.Pose2D       `yaml:"-"`

	// Line is the tape band followed by the line sensor.
	Line sim.Rect `yaml:"-"`
	// Walls trigger the bump sensor.
	Walls []sim.Rect `yaml:"-"`

	SensorCount int     `yaml:"sensor_count"`
	SensorPitch float64 `yaml:"sensor_pitch"`
	// SensorAhead and BumperAhead are distances ahead of the axle.
	SensorAhead float64 `yaml:"sensor_ahead"`
	BumperAhead float64 `yaml:"bumper_ahead"`
}

// Defaults
const (
	DefaultSensorCount         = 13
	DefaultSensorPitch         = 0.315
	DefaultSensorAhead         = 2.8
	DefaultBumperAhead         = 3.3
	DefaultLineWidth           = 0.75
	DefaultLineLength  float64 = 32
)

var defaultConfig = Config{
	Body: diffdrive.DefaultParams,
	Line: sim.Rect{
		Pos2D:  sim.Pos2D{X: -6, Y: -DefaultLineWidth / 2},
		Size2D: sim.Size2D{CX: DefaultLineLength + 6, CY: DefaultLineWidth},
	},
	// a wall across the return leg, ahead of the start line
	Walls: []sim.Rect{
		{Pos2D: sim.Pos2D{X: -6, Y: -6}, Size2D: sim.Size2D{CX: 12, CY: 1}},
	},
	SensorCount: DefaultSensorCount,
	SensorPitch: DefaultSensorPitch,
	SensorAhead: DefaultSensorAhead,
	BumperAhead: DefaultBumperAhead,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.Body.SupplyVolts, "sim-supply", defaultConfig.Body.SupplyVolts, "Simulated battery voltage.")
	flag.Float64Var(&defaultConfig.Line.CX, "sim-line-length", defaultConfig.Line.CX, "Length (in) of the simulated tape line.")
	flag.IntVar(&defaultConfig.SensorCount, "sim-sensors", defaultConfig.SensorCount, "Number of line sensors.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Walls = append([]sim.Rect(nil), defaultConfig.Walls...)
	return &conf
}

// NewChassis creates the Chassis.
func (c *Config) NewChassis() *Chassis {
	return NewChassis(*c)
}
