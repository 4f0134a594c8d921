// Package hw defines the narrow contracts of the hardware the control
// tasks drive. Implementations live elsewhere: pkg/sim provides a
// simulated chassis, pkg/link provides byte-stream links.
package hw

// Motor is a PWM driven DC motor.
type Motor interface {
	// SetEffort sets the duty cycle in percent, -100 to 100.
	SetEffort(percent float64) error
	Enable() error
	Disable() error
}

// Encoder is a quadrature wheel encoder.
type Encoder interface {
	// Update samples the counter. It must be called once per
	// control tick before reading.
	Update()
	// Position gets the wheel travel in inches.
	Position() float64
	// Velocity gets the wheel speed in inches per second.
	Velocity() float64
	// Zero resets the position and velocity reference.
	Zero()
}

// OrientationSensor is an IMU providing the yaw.
type OrientationSensor interface {
	// Heading gets the continuous (unwrapped) heading in radians.
	Heading() (float64, error)
	// YawRate gets the yaw rate in radians per second.
	YawRate() (float64, error)
}

// Reflectance is a line sensor array.
type Reflectance interface {
	// Read gets calibrated readings in [0, 1000], one per sensor.
	Read() ([]uint16, error)
}

// BumpSensor detects contact with an obstacle.
type BumpSensor interface {
	Triggered() bool
}

// Link is a line oriented byte-stream link.
type Link interface {
	// CheckForCompleteLine returns a received line when one is complete.
	// It never blocks.
	CheckForCompleteLine() (string, bool)
	// Send transmits the bytes.
	Send([]byte) error
}

// Drive groups the two sides of a differential drive.
type Drive struct {
	LeftMotor    Motor
	RightMotor   Motor
	LeftEncoder  Encoder
	RightEncoder Encoder
}

// Stop sets both motors to zero effort. Both motors are attempted
// even if one fails.
func (d *Drive) Stop() error {
	errL := d.LeftMotor.SetEffort(0)
	errR := d.RightMotor.SetEffort(0)
	if errL != nil {
		return errL
	}
	return errR
}

// Enable enables both motors.
func (d *Drive) Enable() error {
	if err := d.LeftMotor.Enable(); err != nil {
		return err
	}
	return d.RightMotor.Enable()
}

// Disable disables both motors.
func (d *Drive) Disable() error {
	errL := d.LeftMotor.Disable()
	errR := d.RightMotor.Disable()
	if errL != nil {
		return errL
	}
	return errR
}
