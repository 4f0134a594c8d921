package romi

import (
	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/observer"
)

// Estimator advances the observer once per tick from the motor
// commands and the latest sensor samples, and publishes the estimate.
type Estimator struct {
	Config   EstimatorConfig
	Observer *observer.Observer
	Shares   *Shares
}

// NewEstimator creates the task body.
func NewEstimator(conf EstimatorConfig, shares *Shares) *Estimator {
	return &Estimator{
		Config:   conf,
		Observer: observer.New(conf.Model),
		Shares:   shares,
	}
}

// Step implements Stepper.
func (e *Estimator) Step(fx.StepContext) (fx.State, error) {
	s := e.Shares
	e.Observer.SetHeadingFeedback(!s.HeadingOff.Get())

	volts := e.Config.SupplyVolts / 100
	u := observer.Input{
		volts * s.CmdLeft.PeekOr(0),
		volts * s.CmdRight.PeekOr(0),
	}
	var y observer.Measurement
	y[observer.MeasHeading] = s.Heading.PeekOr(0)
	y[observer.MeasVelLeft] = s.VelLeft.PeekOr(0)
	y[observer.MeasVelRight] = s.VelRight.PeekOr(0)
	y[observer.MeasPathLeft] = s.PosLeft.PeekOr(0)
	y[observer.MeasPathRight] = s.PosRight.PeekOr(0)

	x := e.Observer.Step(u, y, e.Config.Period)
	s.PredVelLeft.Put(x[observer.VelLeft])
	s.PredVelRight.Put(x[observer.VelRight])
	s.PredHeading.Put(x[observer.Heading])
	s.PredPosLeft.Put(x[observer.PathLeft])
	s.PredPosRight.Put(x[observer.PathRight])
	s.X.Put(x[observer.PosX])
	s.Y.Put(x[observer.PosY])
	return 0, nil
}
