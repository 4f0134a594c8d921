package romi

import (
	"github.com/golang/glog"

	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/hw"
)

// IMUSampler publishes the heading and the yaw rate.
type IMUSampler struct {
	IMU    hw.OrientationSensor
	Shares *Shares

	errors int
}

// Step implements Stepper. A failed read skips the sample.
func (s *IMUSampler) Step(fx.StepContext) (fx.State, error) {
	heading, err := s.IMU.Heading()
	if err != nil {
		s.errors++
		glog.Warningf("imu heading: %v", err)
		return 0, nil
	}
	rate, err := s.IMU.YawRate()
	if err != nil {
		s.errors++
		glog.Warningf("imu yaw rate: %v", err)
		rate = 0
	}
	s.Shares.Heading.Put(heading)
	s.Shares.YawRate.Put(rate)
	return 0, nil
}

// Errors gets the number of failed reads.
func (s *IMUSampler) Errors() int {
	return s.errors
}
