package romi

import (
	"github.com/robotalks/romi.go/pkg/share"
)

// Queue capacities.
const (
	CmdQueueSize      = 10
	SensorQueueSize   = 20
	EstimateQueueSize = 10
)

// Shares holds every value exchanged between tasks. All queues
// overwrite: consumers always see the most recent samples.
type Shares struct {
	Registry share.Registry

	SpeedSetpoint *share.Cell[float64]
	HeadingOff    *share.Cell[bool]
	Offset        *share.Cell[float64]
	LineStop      *share.Cell[bool]

	CmdLeft, CmdRight   *share.Queue[float64]
	TimeLeft, TimeRight *share.Queue[uint32]
	PosLeft, PosRight   *share.Queue[float64]
	VelLeft, VelRight   *share.Queue[float64]
	Heading, YawRate    *share.Queue[float64]

	X, Y                      *share.Queue[float64]
	PredVelLeft, PredVelRight *share.Queue[float64]
	PredHeading               *share.Queue[float64]
	PredPosLeft, PredPosRight *share.Queue[float64]
}

// NewShares creates and registers the shares.
func NewShares() *Shares {
	s := &Shares{}
	r := &s.Registry
	opts := share.QueueOptions{Overwrite: true}
	q := func(name string, size int) *share.Queue[float64] {
		return mustQueue(share.RegisterQueue[float64](r, name, size, opts))
	}
	t := func(name string) *share.Queue[uint32] {
		return mustQueue(share.RegisterQueue[uint32](r, name, SensorQueueSize, opts))
	}

	s.SpeedSetpoint = share.RegisterCell[float64](r, "velo_set", false)
	s.HeadingOff = share.RegisterCell[bool](r, "imu_off", false)
	s.Offset = share.RegisterCell[float64](r, "offset", false)
	s.LineStop = share.RegisterCell[bool](r, "lf_stop", false)

	s.CmdLeft, s.CmdRight = q("cmd_L", CmdQueueSize), q("cmd_R", CmdQueueSize)
	s.TimeLeft, s.TimeRight = t("time_L"), t("time_R")
	s.PosLeft, s.PosRight = q("pos_L", SensorQueueSize), q("pos_R", SensorQueueSize)
	s.VelLeft, s.VelRight = q("velo_L", SensorQueueSize), q("velo_R", SensorQueueSize)
	s.Heading, s.YawRate = q("heading", SensorQueueSize), q("yaw_rate", SensorQueueSize)

	s.X, s.Y = q("X_pos", EstimateQueueSize), q("Y_pos", EstimateQueueSize)
	s.PredVelLeft = q("p_v_L", EstimateQueueSize)
	s.PredVelRight = q("p_v_R", EstimateQueueSize)
	s.PredHeading = q("p_head", EstimateQueueSize)
	s.PredPosLeft = q("p_pos_L", EstimateQueueSize)
	s.PredPosRight = q("p_pos_R", EstimateQueueSize)
	return s
}

func mustQueue[T share.Scalar](q *share.Queue[T], err error) *share.Queue[T] {
	if err != nil {
		panic(err)
	}
	return q
}
