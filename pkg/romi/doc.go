// Package romi assembles the task set of the robot: wheel speed
// control, IMU sampling, state estimation, line following, pure
// pursuit and the operator link. Tasks exchange data only through
// the cells and queues in Shares.
package romi
