// Package control implements the control laws run by the robot tasks:
// the wheel velocity PI loop, the centroid line follower and the
// pure-pursuit waypoint follower.
//
// Everything here is plain computation over values passed in; time is
// given explicitly as a duration since an arbitrary epoch so the laws can
// be driven by any clock.
package control
