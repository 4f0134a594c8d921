package control

import "errors"

// ErrPathComplete indicates the pursuer advanced past the last waypoint.
var ErrPathComplete = errors.New("path complete")
