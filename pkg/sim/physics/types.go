// Package physics advances simulated bodies in time.
package physics

import "time"

// Body is a simulated object with continuous dynamics.
type Body interface {
	// Advance integrates the dynamics over dt.
	Advance(dt time.Duration)
}
