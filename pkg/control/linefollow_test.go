package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCentroid(t *testing.T) {
	testCases := []struct {
		name     string
		readings []uint16
		expect   float64
	}{
		{name: "centered", readings: []uint16{0, 0, 1000, 0, 0}, expect: 0},
		{name: "right", readings: []uint16{0, 0, 0, 1000, 0}, expect: 1},
		{name: "between", readings: []uint16{0, 0, 0, 500, 500}, expect: 1.5},
		{name: "left", readings: []uint16{1000, 0, 0, 0, 0}, expect: -2},
		{name: "nothing", readings: []uint16{0, 0, 0, 0, 0}, expect: 0},
		{name: "symmetric", readings: []uint16{10, 10, 10, 10}, expect: 0},
		{name: "even count", readings: []uint16{0, 0, 0, 1000}, expect: 1.5},
		{name: "empty", readings: nil, expect: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.expect, Centroid(tc.readings), 1e-9)
		})
	}
}

func TestLineFollowerActive(t *testing.T) {
	f := NewLineFollower(LineFollowConfig{Kp: 2, Ki: 1, BiasAfter: 25, Bias: 8.5})
	right := []uint16{0, 0, 0, 1000, 0}

	out, active := f.Update(right, 10, 0, false, time.Second)
	require.True(t, active)
	require.InDelta(t, 2, out, 1e-9)

	out, _ = f.Update(right, 10, 0, false, 2*time.Second)
	require.InDelta(t, 3, out, 1e-9)

	// anti-windup while not moving
	out, _ = f.Update(right, 0, 0, false, 3*time.Second)
	require.InDelta(t, 2, out, 1e-9)

	// bias once past the feature
	out, _ = f.Update(right, 0, 25.5, false, 4*time.Second)
	require.InDelta(t, 10.5, out, 1e-9)
}

func TestLineFollowerStop(t *testing.T) {
	f := NewLineFollower(LineFollowConfig{Kp: 1, Ki: 1})
	line := []uint16{0, 0, 0, 0, 1000}
	f.Update(line, 10, 0, false, 0)
	f.Update(line, 10, 0, false, time.Second)

	for i := 0; i < 3; i++ {
		out, active := f.Update(line, 10, 0, true, time.Duration(2+i)*time.Second)
		require.False(t, active)
		require.Zero(t, out)
		require.Equal(t, LineFollowStopped, f.State())
	}

	// clearing the flag re-arms with a fresh integrator
	out, active := f.Update(line, 10, 0, false, 10*time.Second)
	require.True(t, active)
	require.Equal(t, LineFollowActive, f.State())
	require.InDelta(t, 2, out, 1e-9)
}
