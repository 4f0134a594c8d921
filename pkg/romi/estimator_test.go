package romi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/romi.go/pkg/observer"
)

func TestEstimatorPublishesLeftAsPositiveY(t *testing.T) {
	shares := NewShares()
	e := NewEstimator(DefaultConfig().Estimator, shares)
	shares.HeadingOff.Put(true)
	shares.VelLeft.Put(5)
	shares.VelRight.Put(5)
	// heading a quarter turn counter-clockwise: driving to the left
	e.Observer.Reset(observer.State{
		observer.VelLeft:  5,
		observer.VelRight: 5,
		observer.Heading:  math.Pi / 2,
	})

	_, err := e.Step(stepAt(0))
	require.NoError(t, err)
	x, err := shares.X.PeekNewest()
	require.NoError(t, err)
	y, err := shares.Y.PeekNewest()
	require.NoError(t, err)
	require.InDelta(t, 0, x, 1e-6)
	require.Greater(t, y, 0.1)
	require.False(t, e.Observer.HeadingFeedback())
}
