package romi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSharesRegistersAll(t *testing.T) {
	s := NewShares()
	items := s.Registry.Items()
	require.Len(t, items, 21)
	names := make([]string, len(items))
	for n, item := range items {
		names[n] = item.Name()
	}
	require.Equal(t, []string{"velo_set", "imu_off", "offset", "lf_stop"}, names[:4])
	require.Contains(t, names, "time_R")
	require.Contains(t, names, "p_pos_R")
	require.Equal(t, CmdQueueSize, s.CmdLeft.Cap())
	require.Equal(t, SensorQueueSize, s.TimeLeft.Cap())
	require.Equal(t, EstimateQueueSize, s.PredHeading.Cap())
	require.True(t, strings.Contains(s.Registry.String(), "Queue<uint32>"))
}
