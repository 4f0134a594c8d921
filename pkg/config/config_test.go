package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/romi.go/pkg/romi"
)

func writeTuning(t *testing.T, content string) string {
	fn := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(content), 0644))
	return fn
}

func TestLoadTuningDefaults(t *testing.T) {
	conf, err := LoadTuning("")
	require.NoError(t, err)
	require.Equal(t, romi.DefaultConfig(), conf)
}

func TestLoadTuningOverrides(t *testing.T) {
	fn := writeTuning(t, `
policy: round-robin
wheel:
  period: 20ms
  kp: 0.8
estimator:
  model:
    l_heading: 0
pursuit:
  hand_off_x: 12
  course:
    - {x: 10, y: 0, speed: 12, brake: 5, kp_head: 9}
    - {x: 10, y: 10, speed: 12, brake: 5, kp_head: 9}
`)
	conf, err := LoadTuning(fn)
	require.NoError(t, err)

	def := romi.DefaultConfig()
	require.Equal(t, "round-robin", conf.Policy)
	require.Equal(t, 20*time.Millisecond, conf.Wheel.Period)
	require.Equal(t, 0.8, conf.Wheel.Kp)
	require.Equal(t, def.Wheel.Ki, conf.Wheel.Ki)
	require.Zero(t, conf.Estimator.Model.LHeading)
	require.Equal(t, def.Estimator.Model.LVel, conf.Estimator.Model.LVel)
	require.Equal(t, 12.0, conf.Pursuit.HandOffX)
	require.Len(t, conf.Pursuit.Course, 2)
	require.Equal(t, 10.0, conf.Pursuit.Course[1].Y)
	require.Equal(t, def.Pursuit.ArrivalRadius, conf.Pursuit.ArrivalRadius)
}

func TestLoadTuningErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		msg     string
	}{
		{"policy", "policy: edf\n", "unknown scheduling policy"},
		{"period", "talker:\n  period: 0s\n", "period must be positive"},
		{"send every", "talker:\n  send_every: 0\n", "send_every"},
		{"syntax", "wheel: [\n", "parse tuning"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadTuning(writeTuning(t, tc.content))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
	_, err := LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestNewLink(t *testing.T) {
	conf := NewConfig()
	conf.SerialPort, conf.MQTTBrokerURL, conf.WebsocketAddr = "", "", ""
	_, err := conf.NewLink()
	require.Error(t, err)

	conf.WebsocketAddr = "localhost:0"
	mux, err := conf.NewLink()
	require.NoError(t, err)
	require.Len(t, mux.Links, 1)
}

func TestNewConfigCopies(t *testing.T) {
	conf := NewConfig()
	conf.ID = "changed"
	require.NotEqual(t, "changed", Default().ID)
	require.NotEmpty(t, MachineID())
}
