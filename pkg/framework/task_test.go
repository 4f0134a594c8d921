package framework

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTaskProfileSkipsWarmup(t *testing.T) {
	clock := &ManualClock{}
	durations := []time.Duration{
		7 * time.Millisecond,
		9 * time.Millisecond,
		time.Millisecond,
		3 * time.Millisecond,
	}
	n := 0
	task := NewTask("busy", 1, StepFunc(func(StepContext) (State, error) {
		clock.Advance(durations[n])
		n++
		return 0, nil
	})).WithProfile()
	s := NewScheduler(clock).Register(task)
	for range durations {
		task.Go()
		ran, err := s.RunPriority()
		require.NoError(t, err)
		require.True(t, ran)
	}
	stats := task.Stats()
	require.Equal(t, 4, stats.Runs)
	require.Equal(t, 4*time.Millisecond, stats.RunSum)
	require.Equal(t, 3*time.Millisecond, stats.Slowest)
	require.Equal(t, 2*time.Millisecond, stats.AvgDuration())

	task.ResetProfile()
	require.Equal(t, TaskStats{}, task.Stats())
}

func TestTaskTrace(t *testing.T) {
	clock := &ManualClock{}
	states := []State{0, 1, 1, 2, 0}
	n := 0
	task := NewTask("traced", 1, StepFunc(func(StepContext) (State, error) {
		clock.Advance(time.Millisecond)
		st := states[n]
		n++
		return st, nil
	})).WithTrace()
	s := NewScheduler(clock).Register(task)
	for range states {
		task.Go()
		_, err := s.RunPriority()
		require.NoError(t, err)
	}
	trs := task.Transitions()
	require.Len(t, trs, 3)
	// At is measured from the previous step, not the previous transition.
	require.Equal(t, Transition{At: time.Millisecond, From: 0, To: 1}, trs[0])
	require.Equal(t, Transition{At: time.Millisecond, From: 1, To: 2}, trs[1])
	require.Equal(t, Transition{At: time.Millisecond, From: 2, To: 0}, trs[2])
	require.Contains(t, task.Trace(), "0.001000:  0 -> 1")
	require.Contains(t, task.Trace(), "0.003000:  2 -> 0")

	untraced := NewTask("plain", 1, StepFunc(func(StepContext) (State, error) { return 0, nil }))
	require.Equal(t, "Task plain: not traced", untraced.Trace())
}

func TestTaskSetPeriod(t *testing.T) {
	clock := &ManualClock{}
	runs := 0
	task := NewTask("switch", 1, StepFunc(func(StepContext) (State, error) {
		runs++
		return 0, nil
	})).WithPeriod(10 * time.Millisecond)
	s := NewScheduler(clock).Register(task)
	clock.Set(10 * time.Millisecond)
	_, err := s.RunPriority()
	require.NoError(t, err)
	require.Equal(t, 1, runs)

	task.SetPeriod(0)
	clock.Set(100 * time.Millisecond)
	ran, err := s.RunPriority()
	require.NoError(t, err)
	require.False(t, ran)
	task.Go()
	ran, err = s.RunPriority()
	require.NoError(t, err)
	require.True(t, ran)
}

func TestStepContextTime(t *testing.T) {
	clock := &ManualClock{}
	clock.Set(42 * time.Millisecond)
	var seen time.Duration
	var self *Task
	task := NewTask("ctx", 1, StepFunc(func(ctx StepContext) (State, error) {
		seen, self = ctx.Now(), ctx.Task()
		return 0, nil
	}))
	s := NewScheduler(clock).Register(task)
	task.Go()
	_, err := s.RunPriority()
	require.NoError(t, err)
	require.Equal(t, 42*time.Millisecond, seen)
	require.Same(t, task, self)
}
