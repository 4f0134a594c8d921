package framework

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// profileWarmup is the number of initial runs excluded from
// the duration statistics.
const profileWarmup = 2

// Task wraps a Stepper with scheduling metadata.
// A task is either periodic (Period > 0) or event-triggered,
// in which case it only runs after Go is called.
type Task struct {
	name     string
	priority int
	stepper  Stepper

	period time.Duration
	next   time.Duration
	armed  bool
	wake   atomic.Bool

	profile bool
	stats   TaskStats

	trace     bool
	traceLog  []Transition
	prevState State
	prevTime  time.Duration
}

// TaskStats contains the profiling counters of a task.
type TaskStats struct {
	Runs    int
	RunSum  time.Duration
	Slowest time.Duration
	LateSum time.Duration
	Latest  time.Duration
}

// Transition is a recorded state change.
type Transition struct {
	// At is the time since the previous recorded step.
	At   time.Duration
	From State
	To   State
}

type stepContext struct {
	now  time.Duration
	task *Task
}

func (c *stepContext) Now() time.Duration { return c.now }
func (c *stepContext) Task() *Task        { return c.task }

// NewTask creates an event-triggered task.
// Use WithPeriod to make it periodic.
func NewTask(name string, priority int, stepper Stepper) *Task {
	return &Task{name: name, priority: priority, stepper: stepper}
}

// WithPeriod makes the task periodic.
func (t *Task) WithPeriod(period time.Duration) *Task {
	t.period = period
	return t
}

// WithProfile enables profiling.
func (t *Task) WithProfile() *Task {
	t.profile = true
	return t
}

// WithTrace enables state transition tracing.
func (t *Task) WithTrace() *Task {
	t.trace = true
	return t
}

// Name implements Named.
func (t *Task) Name() string {
	return t.name
}

// Priority gets the priority, higher runs first.
func (t *Task) Priority() int {
	return t.priority
}

// Period gets the period, 0 for event-triggered tasks.
func (t *Task) Period() time.Duration {
	return t.period
}

// Stepper gets the state machine of the task.
func (t *Task) Stepper() Stepper {
	return t.stepper
}

// SetPeriod changes the period. A zero period turns the task
// into an event-triggered one. The next release is not moved.
func (t *Task) SetPeriod(period time.Duration) {
	t.period = period
}

// Go marks the task ready to run. It's safe to call from
// any goroutine.
func (t *Task) Go() {
	t.wake.Store(true)
}

// ResetProfile clears the profiling counters.
func (t *Task) ResetProfile() {
	t.stats = TaskStats{}
}

// Stats gets the profiling counters.
func (t *Task) Stats() TaskStats {
	return t.stats
}

// Transitions gets the recorded transitions.
func (t *Task) Transitions() []Transition {
	return t.traceLog
}

// arm sets the first release one period from now.
func (t *Task) arm(now time.Duration) {
	if !t.armed {
		t.next = now + t.period
		t.prevTime = now
		t.armed = true
	}
}

// ready checks and performs a periodic release.
func (t *Task) ready(now time.Duration) bool {
	if t.period > 0 {
		if !t.armed {
			t.arm(now)
		}
		if now >= t.next {
			late := now - t.next
			t.wake.Store(true)
			t.next += t.period
			if t.profile {
				t.stats.LateSum += late
				if late > t.stats.Latest {
					t.stats.Latest = late
				}
			}
		}
	}
	return t.wake.Load()
}

// schedule runs one step if the task is ready.
func (t *Task) schedule(clock Clock) (bool, error) {
	if !t.ready(clock.Now()) {
		return false, nil
	}
	t.wake.Store(false)
	start := clock.Now()
	state, err := t.step(&stepContext{now: start, task: t})
	if t.profile || t.trace {
		end := clock.Now()
		if t.profile {
			t.stats.Runs++
			if t.stats.Runs > profileWarmup {
				d := end - start
				t.stats.RunSum += d
				if d > t.stats.Slowest {
					t.stats.Slowest = d
				}
			}
		}
		if t.trace {
			if state != t.prevState {
				t.traceLog = append(t.traceLog, Transition{At: end - t.prevTime, From: t.prevState, To: state})
			}
			t.prevState, t.prevTime = state, end
		}
	}
	if err != nil {
		return true, &TaskError{Task: t.name, Err: err}
	}
	return true, nil
}

func (t *Task) step(ctx StepContext) (state State, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.stepper.Step(ctx)
}

// AvgDuration gets the average step duration after warm-up.
func (s TaskStats) AvgDuration() time.Duration {
	if s.Runs <= profileWarmup {
		return 0
	}
	return s.RunSum / time.Duration(s.Runs-profileWarmup)
}

// AvgLateness gets the average release lateness.
func (s TaskStats) AvgLateness() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.LateSum / time.Duration(s.Runs)
}

// Trace renders the transition trace.
func (t *Task) Trace() string {
	var sb strings.Builder
	sb.WriteString("Task " + t.name + ":")
	if !t.trace {
		sb.WriteString(" not traced")
		return sb.String()
	}
	sb.WriteString("\n")
	var total time.Duration
	for _, tr := range t.traceLog {
		total += tr.At
		fmt.Fprintf(&sb, "%12.6f: %2d -> %d\n", total.Seconds(), tr.From, tr.To)
	}
	return sb.String()
}

// String renders a row of the task table.
func (t *Task) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-16s%4d", t.name, t.priority)
	if t.period > 0 {
		fmt.Fprintf(&sb, "%10.1f", ms(t.period))
	} else {
		sb.WriteString("         -")
	}
	fmt.Fprintf(&sb, "%8d", t.stats.Runs)
	if t.profile && t.stats.Runs > 0 {
		fmt.Fprintf(&sb, "%10.3f%10.3f", ms(t.stats.AvgDuration()), ms(t.stats.Slowest))
		if t.period > 0 {
			fmt.Fprintf(&sb, "%10.3f%10.3f", ms(t.stats.AvgLateness()), ms(t.stats.Latest))
		}
	}
	return sb.String()
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
