package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Clock provides the monotonic time base for scheduling and control.
// The value is the elapsed time since an arbitrary epoch.
type Clock interface {
	Now() time.Duration
}

// State is the state value a task reports after each step.
// It is only used for diagnostics (transition trace).
type State int

// StepContext provides the context of the current step.
type StepContext interface {
	Clock
	// Task gets the task being stepped.
	Task() *Task
}

// Stepper is a resumable state machine advanced by
// exactly one bounded step per scheduling call.
type Stepper interface {
	Step(StepContext) (State, error)
}

// StepFunc is the func form of Stepper.
type StepFunc func(StepContext) (State, error)

// Step implements Stepper.
func (f StepFunc) Step(ctx StepContext) (State, error) {
	return f(ctx)
}

// ShutdownHook is invoked by Loop after the scheduler stops.
// cause is what stopped it: ErrShutdown or context.Canceled on an
// orderly stop, a TaskError on a fault.
type ShutdownHook interface {
	Shutdown(cause error) error
}

// ShutdownFunc is the func form of ShutdownHook.
type ShutdownFunc func(cause error) error

// Shutdown implements ShutdownHook.
func (f ShutdownFunc) Shutdown(cause error) error {
	return f(cause)
}

// Policy selects the scheduling discipline used by Loop.
type Policy int

// Scheduling policies.
const (
	// PolicyPriority runs the first ready task found scanning
	// priority groups from high to low.
	PolicyPriority Policy = iota
	// PolicyRoundRobin offers every task a turn in each pass.
	PolicyRoundRobin
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case PolicyPriority:
		return "priority"
	case PolicyRoundRobin:
		return "round-robin"
	}
	return "unknown"
}

// ParsePolicy parses the policy name.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "priority", "pri":
		return PolicyPriority, true
	case "round-robin", "rr":
		return PolicyRoundRobin, true
	}
	return PolicyPriority, false
}
