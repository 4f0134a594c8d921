package framework

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/golang/glog"
)

// Loop drives the Scheduler on the calling goroutine, runs
// background Runnables, and performs the shutdown sequence.
type Loop struct {
	Scheduler *Scheduler
	Policy    Policy
	// Idle is the pause after a pass in which no task ran.
	// Zero only yields.
	Idle time.Duration
	// StopTimeout bounds the wait for runners after the shutdown
	// hooks ran. Zero waits forever.
	StopTimeout time.Duration

	runners []Runnable
	hooks   []ShutdownHook
}

// DefaultStopTimeout is the default Loop.StopTimeout.
const DefaultStopTimeout = 2 * time.Second

// ErrStopTimeout is returned when runners outlive Loop.StopTimeout.
var ErrStopTimeout = errors.New("runners did not stop in time")

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

// NewLoop creates a Loop.
func NewLoop(clock Clock) *Loop {
	return &Loop{
		Scheduler:   NewScheduler(clock),
		Idle:        time.Millisecond,
		StopTimeout: DefaultStopTimeout,
	}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddTask registers tasks to the scheduler. A Stepper which is
// also Runnable is started as a background runner.
func (l *Loop) AddTask(tasks ...*Task) *Loop {
	l.Scheduler.Register(tasks...)
	for _, task := range tasks {
		if runner, ok := task.stepper.(Runnable); ok {
			l.runners = append(l.runners, NamedRun(task.name, runner))
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// OnShutdown appends hooks, which are invoked in order.
func (l *Loop) OnShutdown(hooks ...ShutdownHook) *Loop {
	l.hooks = append(l.hooks, hooks...)
	return l
}

// Run implements Runnable. It returns when ctx is done or a task
// returns an error. ErrShutdown and cancellation are orderly stops
// and yield nil. Shutdown hooks always run, before waiting for the
// runners, so a stuck runner can't keep the motors going.
func (l *Loop) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	runner := NewRunnerWith(runCtx)
	runner.Go(l.runners...)

	cause := l.schedule(runCtx)
	cancel()
	var errs AggregatedError
	if cause != nil && !orderly(cause) {
		glog.Errorf("scheduler stopped: %v", cause)
		errs.Add(cause)
	} else {
		glog.Info("scheduler stopped")
	}
	for _, hook := range l.hooks {
		if err := hook.Shutdown(cause); err != nil {
			glog.Errorf("shutdown hook error: %v", err)
			errs.Add(err)
		}
	}
	if err := l.wait(runner); err != nil {
		glog.Warningf("runner error: %v", err)
		errs.Add(err)
	}
	return errs.Aggregate()
}

func (l *Loop) wait(runner *Runner) error {
	if l.StopTimeout <= 0 {
		return runner.Wait()
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- runner.Wait()
	}()
	timer := time.NewTimer(l.StopTimeout)
	defer timer.Stop()
	select {
	case err := <-errCh:
		return err
	case <-timer.C:
		return ErrStopTimeout
	}
}

func orderly(err error) bool {
	return errors.Is(err, ErrShutdown) || errors.Is(err, context.Canceled)
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail(ctx context.Context) {
	if err := l.Run(ctx); err != nil {
		log.Fatalln(err)
	}
}

func (l *Loop) schedule(ctx context.Context) error {
	var idle *time.Timer
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		ran, err := l.Scheduler.Run(l.Policy)
		if err != nil {
			return err
		}
		if ran || l.Idle <= 0 {
			continue
		}
		if idle == nil {
			idle = time.NewTimer(l.Idle)
		} else {
			idle.Reset(l.Idle)
		}
		select {
		case <-ctx.Done():
			idle.Stop()
			return ctx.Err()
		case <-idle.C:
		}
	}
}
