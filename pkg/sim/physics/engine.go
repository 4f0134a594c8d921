package physics

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/romi.go/pkg/framework"
)

// DefaultInterval is the real-time integration interval.
const DefaultInterval = time.Millisecond

// Engine advances bodies following a clock.
type Engine struct {
	Clock    fx.Clock
	Interval time.Duration

	lock   sync.Mutex
	bodies []Body
	last   time.Duration
	synced bool
}

// NewEngine creates an Engine.
func NewEngine(clock fx.Clock, bodies ...Body) *Engine {
	return &Engine{Clock: clock, Interval: DefaultInterval, bodies: bodies}
}

// Add adds bodies.
func (e *Engine) Add(bodies ...Body) *Engine {
	e.lock.Lock()
	e.bodies = append(e.bodies, bodies...)
	e.lock.Unlock()
	return e
}

// Sync advances all bodies up to the current clock time.
// The first call only records the time.
func (e *Engine) Sync() {
	now := e.Clock.Now()
	e.lock.Lock()
	defer e.lock.Unlock()
	if !e.synced {
		e.last, e.synced = now, true
		return
	}
	if dt := now - e.last; dt > 0 {
		for _, b := range e.bodies {
			b.Advance(dt)
		}
		e.last = now
	}
}

// Name implements Named.
func (e *Engine) Name() string {
	return "physics"
}

// Run implements Runnable. It keeps bodies in sync with the clock.
func (e *Engine) Run(ctx context.Context) error {
	interval := e.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	glog.V(1).Infof("physics engine started, interval %v", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	e.Sync()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Sync()
		}
	}
}
