package share

import (
	"fmt"
	"sync"
)

// Scalar is the set of element types cells and queues may carry.
type Scalar interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~int | ~uint | ~float32 | ~float64
}

// Guard is the critical section used by protected cells and queues.
// An unprotected guard does nothing.
type Guard struct {
	protect bool
	mu      sync.Mutex
}

// Lock enters the critical section.
func (g *Guard) Lock() {
	if g.protect {
		g.mu.Lock()
	}
}

// Unlock leaves the critical section.
func (g *Guard) Unlock() {
	if g.protect {
		g.mu.Unlock()
	}
}

// Protected tells whether the guard is active.
func (g *Guard) Protected() bool {
	return g.protect
}

func typeName[T Scalar]() string {
	var v T
	return fmt.Sprintf("%T", v)
}
