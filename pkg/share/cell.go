package share

import "fmt"

// Cell is a single shared value. Readers see the last written
// value; there is no history.
type Cell[T Scalar] struct {
	name  string
	guard Guard
	value T
}

// NewCell creates a Cell holding the zero value.
func NewCell[T Scalar](name string, protect bool) *Cell[T] {
	return &Cell[T]{name: name, guard: Guard{protect: protect}}
}

// Name implements framework.Named.
func (c *Cell[T]) Name() string {
	return c.name
}

// Put writes the value.
func (c *Cell[T]) Put(v T) {
	c.guard.Lock()
	c.value = v
	c.guard.Unlock()
}

// Get reads the value.
func (c *Cell[T]) Get() T {
	c.guard.Lock()
	v := c.value
	c.guard.Unlock()
	return v
}

// String renders the diagnostics line.
func (c *Cell[T]) String() string {
	return fmt.Sprintf("%-12s Share<%s>", c.name, typeName[T]())
}
