package share

import "errors"

var (
	// ErrEmpty indicates a Get or PeekNewest on an empty queue.
	ErrEmpty = errors.New("queue empty")
	// ErrFull indicates TryPut on a full queue without overwrite.
	ErrFull = errors.New("queue full")
	// ErrInvalidCapacity indicates a queue constructed with capacity <= 0.
	ErrInvalidCapacity = errors.New("invalid queue capacity")
)
