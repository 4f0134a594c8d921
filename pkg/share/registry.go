package share

import (
	"strings"
	"sync"
)

// Item is a registered cell or queue.
type Item interface {
	Name() string
	String() string
}

// Registry keeps the cells and queues of an application for diagnostics.
type Registry struct {
	lock  sync.Mutex
	items []Item
}

// Add registers items.
func (r *Registry) Add(items ...Item) *Registry {
	r.lock.Lock()
	r.items = append(r.items, items...)
	r.lock.Unlock()
	return r
}

// Items lists registered items in registration order.
func (r *Registry) Items() []Item {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Item(nil), r.items...)
}

// String renders one diagnostics line per item.
func (r *Registry) String() string {
	items := r.Items()
	lines := make([]string, len(items))
	for n, item := range items {
		lines[n] = item.String()
	}
	return strings.Join(lines, "\n")
}

// RegisterQueue creates a Queue and registers it. A configuration error is
// returned unchanged.
func RegisterQueue[T Scalar](r *Registry, name string, capacity int, opts QueueOptions) (*Queue[T], error) {
	q, err := NewQueue[T](name, capacity, opts)
	if err != nil {
		return nil, err
	}
	r.Add(q)
	return q, nil
}

// RegisterCell creates a Cell and registers it.
func RegisterCell[T Scalar](r *Registry, name string, protect bool) *Cell[T] {
	c := NewCell[T](name, protect)
	r.Add(c)
	return c
}
