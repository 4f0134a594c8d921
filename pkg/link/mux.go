package link

import (
	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/hw"
)

// Mux combines Links: commands are taken from any of them in order,
// and sent data goes to all of them.
type Mux struct {
	Links []hw.Link
}

// NewMux creates a Mux.
func NewMux(links ...hw.Link) *Mux {
	return &Mux{Links: links}
}

// Add adds more links.
func (m *Mux) Add(links ...hw.Link) *Mux {
	m.Links = append(m.Links, links...)
	return m
}

// CheckForCompleteLine implements hw.Link.
func (m *Mux) CheckForCompleteLine() (string, bool) {
	for _, l := range m.Links {
		if line, ok := l.CheckForCompleteLine(); ok {
			return line, true
		}
	}
	return "", false
}

// Send implements hw.Link.
func (m *Mux) Send(p []byte) error {
	var errs fx.AggregatedError
	for _, l := range m.Links {
		errs.Add(l.Send(p))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (m *Mux) AddToLoop(loop *fx.Loop) {
	for _, l := range m.Links {
		if adder, ok := l.(fx.LoopAdder); ok {
			loop.Add(adder)
		}
	}
}
