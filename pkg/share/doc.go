// Package share provides the data channels tasks use to talk to each other:
// a single-slot Cell and a bounded ring-buffer Queue of scalar values.
//
// Either may be written from interrupt context (any goroutine other than the
// scheduler) when constructed as protected. Protection is decided at
// construction time and cannot change afterwards.
package share
