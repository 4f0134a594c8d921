package romi

import (
	"errors"
	"time"

	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/hw"
)

type fakeMotor struct {
	effort  float64
	enabled bool
	fail    bool
	calls   int
}

func (m *fakeMotor) SetEffort(v float64) error {
	m.calls++
	if m.fail {
		return errors.New("driver fault")
	}
	m.effort = v
	return nil
}

func (m *fakeMotor) Enable() error  { m.enabled = true; return nil }
func (m *fakeMotor) Disable() error { m.enabled = false; return nil }

type fakeEncoder struct {
	pos, vel float64
	updates  int
	zeros    int
}

func (e *fakeEncoder) Update()           { e.updates++ }
func (e *fakeEncoder) Position() float64 { return e.pos }
func (e *fakeEncoder) Velocity() float64 { return e.vel }
func (e *fakeEncoder) Zero()             { e.pos, e.zeros = 0, e.zeros+1 }

type fakeLink struct {
	lines []string
	sent  [][]byte
}

func (l *fakeLink) CheckForCompleteLine() (string, bool) {
	if len(l.lines) == 0 {
		return "", false
	}
	line := l.lines[0]
	l.lines = l.lines[1:]
	return line, true
}

func (l *fakeLink) Send(p []byte) error {
	l.sent = append(l.sent, p)
	return nil
}

type fakeBumper bool

func (b *fakeBumper) Triggered() bool { return bool(*b) }

type fakeDrive struct {
	left, right       *fakeMotor
	encLeft, encRight *fakeEncoder
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		left:     &fakeMotor{},
		right:    &fakeMotor{},
		encLeft:  &fakeEncoder{},
		encRight: &fakeEncoder{},
	}
}

func (d *fakeDrive) Drive() *hw.Drive {
	return &hw.Drive{
		LeftMotor:    d.left,
		RightMotor:   d.right,
		LeftEncoder:  d.encLeft,
		RightEncoder: d.encRight,
	}
}

type stepAt time.Duration

func (s stepAt) Now() time.Duration { return time.Duration(s) }
func (s stepAt) Task() *fx.Task     { return nil }
