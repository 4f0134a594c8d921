package link

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeLink struct {
	lines []string
	sent  [][]byte
	err   error
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
	return l.err
}

func TestMux(t *testing.T) {
	a := &fakeLink{lines: []string{"$SPD1"}}
	b := &fakeLink{lines: []string{"$STP"}, err: errors.New("gone")}
	m := NewMux(a).Add(b)

	line, ok := m.CheckForCompleteLine()
	require.True(t, ok)
	require.Equal(t, "$SPD1", line)
	line, ok = m.CheckForCompleteLine()
	require.True(t, ok)
	require.Equal(t, "$STP", line)
	_, ok = m.CheckForCompleteLine()
	require.False(t, ok)

	err := m.Send([]byte("x"))
	require.EqualError(t, err, "gone")
	require.Len(t, a.sent, 1)
	require.Len(t, b.sent, 1)
}
