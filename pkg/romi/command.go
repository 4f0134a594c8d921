package romi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CommandPrefix starts every operator command.
const CommandPrefix = "$"

// CommandKind identifies an operator command.
type CommandKind int

// Operator commands.
const (
	// CmdSpeed sets the forward speed setpoint (in/s).
	CmdSpeed CommandKind = iota
	// CmdStop sets the speed setpoint to zero.
	CmdStop
	// CmdHeadingFeedback enables (1) or disables (0) the IMU heading
	// feedback of the observer.
	CmdHeadingFeedback
)

var commandNames = map[CommandKind]string{
	CmdSpeed:           "SPD",
	CmdStop:            "STP",
	CmdHeadingFeedback: "IMU",
}

// ErrNotCommand indicates a line which is not an operator command.
var ErrNotCommand = errors.New("not a command")

// Command is a parsed operator command.
type Command struct {
	Kind  CommandKind
	Value float64
}

// SpeedCommand creates a CmdSpeed.
func SpeedCommand(v float64) Command {
	return Command{Kind: CmdSpeed, Value: v}
}

// StopCommand creates a CmdStop.
func StopCommand() Command {
	return Command{Kind: CmdStop}
}

// HeadingFeedbackCommand creates a CmdHeadingFeedback.
func HeadingFeedbackCommand(on bool) Command {
	cmd := Command{Kind: CmdHeadingFeedback}
	if on {
		cmd.Value = 1
	}
	return cmd
}

// ParseCommand parses a received line such as "$SPD12.5".
func ParseCommand(line string) (Command, error) {
	if !strings.HasPrefix(line, CommandPrefix) || len(line) < len(CommandPrefix)+3 {
		return Command{}, fmt.Errorf("%w: %q", ErrNotCommand, line)
	}
	name, arg := line[1:4], line[4:]
	switch name {
	case "SPD":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return Command{}, fmt.Errorf("bad speed %q: %w", arg, err)
		}
		return SpeedCommand(v), nil
	case "STP":
		return StopCommand(), nil
	case "IMU":
		switch arg {
		case "0":
			return HeadingFeedbackCommand(false), nil
		case "1":
			return HeadingFeedbackCommand(true), nil
		}
		return Command{}, fmt.Errorf("bad IMU switch %q", arg)
	}
	return Command{}, fmt.Errorf("%w: unknown %q", ErrNotCommand, name)
}

// String encodes the command without the line terminator.
func (c Command) String() string {
	switch c.Kind {
	case CmdSpeed:
		return CommandPrefix + commandNames[c.Kind] + strconv.FormatFloat(c.Value, 'g', -1, 64)
	case CmdHeadingFeedback:
		if c.Value != 0 {
			return CommandPrefix + commandNames[c.Kind] + "1"
		}
		return CommandPrefix + commandNames[c.Kind] + "0"
	}
	return CommandPrefix + commandNames[c.Kind]
}

// Line encodes the command with the carriage return terminator.
func (c Command) Line() []byte {
	return []byte(c.String() + "\r")
}
