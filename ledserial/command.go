// Package ledserial sends led_brightness commands to a microcontroller over a serial port.
package ledserial

import (
	"fmt"
	"strings"
)

// DefaultChannel is the channel identifier the firmware listens on
const DefaultChannel uint16 = 0x0005

const commandTag = "led_brightness"

// Terminator selects what is appended after the command text
type Terminator int

const (
	TerminatorNone Terminator = iota // raw command, no line ending
	TerminatorLF                     // "\n"
	TerminatorCRLF                   // "\r\n"
)

// Suffix returns the bytes written after the command
func (t Terminator) Suffix() string {
	switch t {
	case TerminatorLF:
		return "\n"
	case TerminatorCRLF:
		return "\r\n"
	default:
		return ""
	}
}

func (t Terminator) String() string {
	switch t {
	case TerminatorLF:
		return "lf"
	case TerminatorCRLF:
		return "crlf"
	default:
		return "none"
	}
}

// ParseTerminator maps "none", "lf" or "crlf" to a Terminator
func ParseTerminator(s string) (Terminator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return TerminatorNone, nil
	case "lf", "\\n":
		return TerminatorLF, nil
	case "crlf", "\\r\\n":
		return TerminatorCRLF, nil
	}
	return TerminatorNone, fmt.Errorf("unknown terminator %q (want none, lf or crlf)", s)
}

// Range bounds the hue, saturation and lightness values
type Range int

const (
	RangeUnchecked Range = iota // any integer is sent as-is
	Range8Bit                   // 0-255
	Range16Bit                  // 0-65535
)

// Max returns the largest accepted value, or -1 when unchecked
func (r Range) Max() int {
	switch r {
	case Range8Bit:
		return 0xFF
	case Range16Bit:
		return 0xFFFF
	default:
		return -1
	}
}

func (r Range) String() string {
	switch r {
	case Range8Bit:
		return "8"
	case Range16Bit:
		return "16"
	default:
		return "unchecked"
	}
}

// ParseRange maps "unchecked", "8" or "16" to a Range
func ParseRange(s string) (Range, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unchecked", "none":
		return RangeUnchecked, nil
	case "8", "8bit", "8-bit":
		return Range8Bit, nil
	case "16", "16bit", "16-bit":
		return Range16Bit, nil
	}
	return RangeUnchecked, fmt.Errorf("unknown range %q (want unchecked, 8 or 16)", s)
}

// Framing controls how a Command is validated and terminated on the wire
type Framing struct {
	Terminator Terminator
	Range      Range
}

// Command is a single led_brightness instruction
type Command struct {
	Channel    uint16
	Hue        int
	Saturation int
	Lightness  int
}

// NewCommand returns a command addressed to DefaultChannel
func NewCommand(hue, saturation, lightness int) Command {
	return Command{
		Channel:    DefaultChannel,
		Hue:        hue,
		Saturation: saturation,
		Lightness:  lightness,
	}
}

// String renders the command without any terminator
func (c Command) String() string {
	return fmt.Sprintf("%s 0x%04x %d %d %d", commandTag, c.Channel, c.Hue, c.Saturation, c.Lightness)
}

// Format renders the command followed by the framing terminator
func (c Command) Format(f Framing) string {
	return c.String() + f.Terminator.Suffix()
}

// Validate checks each value against r. RangeUnchecked accepts everything.
func (c Command) Validate(r Range) error {
	limit := r.Max()
	if limit < 0 {
		return nil
	}

	fields := []struct {
		name  string
		value int
	}{
		{"hue", c.Hue},
		{"saturation", c.Saturation},
		{"lightness", c.Lightness},
	}
	for _, f := range fields {
		if f.value < 0 || f.value > limit {
			return &SendError{
				Kind:   ErrInvalidCommand,
				Reason: fmt.Sprintf("%s %d out of range 0-%d", f.name, f.value, limit),
			}
		}
	}
	return nil
}
