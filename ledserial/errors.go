package ledserial

import (
	"errors"
	"fmt"
	"io/fs"

	"go.bug.st/serial"
)

// Error kinds returned by Send. Match them with errors.Is.
var (
	ErrDeviceUnavailable = errors.New("device unavailable")
	ErrTransmission      = errors.New("transmission failed")
	ErrInvalidCommand    = errors.New("invalid command")
)

// Reasons attached to ErrDeviceUnavailable
const (
	ReasonNotFound         = "not found"
	ReasonBusy             = "busy"
	ReasonPermissionDenied = "permission denied"
	ReasonInvalidConfig    = "invalid port configuration"
	ReasonOpenFailed       = "open failed"
)

// SendError describes a failed send
type SendError struct {
	Kind   error  // one of the Err* kinds above
	Port   string // serial port name, empty for invalid commands
	Reason string // short human readable cause
	Err    error  // underlying error, may be nil
}

func (e *SendError) Error() string {
	msg := e.Kind.Error()
	if e.Port != "" {
		msg = fmt.Sprintf("%s %s", e.Port, msg)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *SendError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error
func (e *SendError) Is(target error) bool {
	return target == e.Kind
}

// openError classifies a failure from serial.Open
func openError(port string, err error) *SendError {
	return &SendError{
		Kind:   ErrDeviceUnavailable,
		Port:   port,
		Reason: openReason(err),
		Err:    err,
	}
}

func openReason(err error) string {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortNotFound, serial.InvalidSerialPort:
			return ReasonNotFound
		case serial.PortBusy:
			return ReasonBusy
		case serial.PermissionDenied:
			return ReasonPermissionDenied
		case serial.InvalidSpeed, serial.InvalidDataBits, serial.InvalidParity,
			serial.InvalidStopBits, serial.InvalidTimeoutValue:
			return ReasonInvalidConfig
		}
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ReasonNotFound
	case errors.Is(err, fs.ErrPermission):
		return ReasonPermissionDenied
	}
	return ReasonOpenFailed
}

// Exit codes used by ExitCode
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitInvalidCommand    = 2
	ExitDeviceUnavailable = 3
	ExitTransmission      = 4
)

// ExitCode maps an error returned by this package to a process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidCommand):
		return ExitInvalidCommand
	case errors.Is(err, ErrDeviceUnavailable):
		return ExitDeviceUnavailable
	case errors.Is(err, ErrTransmission):
		return ExitTransmission
	default:
		return ExitFailure
	}
}
