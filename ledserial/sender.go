package ledserial

import (
	"context"
	"io"
	"time"

	"go.bug.st/serial"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultBaudRate is the speed the firmware console runs at
const DefaultBaudRate = 115200

// Opener opens a serial port. serial.Open satisfies it.
type Opener func(name string, mode *serial.Mode) (serial.Port, error)

// Sender opens a serial port, writes one command and closes the port again
type Sender struct {
	logger   *zap.SugaredLogger
	baudRate int
	timeout  time.Duration
	framing  Framing
	open     Opener
}

// Option configures a Sender
type Option func(*Sender)

// WithLogger sets a custom logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Sender) {
		s.logger = logger
	}
}

// WithBaudRate sets the port speed (default: 115200)
func WithBaudRate(baud int) Option {
	return func(s *Sender) {
		s.baudRate = baud
	}
}

// WithTimeout bounds how long a write may block (default: 0, wait forever)
func WithTimeout(timeout time.Duration) Option {
	return func(s *Sender) {
		s.timeout = timeout
	}
}

// WithFraming sets the terminator and value range (default: no terminator, unchecked)
func WithFraming(f Framing) Option {
	return func(s *Sender) {
		s.framing = f
	}
}

// WithOpener replaces serial.Open, mainly for tests
func WithOpener(open Opener) Option {
	return func(s *Sender) {
		s.open = open
	}
}

// NewSender creates a new Sender
func NewSender(opts ...Option) *Sender {
	s := &Sender{
		logger:   zap.NewNop().Sugar(),
		baudRate: DefaultBaudRate,
		open:     serial.Open,
	}

	// Apply options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Result describes a command that was fully written
type Result struct {
	Port    string
	Command string
	Bytes   int
	Elapsed time.Duration
}

// mode returns the 8N1 serial mode at the configured speed
func (s *Sender) mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: s.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Send writes cmd to the named port. The port is held only for the duration of the call.
// Errors are *SendError values of kind ErrInvalidCommand, ErrDeviceUnavailable or ErrTransmission.
func (s *Sender) Send(ctx context.Context, name string, cmd Command) (res *Result, err error) {
	if err := cmd.Validate(s.framing.Range); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	line := cmd.Format(s.framing)

	s.logger.Debugf("Opening %s at %d baud", name, s.baudRate)
	port, openErr := s.open(name, s.mode())
	if openErr != nil {
		s.logger.Debugf("Failed to open %s: %s", name, openErr)
		return nil, openError(name, openErr)
	}

	// Release the port on every path
	defer func() {
		closeErr := port.Close()
		if closeErr == nil {
			return
		}
		s.logger.Errorf("Error closing %s: %s", name, closeErr)
		if err == nil {
			res = nil
			err = &SendError{Kind: ErrTransmission, Port: name, Reason: "close failed", Err: closeErr}
			return
		}
		if se, ok := err.(*SendError); ok {
			se.Err = multierr.Append(se.Err, closeErr)
		}
	}()

	n, writeErr := s.transmit(ctx, port, []byte(line))
	if writeErr != nil {
		s.logger.Errorf("can't write to serial %s: %s", name, writeErr)
		reason := "write failed"
		switch ctx.Err() {
		case context.DeadlineExceeded:
			reason = "write timed out"
		case context.Canceled:
			reason = "write cancelled"
		}
		return nil, &SendError{Kind: ErrTransmission, Port: name, Reason: reason, Err: writeErr}
	}

	s.logger.Infof("Sent %q to %s", cmd.String(), name)

	return &Result{
		Port:    name,
		Command: cmd.String(),
		Bytes:   n,
		Elapsed: time.Since(start),
	}, nil
}

// transmit writes data in full, giving up when ctx is done.
// An abandoned write is unblocked by the caller closing the port.
func (s *Sender) transmit(ctx context.Context, port serial.Port, data []byte) (int, error) {
	type written struct {
		n   int
		err error
	}

	done := make(chan written, 1)
	go func() {
		n, err := writeAll(port, data)
		done <- written{n, err}
	}()

	select {
	case w := <-done:
		return w.n, w.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// writeAll loops until every byte is accepted
func writeAll(w io.Writer, data []byte) (int, error) {
	total := 0
	for total < len(data) {
		n, err := w.Write(data[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}
