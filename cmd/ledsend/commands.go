package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.org/carrierlabs/go-ledserial/ledserial"
	"go.uber.org/zap"
)

// envPort overrides the default --port value
const envPort = "LEDSEND_PORT"

type sendOptions struct {
	port       string
	vid        string
	pid        string
	baud       int
	channel    string
	hue        int
	saturation int
	lightness  int
	terminator string
	valueRange string
	timeout    time.Duration
}

var (
	verbose bool
	// replaced in tests
	newSender = ledserial.NewSender
)

func defaultPort() string {
	if p := os.Getenv(envPort); p != "" {
		return p
	}
	if runtime.GOOS == "windows" {
		return "COM4"
	}
	return "/dev/ttyUSB0"
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledsend",
		Short:         "Send an LED hue/saturation/lightness command over a serial port",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newSendCmd(), newPortsCmd())
	return root
}

func newSendCmd() *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Write one led_brightness command and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			return runSend(cmd, log, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.port, "port", "p", defaultPort(), "Serial port device (env "+envPort+")")
	f.StringVar(&opts.vid, "vid", "", "Select the first USB port with this vendor id instead of --port")
	f.StringVar(&opts.pid, "pid", "", "Product id used with --vid")
	f.IntVarP(&opts.baud, "baud", "b", ledserial.DefaultBaudRate, "Baud rate")
	f.StringVar(&opts.channel, "channel", fmt.Sprintf("0x%04x", ledserial.DefaultChannel), "Channel identifier")
	f.IntVar(&opts.hue, "hue", 30, "Hue")
	f.IntVar(&opts.saturation, "saturation", 60, "Saturation")
	f.IntVar(&opts.lightness, "lightness", 80, "Lightness")
	f.StringVar(&opts.terminator, "terminator", "none", "Line terminator: none, lf or crlf")
	f.StringVar(&opts.valueRange, "range", "unchecked", "Value range check: unchecked, 8 or 16")
	f.DurationVar(&opts.timeout, "timeout", 0, "Abort a blocked write after this long (0 waits forever)")

	return cmd
}

func runSend(cmd *cobra.Command, log *zap.SugaredLogger, opts *sendOptions) error {
	terminator, err := ledserial.ParseTerminator(opts.terminator)
	if err != nil {
		return err
	}
	valueRange, err := ledserial.ParseRange(opts.valueRange)
	if err != nil {
		return err
	}
	channel, err := strconv.ParseUint(opts.channel, 0, 16)
	if err != nil {
		return fmt.Errorf("invalid channel %q: %w", opts.channel, err)
	}

	port := opts.port
	if opts.vid != "" {
		info, err := ledserial.FindPort(opts.vid, opts.pid)
		if err != nil {
			return err
		}
		log.Debugf("Selected %s (VID %s PID %s)", info.Name, info.VID, info.PID)
		port = info.Name
	}

	sender := newSender(
		ledserial.WithLogger(log),
		ledserial.WithBaudRate(opts.baud),
		ledserial.WithTimeout(opts.timeout),
		ledserial.WithFraming(ledserial.Framing{Terminator: terminator, Range: valueRange}),
	)

	command := ledserial.Command{
		Channel:    uint16(channel),
		Hue:        opts.hue,
		Saturation: opts.saturation,
		Lightness:  opts.lightness,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := sender.Send(ctx, port, command)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sent command: %s\n", res.Command)
	return nil
}

func newPortsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports, err := ledserial.ListPorts()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(ports)
			}

			if len(ports) == 0 {
				fmt.Fprintln(out, "No serial ports found")
				return nil
			}
			for _, p := range ports {
				if p.IsUSB {
					fmt.Fprintf(out, "%-15s USB %s:%s %s\n", p.Name, p.VID, p.PID, p.SerialNumber)
				} else {
					fmt.Fprintf(out, "%-15s\n", p.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}
