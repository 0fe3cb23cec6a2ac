package main

import (
	"fmt"
	"io"
	"os"

	"github.org/carrierlabs/go-ledserial/ledserial"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "develop"

func isProduction() bool {
	return version != "develop"
}

// newLogger builds the zap logger for the current build
func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if isProduction() {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return ledserial.ExitCode(err)
	}
	return ledserial.ExitOK
}
