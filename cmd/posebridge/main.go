// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/posebridge/lib/config"
	"github.com/bureau-foundation/posebridge/lib/process"
	"github.com/bureau-foundation/posebridge/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	if len(args) > 0 && args[0] == "--version" {
		version.Print("posebridge")
		return nil
	}
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" || args[0] == "help" {
		printUsage(os.Stdout)
		return nil
	}

	switch args[0] {
	case "run":
		return runCommand(args[1:])
	case "status":
		return statusCommand(args[1:], os.Stdout)
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `posebridge - bridge tracker poses to a VR runtime

USAGE
    posebridge run [--config <path>] [--verbose]
    posebridge status [--config <path>] [--socket <path>] [--diagnose]
    posebridge --version

Configuration is read from --config, else POSEBRIDGE_CONFIG, else the
built-in defaults.
`)
}

// loadConfig resolves the configuration for a subcommand.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case os.Getenv(config.EnvVar) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
		cfg.ExpandVariables()
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// newLogger builds the daemon logger. format "auto" selects text on a
// terminal and JSON otherwise.
func newLogger(w io.Writer, logging config.LoggingConfig, verbose bool) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logging.Level)); err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}
	if verbose {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}

	format := logging.Format
	if format == "auto" {
		format = "json"
		if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			format = "text"
		}
	}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, options)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, options)), nil
	default:
		return nil, errors.New("logging.format must be auto, text or json")
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("posebridge "+name, pflag.ContinueOnError)
	flagSet.SetOutput(os.Stderr)
	return flagSet
}
