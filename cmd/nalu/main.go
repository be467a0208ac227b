// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/nalu/main.go
// Summary: nalu command: opens a VCD dump in the terminal waveform viewer.
// Usage: nalu [--config script] [--log file] <dump.vcd>

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/framegrace/nalu/config"
	"github.com/framegrace/nalu/core"
	"github.com/framegrace/nalu/internal/app"
	"github.com/framegrace/nalu/internal/logging"
)

var version = "0.1.0"

// isTerminal reports whether stdout is a terminal.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

type options struct {
	config     string
	logPath    string
	initConfig bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "nalu [flags] <file.vcd>",
		Short: "Terminal waveform viewer for VCD dumps",
		Long: `nalu shows the signals of a Value Change Dump in the terminal.

The signal list is kept in a config script. Unless --config is given, nalu
uses <dump>.nalu.py next to the dump when it exists, else nalu.py in the
user config directory.

Examples:
  nalu sim.vcd                      # View a dump
  nalu -c signals.nalu.py sim.vcd   # View with an explicit config script
  nalu --init-config                # Write the default config script`,
		Version:      version,
		SilenceUsage: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.initConfig {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.initConfig {
				return initConfig(cmd.OutOrStdout(), opts.config)
			}
			return run(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config script (default: <dump>.nalu.py or the user config)")
	cmd.Flags().StringVar(&opts.logPath, "log", "", "log file (default: nalu/nalu.log in the user cache directory)")
	cmd.Flags().BoolVar(&opts.initConfig, "init-config", false, "write the default config script and exit")
	return cmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func initConfig(out io.Writer, explicit string) error {
	path, err := config.Resolve(explicit, "")
	if err != nil {
		return errors.Wrap(err, "resolve config path")
	}
	if err := config.WriteTemplate(path, false); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

func run(ctx context.Context, out io.Writer, opts options, dump string) error {
	if !isTerminal() {
		fmt.Fprintln(out, "Error: Cannot open viewer when not TTY!")
		return nil
	}

	logFile, err := logging.Setup(opts.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
		log.SetOutput(io.Discard)
	} else {
		defer logFile.Close()
	}
	log.Printf("Main: nalu %s starting on %s", version, dump)

	cfgPath, err := config.Resolve(opts.config, dump)
	if err != nil {
		return errors.Wrap(err, "resolve config path")
	}
	st, err := app.New(ctx, app.Options{DumpPath: dump, ConfigPath: cfgPath, Version: version})
	if err != nil {
		return err
	}
	defer st.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "create screen")
	}
	drv := core.NewTcellScreenDriver(screen)
	if err := drv.Init(); err != nil {
		return errors.Wrap(err, "init screen")
	}
	panics := logging.NewPanicLogger(drv.Fini)
	defer panics.Recover("main")

	msg := loop(ctx, drv, st, panics)
	drv.Fini()
	if msg != "" {
		fmt.Fprintln(out, msg)
	}
	log.Printf("Main: exiting")
	return nil
}
