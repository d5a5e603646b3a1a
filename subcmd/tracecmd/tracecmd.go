// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package tracecmd provides trace subcommand.
package tracecmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/cctrace/compdb"
	"go.chromium.org/infra/build/cctrace/extract"
	"go.chromium.org/infra/build/cctrace/toolsupport/straceutil"
	"go.chromium.org/infra/build/cctrace/ui"
)

const usage = `run a build under strace and write compilation database.

 $ cctrace trace [-C <dir>] [-o compile_commands.json] [-config <file>] \
     [-keep_logs <dir>] -- <build command>...

runs <build command> in <dir> under strace, collects C/C++ compiler
invocations of the build and writes them to compile_commands.json.

if the build fails, it exits with the build's exit code and
compile_commands.json is not written.
`

// Cmd returns the Command for the `trace` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "trace [-C <dir>] [-o <file>] -- <build command>...",
		ShortDesc: "run a build under strace and write compilation database",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	dir      string
	keepLogs string
	flags    extract.Flags
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "directory to run the build command in")
	c.Flags.StringVar(&c.keepLogs, "keep_logs", "", "directory to save gzipped strace outputs")
	c.flags.RegisterFlags(&c.Flags)
}

// buildError is an error of the traced build command.
type buildError struct {
	exitCode int
	err      error
}

func (e buildError) Error() string {
	return fmt.Sprintf("build failed with exit=%d: %v", e.exitCode, e.err)
}

func (e buildError) Unwrap() error {
	return e.err
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		var berr buildError
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		case errors.As(err, &berr):
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return berr.exitCode
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no build command: %w", flag.ErrHelp)
	}
	if !straceutil.Available() {
		return errors.New("strace is not available")
	}
	cfg, err := c.flags.Config()
	if err != nil {
		return err
	}
	e, err := extract.New(cfg)
	if err != nil {
		return err
	}
	dir, err := filepath.Abs(c.dir)
	if err != nil {
		return err
	}

	st, err := straceutil.New(ctx, uuid.New().String(), args, dir)
	if err != nil {
		return err
	}
	defer st.Close()

	log.Infof("run %q in %s", args, dir)
	buildErr := runBuild(ctx, st)
	fnames, err := st.Outputs()
	if err != nil {
		return errors.Join(buildErr, err)
	}
	if c.keepLogs != "" {
		saved, err := straceutil.SaveLogs(c.keepLogs, fnames)
		if err != nil {
			return errors.Join(buildErr, err)
		}
		log.Infof("saved %d strace outputs in %s", len(saved), c.keepLogs)
	}
	if buildErr != nil {
		return buildErr
	}

	spin := ui.Default.NewSpinner()
	spin.Start("extracting compile commands from %d processes", len(fnames))
	err = e.ProcessFiles(ctx, fnames)
	if err == nil {
		err = compdb.WriteFile(ctx, cfg.Output, e.Entries())
	}
	if err != nil {
		spin.Stop(err)
		return err
	}
	spin.Done("%d entries", len(e.Entries()))
	log.Infof("%s", e.Stats())
	return nil
}

// runBuild runs the build command under strace.
func runBuild(ctx context.Context, st *straceutil.Strace) error {
	args := st.Args(ctx)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = st.Dir()
	cmd.Env = append(os.Environ(), "PWD="+st.Dir())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err != nil {
		return buildError{exitCode: exitCode(err), err: err}
	}
	return nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var eerr *exec.ExitError
	if !errors.As(err, &eerr) {
		return 1
	}
	if w, ok := eerr.ProcessState.Sys().(syscall.WaitStatus); ok && w.Exited() {
		return w.ExitStatus()
	}
	return 1
}
