// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package extractcmd provides extract subcommand.
package extractcmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/cctrace/compdb"
	"go.chromium.org/infra/build/cctrace/extract"
	"go.chromium.org/infra/build/cctrace/toolsupport/straceutil"
	"go.chromium.org/infra/build/cctrace/ui"
)

const usage = `extract compilation database from strace outputs.

 $ cctrace extract [-o compile_commands.json] [-config <file>] \
     <file|dir>...

reads strace outputs of "strace -ff -e trace=execve -v" given as files,
or directories that contain them, and writes compile_commands.json.
files with .gz suffix are read as gzipped files.
`

// Cmd returns the Command for the `extract` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "extract [-o <file>] <file|dir>...",
		ShortDesc: "extract compilation database from strace outputs",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.flags.RegisterFlags(&c.Flags)
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase
	flags extract.Flags
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no strace outputs: %w", flag.ErrHelp)
	}
	cfg, err := c.flags.Config()
	if err != nil {
		return err
	}
	e, err := extract.New(cfg)
	if err != nil {
		return err
	}
	fnames, err := straceutil.CollectLogs(args)
	if err != nil {
		return err
	}
	spin := ui.Default.NewSpinner()
	spin.Start("extracting compile commands from %d files", len(fnames))
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
