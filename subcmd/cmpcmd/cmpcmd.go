// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cmpcmd provides cmp subcommand.
package cmpcmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/cctrace/compdb"
	"go.chromium.org/infra/build/cctrace/ui"
)

const usage = `compare two compilation databases.

 $ cctrace cmp <ref> <test>

compares <ref> and <test> ignoring order of entries.
entries are compared by directory, file, arguments and output.
a "command" field is split into arguments before comparison.

prints entries missing in <test> and extra entries in <test>,
and exits with 1 if they differ.
`

// errDiffer is returned when databases differ.
var errDiffer = errors.New("compilation databases differ")

// Cmd returns the Command for the `cmp` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "cmp <ref> <test>",
		ShortDesc: "compare two compilation databases",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			return &run{}
		},
	}
}

type run struct {
	subcommands.CommandRunBase
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, os.Stdout, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		case errors.Is(err, errDiffer):
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, w io.Writer, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("want 2 args, got %d: %w", len(args), flag.ErrHelp)
	}
	ref, err := compdb.Load(args[0])
	if err != nil {
		return err
	}
	test, err := compdb.Load(args[1])
	if err != nil {
		return err
	}
	diff := compdb.Compare(ref, test)
	report(w, args[0], args[1], diff, ui.IsTerminal())
	if !diff.Equal() {
		return errDiffer
	}
	return nil
}

func report(w io.Writer, refName, testName string, diff *compdb.Diff, color bool) {
	sgr := func(code ui.SGRCode, s string) string {
		if !color {
			return s
		}
		return ui.SGR(code, s)
	}
	fmt.Fprintf(w, "ref:  %s: %d entries\n", refName, diff.RefCount)
	fmt.Fprintf(w, "test: %s: %d entries\n", testName, diff.TestCount)
	if diff.Equal() {
		fmt.Fprintln(w, sgr(ui.Green, "same"))
		return
	}
	if len(diff.Missing) > 0 {
		fmt.Fprintf(w, "%s: %d\n", sgr(ui.Red, "missing in test"), len(diff.Missing))
		for _, e := range diff.Missing {
			fmt.Fprintf(w, " - %s\n", e)
		}
	}
	if len(diff.Extra) > 0 {
		fmt.Fprintf(w, "%s: %d\n", sgr(ui.Yellow, "extra in test"), len(diff.Extra))
		for _, e := range diff.Extra {
			fmt.Fprintf(w, " + %s\n", e)
		}
	}
	if diff.CountMismatch() {
		fmt.Fprintf(w, "%s: same entries with different counts\n", sgr(ui.Bold, "count mismatch"))
	}
}
