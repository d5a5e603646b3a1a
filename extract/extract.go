// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package extract extracts a compilation database from strace outputs.
package extract

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/cctrace/compdb"
	"go.chromium.org/infra/build/cctrace/toolsupport/gccutil"
	"go.chromium.org/infra/build/cctrace/toolsupport/straceutil"
)

// Stats counts records seen by the Extractor.
type Stats struct {
	Lines        int // lines read
	Invocations  int // execve records
	Exits        int // exit footers
	ParseErrors  int // unparsable lines
	Compiles     int // C/C++ compile invocations
	NotCompiling int // compiles that only preprocess or run cc1
	NoSource     int // compiles without a source file
	Malformed    int // compiles with malformed arguments
	Entries      int // entries added to the database
}

func (s Stats) String() string {
	return fmt.Sprintf("lines=%d execve=%d exit=%d parse_error=%d compile=%d not_compiling=%d no_source=%d malformed=%d entries=%d",
		s.Lines, s.Invocations, s.Exits, s.ParseErrors, s.Compiles, s.NotCompiling, s.NoSource, s.Malformed, s.Entries)
}

// Extractor builds compilation database entries from strace output lines.
// It is not safe for concurrent use, except ProcessFiles that reads
// files concurrently by itself.
type Extractor struct {
	strict  bool
	jobs    int
	filter  func(args []string) (gccutil.Result, error)
	builder *compdb.Builder
	stats   Stats
}

// New creates a new Extractor for cfg.
func New(cfg *Config) (*Extractor, error) {
	filter := gccutil.FilterArgs
	if len(cfg.IgnoredFlags) > 0 {
		f, err := gccutil.NewFilter(cfg.IgnoredFlags)
		if err != nil {
			return nil, err
		}
		filter = f.Apply
	}
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return &Extractor{
		strict: cfg.Strict,
		jobs:   jobs,
		filter: filter,
		builder: compdb.NewBuilder(compdb.Option{
			WorkDirEnv: cfg.WorkDirEnv,
		}),
	}, nil
}

// Entries returns entries extracted so far, in the order they were seen.
func (e *Extractor) Entries() []compdb.Entry {
	return e.builder.Entries()
}

// Stats returns the current stats.
func (e *Extractor) Stats() Stats {
	s := e.stats
	s.Entries = e.builder.Len()
	return s
}

// ProcessLine processes one strace output line.
func (e *Extractor) ProcessLine(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	inv, err := straceutil.ParseLine(line)
	return e.apply("<line>", inv, err)
}

// ProcessReader processes strace output lines read from r.
// name is used in log messages.
func (e *Extractor) ProcessReader(ctx context.Context, name string, r io.Reader) error {
	return straceutil.ScanLines(ctx, r, func(lineno int, line string) error {
		if line == "" {
			return nil
		}
		inv, err := straceutil.ParseLine(line)
		return e.apply(fmt.Sprintf("%s:%d", name, lineno), inv, err)
	})
}

type record struct {
	lineno int
	inv    *straceutil.Invocation
	err    error
}

// ProcessFiles processes strace output files.
// Files are read and parsed concurrently, and their records are applied
// in the order of fnames, so the result doesn't depend on scheduling.
func (e *Extractor) ProcessFiles(ctx context.Context, fnames []string) error {
	results := make([][]record, len(fnames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.jobs)
	for i, fname := range fnames {
		i, fname := i, fname
		g.Go(func() error {
			recs, err := parseFile(gctx, fname)
			if err != nil {
				return err
			}
			results[i] = recs
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return err
	}
	for i, fname := range fnames {
		for _, rec := range results[i] {
			err := e.apply(fmt.Sprintf("%s:%d", fname, rec.lineno), rec.inv, rec.err)
			if err != nil {
				return err
			}
		}
		results[i] = nil
	}
	log.Debugf("processed %d files: %s", len(fnames), e.Stats())
	return nil
}

func parseFile(ctx context.Context, fname string) ([]record, error) {
	r, err := straceutil.OpenLog(fname)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var recs []record
	err = straceutil.ScanLines(ctx, r, func(lineno int, line string) error {
		if line == "" {
			return nil
		}
		inv, err := straceutil.ParseLine(line)
		recs = append(recs, record{lineno: lineno, inv: inv, err: err})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fname, err)
	}
	return recs, nil
}

// apply applies the result of straceutil.ParseLine to the database.
func (e *Extractor) apply(where string, inv *straceutil.Invocation, err error) error {
	e.stats.Lines++
	if err != nil {
		e.stats.ParseErrors++
		if e.strict {
			return fmt.Errorf("%s: %w", where, err)
		}
		log.Debugf("%s: ignore unparsable line: %v", where, err)
		return nil
	}
	if inv == nil {
		e.stats.Exits++
		return nil
	}
	e.stats.Invocations++
	kind := gccutil.Classify(inv.Path, inv.Args)
	if !kind.IsCompile() {
		log.Debugf("%s: %s %s", where, kind, inv.Path)
		return nil
	}
	e.stats.Compiles++
	if gccutil.NotCompiling(inv.Args) {
		e.stats.NotCompiling++
		log.Debugf("%s: not compiling %q", where, inv.Args)
		return nil
	}
	res, err := e.filter(inv.Args)
	if err != nil {
		e.stats.Malformed++
		log.Warnf("%s: %v", where, err)
		return nil
	}
	if res.File == "" {
		e.stats.NoSource++
		log.Debugf("%s: no source file in %q", where, inv.Args)
		return nil
	}
	err = e.builder.Add(inv, kind, res)
	if err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}
	return nil
}
