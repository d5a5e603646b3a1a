// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"errors"
	"fmt"

	"go.chromium.org/infra/build/cctrace/toolsupport/gccutil"
	"go.chromium.org/infra/build/cctrace/toolsupport/straceutil"
)

var (
	// ErrNotAdmissible is an error when an invocation that doesn't
	// compile a source file is added to the builder.
	ErrNotAdmissible = errors.New("not a single source compile")

	// ErrMissingWorkingDirectory is an error when an invocation
	// doesn't have working directory in its env.
	ErrMissingWorkingDirectory = errors.New("missing working directory")
)

// DefaultWorkDirEnv is the env var that holds working directory
// of traced processes.
const DefaultWorkDirEnv = "PWD"

// Option is an option of Builder.
type Option struct {
	// WorkDirEnv is env var for working directory.
	// DefaultWorkDirEnv if empty.
	WorkDirEnv string
}

// Builder builds compilation database entries in the order added.
type Builder struct {
	workDirEnv string
	entries    []Entry
}

// NewBuilder creates a new builder.
func NewBuilder(opt Option) *Builder {
	workDirEnv := opt.WorkDirEnv
	if workDirEnv == "" {
		workDirEnv = DefaultWorkDirEnv
	}
	return &Builder{workDirEnv: workDirEnv}
}

// Add adds an entry for inv, classified as kind and filtered as res.
// kind must be a compile and res must have the source file.
func (b *Builder) Add(inv *straceutil.Invocation, kind gccutil.ToolKind, res gccutil.Result) error {
	if !kind.IsCompile() {
		return fmt.Errorf("%w: %s %s", ErrNotAdmissible, inv.Path, kind)
	}
	if res.File == "" || len(res.Args) == 0 {
		return fmt.Errorf("%w: %s no source file", ErrNotAdmissible, inv.Path)
	}
	dir, ok := inv.Getenv(b.workDirEnv)
	if !ok {
		return fmt.Errorf("%w: no %s in env of %s for %s", ErrMissingWorkingDirectory, b.workDirEnv, inv.Path, res.File)
	}
	args := make([]string, 0, len(res.Args)+1)
	args = append(args, kind.Label(), "-c")
	args = append(args, res.Args[1:]...)
	b.entries = append(b.entries, Entry{
		Directory: dir,
		File:      res.File,
		Arguments: args,
		Output:    res.Output,
	})
	return nil
}

// Len returns the number of entries.
func (b *Builder) Len() int {
	return len(b.entries)
}

// Entries returns entries.
func (b *Builder) Entries() []Entry {
	return b.entries
}
