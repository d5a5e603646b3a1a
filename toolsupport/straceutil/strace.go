// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package straceutil provides utilities for strace.
package straceutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var once sync.Once
var path string

// Available returns whether strace is available or not.
func Available() bool {
	once.Do(func() {
		if runtime.GOOS != "linux" {
			return
		}
		var err error
		path, err = exec.LookPath("strace")
		if err != nil {
			log.Warnf("strace is not found: %v", err)
			return
		}
	})
	return path != ""
}

// DefaultStringLimit is the default max string size strace prints.
// Compiler command lines must not be truncated, since truncated
// strings are followed by "..." and fail to parse.
const DefaultStringLimit = 8192

// Strace represents a cmd traced by strace.
type Strace struct {
	id   string
	args []string
	dir  string

	// stringLimit is the value of strace -s.
	stringLimit int

	// outdir holds per-process output files <id>.<pid>.
	outdir string
}

// New creates a new Strace for cmd, which runs in dir.
// It will be fatal error when not available, so check Available before New.
func New(ctx context.Context, id string, args []string, dir string) (*Strace, error) {
	if !Available() {
		panic("straceutil.New is called when !Available")
	}
	outdir, err := os.MkdirTemp("", fmt.Sprintf("cctrace-%s-*", id))
	if err != nil {
		return nil, err
	}
	log.Debugf("strace %s: outputs in %s", id, outdir)
	return &Strace{
		id:          id,
		args:        args,
		dir:         dir,
		stringLimit: DefaultStringLimit,
		outdir:      outdir,
	}, nil
}

// Close removes strace output files.
func (s *Strace) Close() {
	err := os.RemoveAll(s.outdir)
	if err != nil {
		log.Warnf("failed to remove %s: %v", s.outdir, err)
	}
}

// Dir returns the working directory of the cmd.
func (s *Strace) Dir() string {
	return s.dir
}

// Args returns args to run under strace.
func (s *Strace) Args(ctx context.Context) []string {
	args := []string{
		path,
		// one output file per process: <prefix>.<pid>
		"-ff",
		"-o", filepath.Join(s.outdir, s.id),
		"-e", "trace=execve",
		"-s", strconv.Itoa(s.stringLimit),
		// unabridged envp
		"-v",
		"--",
	}
	args = append(args, s.args...)
	return args
}

// Outputs returns strace output files, ordered by pid.
func (s *Strace) Outputs() ([]string, error) {
	ents, err := os.ReadDir(s.outdir)
	if err != nil {
		return nil, err
	}
	type output struct {
		fname string
		pid   int
	}
	var outputs []output
	prefix := s.id + "."
	for _, ent := range ents {
		if !ent.Type().IsRegular() {
			return nil, fmt.Errorf("unexpected non-file entry %s in %s", ent.Name(), s.outdir)
		}
		pid, err := strconv.Atoi(strings.TrimPrefix(ent.Name(), prefix))
		if !strings.HasPrefix(ent.Name(), prefix) || err != nil {
			log.Warnf("ignore unexpected file %s in %s", ent.Name(), s.outdir)
			continue
		}
		outputs = append(outputs, output{
			fname: filepath.Join(s.outdir, ent.Name()),
			pid:   pid,
		})
	}
	sort.Slice(outputs, func(i, j int) bool {
		return outputs[i].pid < outputs[j].pid
	})
	fnames := make([]string, 0, len(outputs))
	for _, o := range outputs {
		fnames = append(fnames, o.fname)
	}
	return fnames, nil
}
