// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package compdb provides JSON compilation database.
// https://clang.llvm.org/docs/JSONCompilationDatabase.html
package compdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"go.chromium.org/infra/build/cctrace/toolsupport/shutil"
)

// DefaultFilename is the canonical filename of compilation database.
const DefaultFilename = "compile_commands.json"

// Entry is an entry of compilation database.
type Entry struct {
	// Directory is the working directory of the compilation.
	Directory string `json:"directory"`
	// File is the main translation unit source.
	File string `json:"file"`
	// Arguments is the compile command as argv.
	Arguments []string `json:"arguments"`
	// Output is the name of the output, if known.
	Output string `json:"output,omitempty"`
}

// String returns e as "<directory>: <file>: <command line>", or
// "<directory>: <file> -> <output>: <command line>" when output is set.
func (e Entry) String() string {
	if e.Output != "" {
		return fmt.Sprintf("%s: %s -> %s: %s", e.Directory, e.File, e.Output, shutil.Join(e.Arguments))
	}
	return fmt.Sprintf("%s: %s: %s", e.Directory, e.File, shutil.Join(e.Arguments))
}

// Marshal encodes entries as pretty-printed JSON array.
func Marshal(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(entries)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// entryJSON accepts entries with either arguments or command.
type entryJSON struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments"`
	Command   *string  `json:"command"`
	Output    string   `json:"output"`
}

// Unmarshal decodes compilation database.
// An entry with command instead of arguments is split into arguments.
func Unmarshal(buf []byte) ([]Entry, error) {
	var ents []entryJSON
	err := json.Unmarshal(buf, &ents)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(ents))
	for i, ent := range ents {
		args := ent.Arguments
		if args == nil && ent.Command != nil {
			args, err = shutil.Split(*ent.Command)
			if err != nil {
				return nil, fmt.Errorf("entry %d for %s: %w", i, ent.File, err)
			}
		}
		if args == nil {
			return nil, fmt.Errorf("entry %d for %s: neither arguments nor command", i, ent.File)
		}
		entries = append(entries, Entry{
			Directory: ent.Directory,
			File:      ent.File,
			Arguments: args,
			Output:    ent.Output,
		})
	}
	return entries, nil
}

// Load loads compilation database from fname.
func Load(fname string) ([]Entry, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	entries, err := Unmarshal(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", fname, err)
	}
	return entries, nil
}
