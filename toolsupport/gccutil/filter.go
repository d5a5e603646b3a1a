// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrMalformedInvocation is an error when args end in the middle of
// a flag that takes a value.
var ErrMalformedInvocation = errors.New("malformed invocation")

// ignoredFlags are flags not relevant for compiling a translation unit,
// mapped to the number of values that follow the flag.
var ignoredFlags = map[string]int{
	// dependency generation
	"-MD":  0,
	"-MMD": 0,
	"-MG":  0,
	"-MP":  0,
	"-MF":  1,
	"-MT":  1,
	"-MQ":  1,
	// linker options
	"-static":   0,
	"-shared":   0,
	"-s":        0,
	"-rdynamic": 0,
	"-l":        1,
	"-L":        1,
	"-u":        1,
	"-z":        1,
	"-T":        1,
	"-Xlinker":  1,
	// compilation database entry adds it explicitly.
	"-c": 0,
}

// sourceExts are extensions of C family source files, without '.'.
var sourceExts = map[string]bool{
	"c":   true,
	"i":   true,
	"ii":  true,
	"m":   true,
	"mm":  true,
	"mii": true,
	"C":   true,
	"cc":  true,
	"CC":  true,
	"cp":  true,
	"cpp": true,
	"cxx": true,
	"c++": true,
	"C++": true,
	"t++": true,
	"txx": true,
}

// notOutputPrefixes are prefixes of driver flags that start with "-o"
// but are not a joined "-o<out>".
var notOutputPrefixes = []string{
	"-obj",
	"-openmp",
	"-opt-",
}

// joinedOutput returns out of a joined "-o<out>" flag.
func joinedOutput(arg string) (string, bool) {
	out, ok := strings.CutPrefix(arg, "-o")
	if !ok || out == "" {
		return "", false
	}
	for _, prefix := range notOutputPrefixes {
		if strings.HasPrefix(arg, prefix) {
			return "", false
		}
	}
	return out, true
}

// IsSourceFile reports whether fname has an extension of C family source.
func IsSourceFile(fname string) bool {
	ext := filepath.Ext(fname)
	if ext == "" {
		return false
	}
	return sourceExts[ext[1:]]
}

// Result is a result of Filter.
type Result struct {
	// Args are filtered args. Args[0] is argv[0] as given.
	Args []string
	// File is the primary source file, or "" if none.
	File string
	// Output is the value of -o, or "" if none.
	Output string
}

// Filter filters compiler args for compilation database.
type Filter struct {
	ignored map[string]int
}

var defaultFilter = &Filter{ignored: ignoredFlags}

// NewFilter returns a filter that ignores extra flags in addition to
// the default ignored flags. extra maps a flag to the number of
// values it takes, which must be 0 or 1.
func NewFilter(extra map[string]int) (*Filter, error) {
	ignored := make(map[string]int, len(ignoredFlags)+len(extra))
	for flag, n := range ignoredFlags {
		ignored[flag] = n
	}
	for flag, n := range extra {
		if n != 0 && n != 1 {
			return nil, fmt.Errorf("ignored flag %q: bad arity %d", flag, n)
		}
		switch flag {
		case "-D", "-I":
			return nil, fmt.Errorf("ignored flag %q: preprocessor flag must be kept", flag)
		}
		ignored[flag] = n
	}
	return &Filter{ignored: ignored}, nil
}

// FilterArgs filters args with the default ignored flags.
func FilterArgs(args []string) (Result, error) {
	return defaultFilter.Apply(args)
}

// Apply filters compiler args.
// It drops ignored flags (and their values), keeps -D, -I and -o with
// their values, and keeps other args as is.
// The last non-flag arg with source extension becomes the primary
// source file, with leading "./" removed.
// It returns ErrMalformedInvocation if an ignored flag misses its value.
func (f *Filter) Apply(args []string) (Result, error) {
	var res Result
	if len(args) == 0 {
		return res, nil
	}
	res.Args = append(make([]string, 0, len(args)), args[0])
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if n, ok := f.ignored[arg]; ok {
			if i+n >= len(args) {
				return Result{}, fmt.Errorf("%w: %s at end of args", ErrMalformedInvocation, arg)
			}
			if arg == "-o" && n > 0 {
				res.Output = args[i+1]
			}
			i += n
			continue
		}
		switch arg {
		case "-D", "-I", "-o":
			res.Args = append(res.Args, arg)
			if i+1 < len(args) {
				i++
				res.Args = append(res.Args, args[i])
				if arg == "-o" {
					res.Output = args[i]
				}
			}
			continue
		}
		if strings.HasPrefix(arg, "-") {
			if out, ok := joinedOutput(arg); ok {
				res.Output = out
			}
			res.Args = append(res.Args, arg)
			continue
		}
		if IsSourceFile(arg) {
			arg = strings.TrimPrefix(arg, "./")
			res.File = arg
		}
		res.Args = append(res.Args, arg)
	}
	return res, nil
}
