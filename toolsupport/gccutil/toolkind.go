// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gccutil provides utilities of gcc compatible compilers.
package gccutil

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// Action is what a compiler invocation does.
type Action int

const (
	// Other is a compiler invocation that is none of the others,
	// e.g. compile and link in one step.
	Other Action = iota
	Compile
	EmitAsm
	Link
)

func (a Action) String() string {
	switch a {
	case Compile:
		return "Compile"
	case EmitAsm:
		return "EmitAsm"
	case Link:
		return "Link"
	default:
		return "Other"
	}
}

// Kind is a kind of tool.
type Kind int

const (
	Unknown Kind = iota
	CCompiler
	CXXCompiler
	CompilerWrapper
	Linker
	Archiver
)

func (k Kind) String() string {
	switch k {
	case CCompiler:
		return "CCompiler"
	case CXXCompiler:
		return "CXXCompiler"
	case CompilerWrapper:
		return "CompilerWrapper"
	case Linker:
		return "Linker"
	case Archiver:
		return "Archiver"
	default:
		return "Unknown"
	}
}

// ToolKind is a classification of a traced executable.
// Action is set only for CCompiler and CXXCompiler.
type ToolKind struct {
	Kind   Kind
	Action Action
}

func (t ToolKind) String() string {
	if t.IsCompiler() {
		return fmt.Sprintf("%s(%s)", t.Kind, t.Action)
	}
	return t.Kind.String()
}

// IsCompiler reports whether t is a C or C++ compiler.
func (t ToolKind) IsCompiler() bool {
	return t.Kind == CCompiler || t.Kind == CXXCompiler
}

// IsCompile reports whether t is a compiler compiling sources
// to objects.
func (t ToolKind) IsCompile() bool {
	return t.IsCompiler() && t.Action == Compile
}

// Label returns canonical compiler name used as argv[0] in
// compilation database, or "" for non compilers.
func (t ToolKind) Label() string {
	switch t.Kind {
	case CCompiler:
		return "cc"
	case CXXCompiler:
		return "c++"
	}
	return ""
}

// compiler name patterns are the ones used in intercept-build.
var (
	cPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^i?cc$`),
		regexp.MustCompile(`^([^-]*-)*[mg]cc(-?\d+(\.\d+){0,2})?$`),
		regexp.MustCompile(`^g?xlc$`),
		regexp.MustCompile(`^([^-]*-)*clang(-\d+(\.\d+){0,2})?$`),
	}
	cxxPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(c\+\+|cxx|CC)$`),
		regexp.MustCompile(`^([^-]*-)*[mg]\+\+(-\d+(\.\d+){0,2})?$`),
		regexp.MustCompile(`^([^-]*-)*clang\+\+(-\d+(\.\d+){0,2})?$`),
		regexp.MustCompile(`^icpc$`),
		regexp.MustCompile(`^g?xl(C|c\+\+)$`),
	}
	linkerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^ld(\.(bfd|gold))?$`),
	}
	wrapperPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(distcc|ccache)$`),
		regexp.MustCompile(`^mpi(cc|cxx|CC|c\+\+)$`),
	}

	linkFlag = regexp.MustCompile(`^-(l|L|Wl,).+`)
)

func matchAny(patterns []*regexp.Regexp, name string) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Classify classifies the executable at path invoked with args.
// Only the base name of path is used.
func Classify(path string, args []string) ToolKind {
	name := filepath.Base(path)
	switch {
	case matchAny(cPatterns, name):
		return ToolKind{Kind: CCompiler, Action: CompilerAction(args)}
	case matchAny(cxxPatterns, name):
		return ToolKind{Kind: CXXCompiler, Action: CompilerAction(args)}
	case matchAny(linkerPatterns, name):
		return ToolKind{Kind: Linker}
	case name == "ar":
		return ToolKind{Kind: Archiver}
	case matchAny(wrapperPatterns, name):
		return ToolKind{Kind: CompilerWrapper}
	}
	return ToolKind{Kind: Unknown}
}

// CompilerAction returns the action of compiler args.
// A link flag (-l, -L, -Wl,) anywhere in args makes it Link.
// Otherwise, the first -S or -c decides it.
func CompilerAction(args []string) Action {
	action := Other
	for _, arg := range args {
		switch {
		case linkFlag.MatchString(arg):
			return Link
		case action != Other:
		case arg == "-S":
			action = EmitAsm
		case arg == "-c":
			action = Compile
		}
	}
	return action
}

// NotCompiling reports whether compiler args only preprocess, print
// deps or run a compiler internal stage, so the invocation
// doesn't compile a translation unit even with -c.
func NotCompiling(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-E", "-cc1", "-cc1as", "-M", "-MM", "-###":
			return true
		}
	}
	return false
}
