// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package straceutil

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvVar is an environment variable of a traced process.
type EnvVar struct {
	Key   string
	Value string
}

// Invocation is an execve record in strace output.
type Invocation struct {
	// Path is the executable path as invoked.
	Path string
	// Args is argv. Args[0] usually mirrors the invoked name.
	Args []string
	// Env is envp in the order strace printed it.
	Env []EnvVar
	// Retcode is the return value of execve.
	Retcode uint8
}

// Getenv returns the value of the first env var named key.
func (inv *Invocation) Getenv(key string) (string, bool) {
	for _, e := range inv.Env {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// String formats inv as an execve line of strace output.
// ParseLine(inv.String()) reproduces inv.
func (inv *Invocation) String() string {
	var sb strings.Builder
	sb.WriteString(execvePrefix)
	writeQuoted(&sb, inv.Path)
	sb.WriteString(argSep)
	sb.WriteByte('[')
	for i, arg := range inv.Args {
		if i > 0 {
			sb.WriteString(argSep)
		}
		writeQuoted(&sb, arg)
	}
	sb.WriteByte(']')
	sb.WriteString(argSep)
	sb.WriteByte('[')
	for i, e := range inv.Env {
		if i > 0 {
			sb.WriteString(argSep)
		}
		writeQuoted(&sb, e.Key+"="+e.Value)
	}
	sb.WriteByte(']')
	sb.WriteString(retSep)
	sb.WriteString(strconv.Itoa(int(inv.Retcode)))
	return sb.String()
}

func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	sb.WriteString(s)
	sb.WriteByte('"')
}

// ParseError is an error for a line that is neither an execve record
// nor an exit footer.
type ParseError struct {
	Line   string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("strace line: %s at %d: %q", e.Reason, e.Offset, e.Line)
}

const (
	execvePrefix = "execve("
	argSep       = ", "
	retSep       = ") = "
	footerPrefix = "+++ exited with "
	footerSuffix = " +++"
)

// ParseLine parses a line of strace output recorded with
// `-e trace=execve -v -s <large>`.
//
//	execve("<path>", ["<arg>", ...], ["<key>=<value>", ...]) = <retcode>
//	+++ exited with <retcode> +++
//
// It returns the invocation for an execve line, nil for an exit footer,
// and *ParseError for anything else.
// Quoted strings have no escape sequence, i.e. they can't contain '"'.
func ParseLine(line string) (*Invocation, error) {
	p := &lineParser{line: line}
	if strings.HasPrefix(line, footerPrefix) {
		p.pos = len(footerPrefix)
		if _, err := p.retcode(); err != nil {
			return nil, err
		}
		if err := p.expect(footerSuffix); err != nil {
			return nil, err
		}
		if err := p.end(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return p.execve()
}

// lineParser is a cursor on a strace line.
type lineParser struct {
	line string
	pos  int
}

func (p *lineParser) errorf(format string, args ...any) error {
	return &ParseError{
		Line:   p.line,
		Offset: p.pos,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (p *lineParser) expect(tok string) error {
	if !strings.HasPrefix(p.line[p.pos:], tok) {
		return p.errorf("want %q", tok)
	}
	p.pos += len(tok)
	return nil
}

func (p *lineParser) end() error {
	if p.pos != len(p.line) {
		return p.errorf("trailing garbage")
	}
	return nil
}

func (p *lineParser) execve() (*Invocation, error) {
	if err := p.expect(execvePrefix); err != nil {
		return nil, err
	}
	path, err := p.quoted()
	if err != nil {
		return nil, err
	}
	if err := p.expect(argSep); err != nil {
		return nil, err
	}
	args, err := p.stringArray()
	if err != nil {
		return nil, err
	}
	if err := p.expect(argSep); err != nil {
		return nil, err
	}
	env, err := p.envs()
	if err != nil {
		return nil, err
	}
	if err := p.expect(retSep); err != nil {
		return nil, err
	}
	ret, err := p.retcode()
	if err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return &Invocation{
		Path:    path,
		Args:    args,
		Env:     env,
		Retcode: ret,
	}, nil
}

// quoted parses `"..."`. It doesn't support escaped '"'.
func (p *lineParser) quoted() (string, error) {
	if err := p.expect(`"`); err != nil {
		return "", err
	}
	i := strings.IndexByte(p.line[p.pos:], '"')
	if i < 0 {
		return "", p.errorf("unterminated string")
	}
	s := p.line[p.pos : p.pos+i]
	p.pos += i + 1
	return s, nil
}

// stringArray parses `["...", "..."]`. `[]` is valid.
func (p *lineParser) stringArray() ([]string, error) {
	if err := p.expect("["); err != nil {
		return nil, err
	}
	var ss []string
	if strings.HasPrefix(p.line[p.pos:], "]") {
		p.pos++
		return ss, nil
	}
	for {
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		ss = append(ss, s)
		if strings.HasPrefix(p.line[p.pos:], "]") {
			p.pos++
			return ss, nil
		}
		if err := p.expect(argSep); err != nil {
			return nil, err
		}
	}
}

// envs parses `["key=value", ...]`. value may contain '='.
func (p *lineParser) envs() ([]EnvVar, error) {
	start := p.pos
	ss, err := p.stringArray()
	if err != nil {
		return nil, err
	}
	var env []EnvVar
	for _, s := range ss {
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			p.pos = start
			return nil, p.errorf("env %q is not key=value", s)
		}
		env = append(env, EnvVar{Key: k, Value: v})
	}
	return env, nil
}

// retcode parses decimal digits as uint8.
func (p *lineParser) retcode() (uint8, error) {
	i := p.pos
	for i < len(p.line) && p.line[i] >= '0' && p.line[i] <= '9' {
		i++
	}
	if i == p.pos {
		return 0, p.errorf("want return code")
	}
	if i-p.pos > 1 && p.line[p.pos] == '0' {
		return 0, p.errorf("bad return code %q: leading zero", p.line[p.pos:i])
	}
	v, err := strconv.ParseUint(p.line[p.pos:i], 10, 8)
	if err != nil {
		return 0, p.errorf("bad return code %q: %v", p.line[p.pos:i], err)
	}
	p.pos = i
	return uint8(v), nil
}
