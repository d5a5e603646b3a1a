// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil provides command line quoting used in the command
// field of compilation database, where '"' and '\' are the only
// special characters. Shell expansion is not supported.
package shutil

import (
	"errors"
	"strings"
)

var (
	errUnterminatedQuote  = errors.New("failed to split: unterminated quote")
	errUnterminatedEscape = errors.New("failed to split: backslash at end")
)

// Split splits a command line into args.
func Split(cmdline string) ([]string, error) {
	var args []string
	var sb strings.Builder
	inarg := false
	inquote := false
	for i := 0; i < len(cmdline); i++ {
		ch := cmdline[i]
		switch {
		case ch == '\\':
			i++
			if i >= len(cmdline) {
				return nil, errUnterminatedEscape
			}
			sb.WriteByte(cmdline[i])
			inarg = true
		case ch == '"':
			inquote = !inquote
			inarg = true
		case !inquote && isSpace(ch):
			if inarg {
				args = append(args, sb.String())
				sb.Reset()
				inarg = false
			}
		default:
			sb.WriteByte(ch)
			inarg = true
		}
	}
	if inquote {
		return nil, errUnterminatedQuote
	}
	if inarg {
		args = append(args, sb.String())
	}
	return args, nil
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
