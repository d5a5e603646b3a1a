// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tracecmd

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestExitCode(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name string
		cmd  *exec.Cmd
		want int
	}{
		{
			name: "success",
			cmd:  exec.CommandContext(ctx, "sh", "-c", "exit 0"),
			want: 0,
		},
		{
			name: "exit3",
			cmd:  exec.CommandContext(ctx, "sh", "-c", "exit 3"),
			want: 3,
		},
		{
			name: "notFound",
			cmd:  exec.CommandContext(ctx, "/nonexistent/build-command"),
			want: 1,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := exitCode(tc.cmd.Run())
			if got != tc.want {
				t.Errorf("exitCode(%q)=%d; want %d", tc.cmd.Args, got, tc.want)
			}
		})
	}
}

func TestBuildError(t *testing.T) {
	werr := errors.New("exit status 2")
	var err error = buildError{exitCode: 2, err: werr}
	var berr buildError
	if !errors.As(err, &berr) || berr.exitCode != 2 {
		t.Errorf("errors.As(%v)=%v, %d; want true, 2", err, errors.As(err, &berr), berr.exitCode)
	}
	if !errors.Is(err, werr) {
		t.Errorf("errors.Is(%v, %v)=false; want true", err, werr)
	}
}
