// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package extractcmd

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/cctrace/compdb"
	"go.chromium.org/infra/build/cctrace/extract"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	traceDir := filepath.Join(dir, "traces")
	err := os.Mkdir(traceDir, 0755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(traceDir, "trace.42"), []byte(`execve("/usr/bin/make", ["make"], ["PWD=/src"]) = 0
execve("/usr/bin/x86_64-linux-gnu-gcc-12", ["x86_64-linux-gnu-gcc-12", "-MD", "-MF", "obj/foo.o.d", "-DNDEBUG", "-c", "foo.c", "-o", "obj/foo.o"], ["PWD=/src"]) = 0
+++ exited with 0 +++
`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, compdb.DefaultFilename)
	c := &run{flags: extract.Flags{Output: output, Jobs: 1}}
	err = c.run(ctx, []string{traceDir})
	if err != nil {
		t.Fatalf("run=%v; want nil", err)
	}
	got, err := compdb.Load(output)
	if err != nil {
		t.Fatal(err)
	}
	want := []compdb.Entry{
		{
			Directory: "/src",
			File:      "foo.c",
			Arguments: []string{"cc", "-c", "-DNDEBUG", "foo.c", "-o", "obj/foo.o"},
			Output:    "obj/foo.o",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("%s diff -want +got:\n%s", output, diff)
	}
}

func TestRun_NoArgs(t *testing.T) {
	c := &run{}
	err := c.run(context.Background(), nil)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("run=%v; want %v", err, flag.ErrHelp)
	}
}
