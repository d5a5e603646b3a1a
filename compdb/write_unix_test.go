// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build unix

package compdb_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"

	"go.chromium.org/infra/build/cctrace/compdb"
)

func TestWriteFile_Locked(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, compdb.DefaultFilename)
	err := os.WriteFile(fname, []byte("[]\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	lf, err := os.OpenFile(fname+".lock", os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer lf.Close()
	err = unix.Flock(int(lf.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		t.Fatal(err)
	}
	defer unix.Flock(int(lf.Fd()), unix.LOCK_UN)

	err = compdb.WriteFile(context.Background(), fname, []compdb.Entry{
		{Directory: "/p", File: "a.c", Arguments: []string{"cc", "a.c"}},
	})
	if !errors.Is(err, unix.EWOULDBLOCK) {
		t.Errorf("WriteFile while locked=%v; want %v", err, unix.EWOULDBLOCK)
	}
	buf, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(buf), "[]\n"; got != want {
		t.Errorf("content=%q; want %q (unchanged)", got, want)
	}
	_, err = os.Stat(fname + ".lock")
	if err != nil {
		t.Errorf("lock file of another process removed: %v", err)
	}
}
