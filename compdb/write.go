// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// WriteFile writes entries to fname.
// It holds a lock on fname.lock while writing, and replaces fname
// atomically, so readers never see a partially written database and
// the existing fname is kept on failure.
func WriteFile(ctx context.Context, fname string, entries []Entry) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf, err := Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal compilation database: %w", err)
	}

	lock, err := newLockFile(fname + ".lock")
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, lock.Close())
	}()
	err = lock.Lock()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, lock.Unlock())
	}()

	f, err := os.CreateTemp(filepath.Dir(fname), filepath.Base(fname)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()
	_, err = f.Write(buf)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	err = f.Sync()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to sync %s: %w", tmp, err)
	}
	err = f.Close()
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	// CreateTemp creates 0600 file.
	err = os.Chmod(tmp, 0644)
	if err != nil {
		return err
	}
	err = os.Rename(tmp, fname)
	if err != nil {
		return err
	}
	log.Infof("wrote %d entries to %s", len(entries), fname)
	return nil
}
