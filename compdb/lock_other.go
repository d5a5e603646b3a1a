// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !unix

package compdb

// lockFile is no-op on non unix platforms, where strace is not available.
type lockFile struct{}

func newLockFile(fname string) (*lockFile, error) {
	return &lockFile{}, nil
}

func (l *lockFile) Close() error  { return nil }
func (l *lockFile) Lock() error   { return nil }
func (l *lockFile) Unlock() error { return nil }
