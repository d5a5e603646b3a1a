// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package straceutil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// maxLineSize is the max size of a strace line.
// execve lines carry full argv and envp.
const maxLineSize = 16 << 20

// logFile is a strace output file, possibly gzipped.
type logFile struct {
	f  *os.File
	gr *gzip.Reader
	r  io.Reader
}

func (l *logFile) Read(buf []byte) (int, error) {
	return l.r.Read(buf)
}

func (l *logFile) Close() error {
	var err error
	if l.gr != nil {
		err = l.gr.Close()
	}
	return errors.Join(err, l.f.Close())
}

// OpenLog opens a strace output file.
// A file with ".gz" suffix is decompressed.
func OpenLog(fname string) (io.ReadCloser, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(fname, ".gz") {
		return &logFile{f: f, r: f}, nil
	}
	gr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read %s: %w", fname, err)
	}
	return &logFile{f: f, gr: gr, r: gr}, nil
}

// ScanLines calls fn for each line in r, with 1-origin line number.
// It stops when fn returns error or ctx is done.
func ScanLines(ctx context.Context, r io.Reader, fn func(lineno int, line string) error) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	lineno := 0
	for s.Scan() {
		if err := ctx.Err(); err != nil {
			return context.Cause(ctx)
		}
		lineno++
		line := strings.TrimSuffix(s.Text(), "\r")
		if err := fn(lineno, line); err != nil {
			return err
		}
	}
	return s.Err()
}

// CollectLogs expands dirs in paths to the files in them, sorted by name.
// Files are kept in the given order.
func CollectLogs(paths []string) ([]string, error) {
	var fnames []string
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			fnames = append(fnames, p)
			continue
		}
		ents, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, ent := range ents {
			if !ent.Type().IsRegular() {
				continue
			}
			names = append(names, filepath.Join(p, ent.Name()))
		}
		sort.Strings(names)
		fnames = append(fnames, names...)
	}
	return fnames, nil
}

// SaveLogs copies strace output files to dir as gzipped files.
// It returns the saved filenames.
func SaveLogs(dir string, fnames []string) ([]string, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	saved := make([]string, 0, len(fnames))
	for _, fname := range fnames {
		dst := filepath.Join(dir, filepath.Base(fname)+".gz")
		err := compressFile(dst, fname)
		if err != nil {
			return saved, fmt.Errorf("failed to save %s: %w", fname, err)
		}
		saved = append(saved, dst)
	}
	return saved, nil
}

func compressFile(dst, src string) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	w, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		f.Close()
		return err
	}
	_, err = io.Copy(w, r)
	if err != nil {
		w.Close()
		f.Close()
		return err
	}
	err = w.Close()
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
