// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb

import (
	"encoding/binary"
	"slices"

	"github.com/zeebo/xxh3"
)

// Diff is a difference of two compilation databases as multisets of
// entries. Entry identity is (directory, file, arguments, output).
type Diff struct {
	// RefCount and TestCount are the number of entries.
	RefCount, TestCount int

	// Missing are entries in ref but not in test, in ref order.
	// An entry appears as many times as ref has more copies than test.
	Missing []Entry
	// Extra are entries in test but not in ref, in test order.
	Extra []Entry

	// SameEntries reports whether ref and test have the same set of
	// distinct entries, ignoring multiplicities.
	SameEntries bool
}

// Equal reports whether ref and test have the same entries with the
// same multiplicities.
func (d *Diff) Equal() bool {
	return len(d.Missing) == 0 && len(d.Extra) == 0 && d.RefCount == d.TestCount
}

// CountMismatch reports whether only multiplicities of entries differ.
func (d *Diff) CountMismatch() bool {
	return d.SameEntries && !d.Equal()
}

// Compare compares ref and test, ignoring entry order.
func Compare(ref, test []Entry) *Diff {
	d := &Diff{
		RefCount:  len(ref),
		TestCount: len(test),
	}
	refSet := newEntrySet(ref)
	testSet := newEntrySet(test)
	d.Missing = refSet.subtract(ref, testSet)
	d.Extra = testSet.subtract(test, refSet)
	d.SameEntries = refSet.distinct() == testSet.distinct() && refSet.containsAll(testSet)
	return d
}

// entrySet is a multiset of entries keyed by hash.
type entrySet struct {
	buckets map[uint64][]*entryCount
}

type entryCount struct {
	entry Entry
	n     int
}

func newEntrySet(entries []Entry) *entrySet {
	s := &entrySet{buckets: make(map[uint64][]*entryCount)}
	for _, e := range entries {
		s.find(e, true).n++
	}
	return s
}

// find returns the counter of e. It creates zero counter if create
// is true, or returns nil if not found.
func (s *entrySet) find(e Entry, create bool) *entryCount {
	h := hashEntry(e)
	for _, c := range s.buckets[h] {
		if equalEntry(c.entry, e) {
			return c
		}
	}
	if !create {
		return nil
	}
	c := &entryCount{entry: e}
	s.buckets[h] = append(s.buckets[h], c)
	return c
}

func (s *entrySet) count(e Entry) int {
	c := s.find(e, false)
	if c == nil {
		return 0
	}
	return c.n
}

func (s *entrySet) distinct() int {
	n := 0
	for _, b := range s.buckets {
		n += len(b)
	}
	return n
}

func (s *entrySet) containsAll(other *entrySet) bool {
	for _, b := range other.buckets {
		for _, c := range b {
			if s.count(c.entry) == 0 {
				return false
			}
		}
	}
	return true
}

// subtract returns entries of s not covered by other.
// entries are the elements of s, used to keep the order.
func (s *entrySet) subtract(entries []Entry, other *entrySet) []Entry {
	var r []Entry
	seen := make(map[*entryCount]int)
	for _, e := range entries {
		c := s.find(e, false)
		seen[c]++
		if seen[c] > other.count(e) {
			r = append(r, e)
		}
	}
	return r
}

func hashEntry(e Entry) uint64 {
	h := xxh3.New()
	var lbuf [binary.MaxVarintLen64]byte
	field := func(s string) {
		n := binary.PutUvarint(lbuf[:], uint64(len(s)))
		h.Write(lbuf[:n])
		h.Write([]byte(s))
	}
	field(e.Directory)
	field(e.File)
	field(e.Output)
	n := binary.PutUvarint(lbuf[:], uint64(len(e.Arguments)))
	h.Write(lbuf[:n])
	for _, arg := range e.Arguments {
		field(arg)
	}
	return h.Sum64()
}

func equalEntry(a, b Entry) bool {
	return a.Directory == b.Directory &&
		a.File == b.File &&
		a.Output == b.Output &&
		slices.Equal(a.Arguments, b.Arguments)
}
