// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"go.chromium.org/infra/build/cctrace/compdb"
)

func TestCompare(t *testing.T) {
	a := compdb.Entry{Directory: "/p", File: "a.c", Arguments: []string{"cc", "-c", "a.c"}}
	b := compdb.Entry{Directory: "/p", File: "b.c", Arguments: []string{"cc", "-c", "b.c"}}
	c := compdb.Entry{Directory: "/p", File: "c.c", Arguments: []string{"cc", "-c", "c.c"}}
	aOut := a
	aOut.Output = "a.o"
	aDir := a
	aDir.Directory = "/q"

	for _, tc := range []struct {
		name          string
		ref, test     []compdb.Entry
		want          *compdb.Diff
		equal         bool
		countMismatch bool
	}{
		{
			name:  "empty",
			want:  &compdb.Diff{SameEntries: true},
			equal: true,
		},
		{
			name:  "permutation",
			ref:   []compdb.Entry{a, b, c},
			test:  []compdb.Entry{c, a, b},
			want:  &compdb.Diff{RefCount: 3, TestCount: 3, SameEntries: true},
			equal: true,
		},
		{
			name: "duplicate",
			ref:  []compdb.Entry{a, b},
			test: []compdb.Entry{a, b, a},
			want: &compdb.Diff{
				RefCount:    2,
				TestCount:   3,
				Extra:       []compdb.Entry{a},
				SameEntries: true,
			},
			countMismatch: true,
		},
		{
			name: "missingAndExtra",
			ref:  []compdb.Entry{a, b},
			test: []compdb.Entry{b, c},
			want: &compdb.Diff{
				RefCount:  2,
				TestCount: 2,
				Missing:   []compdb.Entry{a},
				Extra:     []compdb.Entry{c},
			},
		},
		{
			name: "outputDiffers",
			ref:  []compdb.Entry{a},
			test: []compdb.Entry{aOut},
			want: &compdb.Diff{
				RefCount:  1,
				TestCount: 1,
				Missing:   []compdb.Entry{a},
				Extra:     []compdb.Entry{aOut},
			},
		},
		{
			name: "directoryDiffers",
			ref:  []compdb.Entry{a, b},
			test: []compdb.Entry{b, aDir},
			want: &compdb.Diff{
				RefCount:  2,
				TestCount: 2,
				Missing:   []compdb.Entry{a},
				Extra:     []compdb.Entry{aDir},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := compdb.Compare(tc.ref, tc.test)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Compare diff -want +got:\n%s", diff)
			}
			if got.Equal() != tc.equal {
				t.Errorf("Equal()=%t; want %t", got.Equal(), tc.equal)
			}
			if got.CountMismatch() != tc.countMismatch {
				t.Errorf("CountMismatch()=%t; want %t", got.CountMismatch(), tc.countMismatch)
			}
		})
	}
}
