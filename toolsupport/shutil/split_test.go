// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	for _, tc := range []struct {
		cmdline string
		want    []string
	}{
		{
			cmdline: `/usr/bin/clang++ -MD -MF obj/base/base64.o.d -DCR_CLANG_REVISION=\"llvmorg-17\" -I../.. -c ../../base/base64.cc  -o obj/base/base64.o`,
			want: []string{
				"/usr/bin/clang++",
				"-MD",
				"-MF",
				"obj/base/base64.o.d",
				`-DCR_CLANG_REVISION="llvmorg-17"`,
				"-I../..",
				"-c",
				"../../base/base64.cc",
				"-o",
				"obj/base/base64.o",
			},
		},
		{
			cmdline: `cc -c "dir with space/a.c" -DX="a b" ""`,
			want:    []string{"cc", "-c", "dir with space/a.c", "-DX=a b", ""},
		},
		{
			cmdline: "cc\t-c\na.c  ",
			want:    []string{"cc", "-c", "a.c"},
		},
		{
			cmdline: `cc -DPATH="C:\\dir" '$HOME' a|b`,
			want:    []string{"cc", `-DPATH=C:\dir`, "'$HOME'", "a|b"},
		},
		{
			cmdline: "",
		},
	} {
		got, err := Split(tc.cmdline)
		if err != nil {
			t.Errorf("Split(%q)=_, %v; want nil err", tc.cmdline, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Split(%q) diff -want +got:\n%s", tc.cmdline, diff)
		}
	}
}

func TestSplit_Error(t *testing.T) {
	for _, cmdline := range []string{
		`cc -c "a.c`,
		`cc -c a.c\`,
	} {
		got, err := Split(cmdline)
		if err == nil {
			t.Errorf("Split(%q)=%q, nil; want err", cmdline, got)
		}
	}
}

func TestJoin(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{
			args: []string{"cc", "-c", "main.c"},
			want: "cc -c main.c",
		},
		{
			args: []string{"c++", "-c", "-DX=\"a b\"", `C:\x`, "", "dir/a b.cc"},
			want: `c++ -c "-DX=\"a b\"" "C:\\x" "" "dir/a b.cc"`,
		},
	} {
		got := Join(tc.args)
		if got != tc.want {
			t.Errorf("Join(%q)=%q; want %q", tc.args, got, tc.want)
		}
		back, err := Split(got)
		if err != nil {
			t.Errorf("Split(%q)=_, %v; want nil err", got, err)
			continue
		}
		if diff := cmp.Diff(tc.args, back); diff != "" {
			t.Errorf("Split(Join(%q)) diff -want +got:\n%s", tc.args, diff)
		}
	}
}
