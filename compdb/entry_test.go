// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compdb_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/cctrace/compdb"
)

func TestMarshal(t *testing.T) {
	for _, tc := range []struct {
		name    string
		entries []compdb.Entry
		want    string
	}{
		{
			name: "nil",
			want: "[]\n",
		},
		{
			name: "entries",
			entries: []compdb.Entry{
				{
					Directory: "/proj",
					File:      "main.c",
					Arguments: []string{"cc", "-c", "-DX=<x.h>", "main.c"},
				},
				{
					Directory: "/proj",
					File:      "b.cc",
					Arguments: []string{"c++", "-c", "b.cc"},
					Output:    "b.o",
				},
			},
			want: `[
  {
    "directory": "/proj",
    "file": "main.c",
    "arguments": [
      "cc",
      "-c",
      "-DX=<x.h>",
      "main.c"
    ]
  },
  {
    "directory": "/proj",
    "file": "b.cc",
    "arguments": [
      "c++",
      "-c",
      "b.cc"
    ],
    "output": "b.o"
  }
]
`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := compdb.Marshal(tc.entries)
			if err != nil {
				t.Fatalf("Marshal=_, %v; want nil err", err)
			}
			if diff := cmp.Diff(tc.want, string(got)); diff != "" {
				t.Errorf("Marshal diff -want +got:\n%s", diff)
			}
		})
	}
}

func TestUnmarshal(t *testing.T) {
	buf := []byte(`[
  {"directory": "/a", "file": "x.c", "arguments": ["cc", "-c", "x.c"]},
  {"directory": "/b", "file": "y.cc", "command": "c++ -c \"dir/y z.cc\" -DV=\\\"1\\\"", "output": "y.o"}
]`)
	got, err := compdb.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal=_, %v; want nil err", err)
	}
	want := []compdb.Entry{
		{
			Directory: "/a",
			File:      "x.c",
			Arguments: []string{"cc", "-c", "x.c"},
		},
		{
			Directory: "/b",
			File:      "y.cc",
			Arguments: []string{"c++", "-c", "dir/y z.cc", `-DV="1"`},
			Output:    "y.o",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unmarshal diff -want +got:\n%s", diff)
	}
}

func TestUnmarshal_Error(t *testing.T) {
	for _, buf := range []string{
		`{}`,
		`[{"directory": "/a", "file": "x.c"}]`,
		`[{"directory": "/a", "file": "x.c", "command": "cc \"x.c"}]`,
		`[`,
	} {
		got, err := compdb.Unmarshal([]byte(buf))
		if err == nil {
			t.Errorf("Unmarshal(%q)=%v, nil; want err", buf, got)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, compdb.DefaultFilename)
	entries := []compdb.Entry{
		{Directory: "/p", File: "a.c", Arguments: []string{"cc", "-c", "a.c"}},
	}
	buf, err := compdb.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(fname, buf, 0644)
	if err != nil {
		t.Fatal(err)
	}
	got, err := compdb.Load(fname)
	if err != nil {
		t.Fatalf("Load(%q)=_, %v; want nil err", fname, err)
	}
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Errorf("Load(%q) diff -want +got:\n%s", fname, diff)
	}
	_, err = compdb.Load(filepath.Join(dir, "missing.json"))
	if !os.IsNotExist(err) {
		t.Errorf("Load(missing)=_, %v; want not exist", err)
	}
}

func TestEntryString(t *testing.T) {
	for _, tc := range []struct {
		e    compdb.Entry
		want string
	}{
		{
			e: compdb.Entry{
				Directory: "/proj",
				File:      "a b.c",
				Arguments: []string{"cc", "-c", "a b.c"},
			},
			want: `/proj: a b.c: cc -c "a b.c"`,
		},
		{
			e: compdb.Entry{
				Directory: "/proj",
				File:      "a.c",
				Arguments: []string{"cc", "-c", "a.c"},
				Output:    "a.o",
			},
			want: `/proj: a.c -> a.o: cc -c a.c`,
		},
	} {
		if got := tc.e.String(); got != tc.want {
			t.Errorf("%#v.String()=%q; want %q", tc.e, got, tc.want)
		}
	}
}
