// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package extract_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/cctrace/extract"
)

func TestLoadConfig(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		want    func(*extract.Config)
	}{
		{
			name:    "empty",
			content: "",
			want:    func(*extract.Config) {},
		},
		{
			name: "full",
			content: `output: out/compile_commands.json
work_dir_env: BUILD_DIR
strict: true
jobs: 3
ignored_flags:
  "-o": 1
  "-g": 0
`,
			want: func(cfg *extract.Config) {
				cfg.Output = "out/compile_commands.json"
				cfg.WorkDirEnv = "BUILD_DIR"
				cfg.Strict = true
				cfg.Jobs = 3
				cfg.IgnoredFlags = map[string]int{"-o": 1, "-g": 0}
			},
		},
		{
			name:    "partial",
			content: "strict: true\n",
			want: func(cfg *extract.Config) {
				cfg.Strict = true
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fname := filepath.Join(t.TempDir(), extract.DefaultConfigFile)
			err := os.WriteFile(fname, []byte(tc.content), 0644)
			if err != nil {
				t.Fatal(err)
			}
			got, err := extract.LoadConfig(fname)
			if err != nil {
				t.Fatalf("LoadConfig(%q)=_, %v; want nil err", fname, err)
			}
			want := extract.DefaultConfig()
			tc.want(want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("LoadConfig(%q) diff -want +got:\n%s", fname, diff)
			}
		})
	}
}

func TestLoadConfig_Error(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
	}{
		{name: "unknownKey", content: "outptu: x.json\n"},
		{name: "negativeJobs", content: "jobs: -1\n"},
		{name: "emptyOutput", content: "output: \"\"\n"},
		{name: "badYAML", content: "ignored_flags: [\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fname := filepath.Join(t.TempDir(), extract.DefaultConfigFile)
			err := os.WriteFile(fname, []byte(tc.content), 0644)
			if err != nil {
				t.Fatal(err)
			}
			got, err := extract.LoadConfig(fname)
			if err == nil {
				t.Errorf("LoadConfig(%q)=%v, nil; want err", fname, got)
			}
		})
	}
	_, err := extract.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !os.IsNotExist(err) {
		t.Errorf("LoadConfig(missing)=_, %v; want not exist", err)
	}
}

func TestFlagsConfig(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "cctrace.yaml")
	err := os.WriteFile(fname, []byte("output: from_config.json\njobs: 3\nignored_flags:\n  \"-o\": 1\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	var flags extract.Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags.RegisterFlags(fs)
	err = fs.Parse([]string{"-config", fname, "-o", "from_flag.json", "-strict"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := flags.Config()
	if err != nil {
		t.Fatalf("flags.Config()=_, %v; want nil err", err)
	}
	want := extract.DefaultConfig()
	want.Output = "from_flag.json"
	want.Strict = true
	want.Jobs = 3
	want.IgnoredFlags = map[string]int{"-o": 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flags.Config() diff -want +got:\n%s", diff)
	}
}

func TestFlagsConfig_MissingConfigFile(t *testing.T) {
	flags := extract.Flags{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}
	_, err := flags.Config()
	if !os.IsNotExist(err) {
		t.Errorf("flags.Config()=_, %v; want not exist", err)
	}
}
