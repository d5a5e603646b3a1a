// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package extract

import (
	"errors"
	"flag"
	"io/fs"
)

// Flags are command line flags that override the config file.
type Flags struct {
	ConfigFile string
	Output     string
	WorkDirEnv string
	Strict     bool
	Jobs       int
}

// RegisterFlags registers flags for the config.
func (f *Flags) RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.StringVar(&f.ConfigFile, "config", "", "config file. "+DefaultConfigFile+" is used if it exists and this flag is not set")
	flagSet.StringVar(&f.Output, "o", "", "compilation database filename. overrides output in config")
	flagSet.StringVar(&f.WorkDirEnv, "work_dir_env", "", "environment variable that holds working directory of a compiler. overrides work_dir_env in config")
	flagSet.BoolVar(&f.Strict, "strict", false, "fail on unparsable trace lines")
	flagSet.IntVar(&f.Jobs, "j", 0, "number of trace files read concurrently. overrides jobs in config")
}

// Config loads the config file and applies flags to it.
// When no config file is given and DefaultConfigFile doesn't exist,
// it starts from DefaultConfig.
func (f *Flags) Config() (*Config, error) {
	var cfg *Config
	var err error
	switch {
	case f.ConfigFile != "":
		cfg, err = LoadConfig(f.ConfigFile)
	default:
		cfg, err = LoadConfig(DefaultConfigFile)
		if errors.Is(err, fs.ErrNotExist) {
			cfg, err = DefaultConfig(), nil
		}
	}
	if err != nil {
		return nil, err
	}
	if f.Output != "" {
		cfg.Output = f.Output
	}
	if f.WorkDirEnv != "" {
		cfg.WorkDirEnv = f.WorkDirEnv
	}
	if f.Strict {
		cfg.Strict = true
	}
	if f.Jobs > 0 {
		cfg.Jobs = f.Jobs
	}
	return cfg, nil
}
