// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"go.chromium.org/infra/build/cctrace/compdb"
)

// DefaultConfigFile is the config file used when it exists in the
// current directory and no config file is given explicitly.
const DefaultConfigFile = ".cctrace.yaml"

// Config configures the extraction.
type Config struct {
	// Output is the compilation database filename.
	Output string `yaml:"output"`

	// WorkDirEnv is the environment variable of the traced process
	// that holds its working directory.
	WorkDirEnv string `yaml:"work_dir_env"`

	// Strict makes unparsable trace lines fatal.
	Strict bool `yaml:"strict"`

	// Jobs is the number of trace files read concurrently.
	Jobs int `yaml:"jobs"`

	// IgnoredFlags are compiler flags dropped from the arguments in
	// addition to the built-in ones, with the number of values each
	// flag takes (0 or 1).
	IgnoredFlags map[string]int `yaml:"ignored_flags"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Output:     compdb.DefaultFilename,
		WorkDirEnv: compdb.DefaultWorkDirEnv,
		Jobs:       runtime.NumCPU(),
	}
}

// LoadConfig loads the config file fname on top of the default
// configuration. Unknown keys are errors.
func LoadConfig(fname string) (*Config, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	err = dec.Decode(cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", fname, err)
	}
	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", fname, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Output == "" {
		return errors.New("output must not be empty")
	}
	if c.WorkDirEnv == "" {
		return errors.New("work_dir_env must not be empty")
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative: %d", c.Jobs)
	}
	return nil
}
