// Copyright 2020 xgfone
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the configuration of the bencode command.
//
// The configuration is loaded from the single file given by the --config
// flag or the BENCODE_CONFIG environment variable, in YAML (.yaml, .yml)
// or JSON with comments (.json, .jsonc). Without the file, use Default.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/xgfone/bt/bencode"
	"github.com/xgfone/bt/internal/input"
)

// EnvConfig is the environment variable of the configuration file path.
const EnvConfig = "BENCODE_CONFIG"

// Config is the configuration of the bencode command.
type Config struct {
	Limits LimitsConfig `yaml:"limits" json:"limits"`
	Input  InputConfig  `yaml:"input" json:"input"`
	Digest DigestConfig `yaml:"digest" json:"digest"`

	// Concurrency is the maximum number of the files checked concurrently.
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// LimitsConfig limits the resources used by decoding.
type LimitsConfig struct {
	// MaxDepth is the maximum nesting depth of lists and dicts.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`

	// MaxInputBytes is the maximum size of the decompressed input.
	MaxInputBytes int64 `yaml:"max_input_bytes" json:"max_input_bytes"`
}

// InputConfig configures how to read the input.
type InputConfig struct {
	// Compression is one of "auto", "none", "zstd", "lz4" and "brotli".
	Compression string `yaml:"compression" json:"compression"`
}

// DigestConfig configures the digest command.
type DigestConfig struct {
	// Algorithm is "sha1" or "blake3".
	Algorithm string `yaml:"algorithm" json:"algorithm"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Limits: LimitsConfig{
			MaxDepth:      bencode.DefaultMaxDepth,
			MaxInputBytes: 64 << 20,
		},
		Input:       InputConfig{Compression: string(input.Auto)},
		Digest:      DigestConfig{Algorithm: "sha1"},
		Concurrency: 8,
	}
}

// Load loads the configuration from path, or the file of BENCODE_CONFIG
// if path is empty. If both are empty, return Default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads the configuration file over the default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "fail to read the config file")
	}

	c := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), c)
	default:
		return nil, errors.Newf("unsupported config file extension '%s'", ext)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "fail to parse the config file '%s'", path)
	}

	if err = c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file '%s'", path)
	}
	return c, nil
}

// Validate checks whether the configuration is valid.
func (c *Config) Validate() error {
	if c.Limits.MaxDepth <= 0 {
		return errors.Newf("limits.max_depth must be positive, but got %d", c.Limits.MaxDepth)
	}
	if c.Limits.MaxInputBytes < 0 {
		return errors.Newf("limits.max_input_bytes must not be negative, but got %d", c.Limits.MaxInputBytes)
	}
	if c.Concurrency <= 0 {
		return errors.Newf("concurrency must be positive, but got %d", c.Concurrency)
	}

	if _, err := input.ParseCompression(c.Input.Compression); err != nil {
		return errors.Wrap(err, "input.compression")
	}

	switch c.Digest.Algorithm {
	case "sha1", "blake3":
	default:
		return errors.Newf("digest.algorithm must be sha1 or blake3, but got '%s'", c.Digest.Algorithm)
	}

	return nil
}
