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

// bencode validates, inspects and digests the bencode files,
// such as the .torrent files.
//
// Usage:
//
//	bencode check [flags] FILE...
//	bencode dump [flags] FILE
//	bencode info [flags] FILE
//	bencode digest [flags] FILE
//	bencode version
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"

	"github.com/xgfone/bt/internal/config"
)

const version = "v0.3.0"

// The exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	var cmd func(*app, []string) error
	switch name := args[0]; name {
	case "check":
		cmd = checkCmd
	case "dump":
		cmd = dumpCmd
	case "info":
		cmd = infoCmd
	case "digest":
		cmd = digestCmd
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "bencode %s\n", version)
		return exitOK
	case "help", "--help", "-h":
		printUsage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", name)
		printUsage(stderr)
		return exitUsage
	}

	a, rest, err := newApp(args[0], args[1:], stdout, stderr)
	switch {
	case errors.Is(err, pflag.ErrHelp):
		return exitOK
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if err = cmd(a, rest); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitError
	}
	return exitOK
}

// errReported is returned by the commands which have printed the errors.
var errReported = errors.New("reported")

func printUsage(w io.Writer) {
	fmt.Fprint(w, `bencode - validate and inspect the canonical bencode files

USAGE
    bencode <command> [flags] FILE...

COMMANDS
    check     Validate the files concurrently
    dump      Print the human-readable notation of a file
    info      Print the summary of a .torrent file
    digest    Print the digest of the canonical encoding of a file or a key
    version   Show version

FLAGS
    --config PATH         Configuration file (.yaml, .yml, .json, .jsonc)
    --compression NAME    auto, none, zstd, lz4 or brotli
    --max-depth N         Maximum nesting depth of lists and dicts
    --debug               Enable debug logging
    --key KEY             Digest the value of the top-level dict key
    --algorithm NAME      Digest algorithm, sha1 or blake3

ENVIRONMENT
    BENCODE_CONFIG    Configuration file path, if --config is not given
    BENCODE_DEBUG     Enable debug logging

The FILE "-" is the standard input.
`)
}

// app is the environment shared by the commands.
type app struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	config *config.Config
	flags  *pflag.FlagSet
}

// newApp parses the flags and loads the configuration.
func newApp(name string, args []string, stdout, stderr io.Writer) (*app, []string, error) {
	var (
		configPath  string
		compression string
		maxDepth    int
		debug       bool
	)

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&configPath, "config", "", "configuration file")
	fs.StringVar(&compression, "compression", "", "input compression: auto, none, zstd, lz4 or brotli")
	fs.IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth of lists and dicts")
	fs.BoolVar(&debug, "debug", false, "enable debug logging")
	fs.String("key", "", "digest the value of the top-level dict key instead of the whole file")
	fs.String("algorithm", "", "digest algorithm: sha1 or blake3")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	level := slog.LevelInfo
	if debug || os.Getenv("BENCODE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if fs.Changed("compression") {
		cfg.Input.Compression = compression
	}
	if fs.Changed("max-depth") {
		cfg.Limits.MaxDepth = maxDepth
	}
	if algorithm, _ := fs.GetString("algorithm"); algorithm != "" {
		cfg.Digest.Algorithm = algorithm
	}
	if err = cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger.Debug("loaded config", "path", configPath, "max_depth", cfg.Limits.MaxDepth,
		"compression", cfg.Input.Compression, "algorithm", cfg.Digest.Algorithm)

	a := &app{stdout: stdout, stderr: stderr, logger: logger, config: cfg, flags: fs}
	return a, fs.Args(), nil
}
