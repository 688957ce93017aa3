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

package main

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/xgfone/bt/bencode"
	"github.com/xgfone/bt/internal/input"
	"github.com/xgfone/bt/metainfo"
)

func (a *app) readFile(path string) ([]byte, error) {
	data, c, err := input.ReadFile(path, input.Compression(a.config.Input.Compression),
		a.config.Limits.MaxInputBytes)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("read input", "path", path, "bytes", len(data), "compression", c)
	return data, nil
}

func (a *app) decodeFile(path string) (bencode.Value, error) {
	data, err := a.readFile(path)
	if err != nil {
		return nil, err
	}

	d := bencode.NewDecoder(bytes.NewReader(data))
	d.SetMaxDepth(a.config.Limits.MaxDepth)
	return d.DecodeValue()
}

func singleFile(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.Newf("expect one FILE, but got %d", len(args))
	}
	return args[0], nil
}

// checkCmd implements the "check" command.
func checkCmd(a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("missing FILE")
	}

	results := make([]error, len(args))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(a.config.Concurrency)
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			if _, err := a.decodeFile(path); err != nil {
				a.logger.Warn("invalid bencode file", "path", path, "error", err)
				results[i] = err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	var failed int
	for i, path := range args {
		if err := results[i]; err != nil {
			failed++
			fmt.Fprintf(a.stdout, "%s: %v\n", path, err)
		} else {
			fmt.Fprintf(a.stdout, "%s: ok\n", path)
		}
	}

	if failed > 0 {
		fmt.Fprintf(a.stderr, "%d of %d files are invalid\n", failed, len(args))
		return errReported
	}
	return nil
}

// dumpCmd implements the "dump" command.
func dumpCmd(a *app, args []string) error {
	path, err := singleFile(args)
	if err != nil {
		return err
	}

	v, err := a.decodeFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, bencode.DiagnoseValue(v))
	return nil
}

// infoCmd implements the "info" command.
func infoCmd(a *app, args []string) error {
	path, err := singleFile(args)
	if err != nil {
		return err
	}

	data, err := a.readFile(path)
	if err != nil {
		return err
	}

	mi, err := metainfo.LoadBytes(data)
	if err != nil {
		return err
	}

	info, err := mi.Info()
	if err != nil {
		return err
	} else if err = info.Validate(); err != nil {
		a.logger.Warn("malformed info", "path", path, "error", err)
	}

	w := a.stdout
	fmt.Fprintf(w, "name:         %s\n", info.Name)
	fmt.Fprintf(w, "size:         %d bytes\n", info.TotalLength())
	fmt.Fprintf(w, "files:        %d\n", len(info.AllFiles()))
	fmt.Fprintf(w, "piece length: %d\n", info.PieceLength)
	fmt.Fprintf(w, "pieces:       %d\n", info.CountPieces())
	fmt.Fprintf(w, "private:      %t\n", info.Private)
	fmt.Fprintf(w, "info hash:    %s\n", mi.InfoHash())
	for _, tracker := range mi.Announces().Unique() {
		fmt.Fprintf(w, "tracker:      %s\n", tracker)
	}
	fmt.Fprintf(w, "magnet:       %s\n", mi.Magnet(""))
	return nil
}

// digestCmd implements the "digest" command.
func digestCmd(a *app, args []string) error {
	path, err := singleFile(args)
	if err != nil {
		return err
	}

	v, err := a.decodeFile(path)
	if err != nil {
		return err
	}

	if key, _ := a.flags.GetString("key"); key != "" {
		d, ok := v.(*bencode.Dictionary)
		if !ok {
			return errors.Newf("'%s' is not a dict", path)
		} else if v, ok = d.Get(key); !ok {
			return errors.Newf("no key '%s' in '%s'", key, path)
		}
	}

	// The input is canonical, so this is the original bytes of the value.
	b, err := bencode.Encode(v)
	if err != nil {
		return err
	}

	var sum []byte
	switch a.config.Digest.Algorithm {
	case "blake3":
		h := blake3.Sum256(b)
		sum = h[:]
	default:
		h := sha1.Sum(b)
		sum = h[:]
	}

	fmt.Fprintf(a.stdout, "%s  %s\n", hex.EncodeToString(sum), path)
	return nil
}
