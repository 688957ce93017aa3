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

// Package input reads the possibly compressed bencode input
// with a size limit.
package input

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/andybalholm/brotli"
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the compression format of the input.
type Compression string

// The supported compression formats.
const (
	Auto   Compression = "auto"
	None   Compression = "none"
	Zstd   Compression = "zstd"
	LZ4    Compression = "lz4"
	Brotli Compression = "brotli"
)

// ErrTooLarge is returned when the decompressed input exceeds the limit.
var ErrTooLarge = errors.New("input exceeds the size limit")

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// ParseCompression parses the compression name. The empty string is Auto.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(s); c {
	case "":
		return Auto, nil
	case Auto, None, Zstd, LZ4, Brotli:
		return c, nil
	default:
		return "", errors.Newf("unknown compression '%s'", s)
	}
}

// Detect returns the compression by the magic number at the beginning
// of the data, which is None if no magic matches.
//
// Brotli has no magic number, so it is never detected.
func Detect(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return Zstd
	case bytes.HasPrefix(head, lz4Magic):
		return LZ4
	default:
		return None
	}
}

// ReadAll reads and decompresses all the data from r, and returns
// the data and the actual compression.
//
// If limit is positive and the decompressed data is longer than it,
// return ErrTooLarge.
func ReadAll(r io.Reader, c Compression, limit int64) ([]byte, Compression, error) {
	br := bufio.NewReader(r)
	if c == Auto || c == "" {
		head, _ := br.Peek(len(zstdMagic))
		c = Detect(head)
	}

	var src io.Reader
	switch c {
	case None:
		src = br

	case Zstd:
		d, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, c, errors.Wrap(err, "fail to create the zstd reader")
		}
		defer d.Close()
		src = d

	case LZ4:
		src = lz4.NewReader(br)

	case Brotli:
		src = brotli.NewReader(br)

	default:
		return nil, c, errors.Newf("unknown compression '%s'", c)
	}

	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, c, errors.Wrapf(err, "fail to read the %s input", c)
	} else if limit > 0 && int64(len(data)) > limit {
		return nil, c, errors.Wrapf(ErrTooLarge, "more than %d bytes", limit)
	}

	return data, c, nil
}

// ReadFile is the same as ReadAll, but reads the file.
//
// The path "-" is the standard input.
func ReadFile(path string, c Compression, limit int64) ([]byte, Compression, error) {
	if path == "-" {
		return ReadAll(os.Stdin, c, limit)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, c, errors.WithStack(err)
	}
	defer f.Close()

	data, c, err := ReadAll(f, c, limit)
	if err != nil {
		return nil, c, errors.Wrapf(err, "'%s'", path)
	}
	return data, c, nil
}
