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

package metainfo

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Some common piece lengths.
const (
	PieceSize256KB = 256 * 1024
	PieceSize512KB = 2 * PieceSize256KB
	PieceSize1MB   = 2 * PieceSize512KB
	PieceSize2MB   = 2 * PieceSize1MB
	PieceSize4MB   = 2 * PieceSize2MB
)

// Info is the "info" dictionary of the torrent, whose SHA1 hash of
// the canonical encoding is the info hash.
type Info struct {
	// Name is the file name in the single-file case,
	// or the directory name in the multi-file case.
	Name string `bencode:"name"` // BEP 3

	// PieceLength is the number of bytes of each piece except the last.
	PieceLength int64 `bencode:"piece length"` // BEP 3

	// Pieces is the SHA1 hashes of all the pieces.
	Pieces Hashes `bencode:"pieces"` // BEP 3

	// Length is the file length in the single-file case,
	// which is exclusive with Files.
	Length int64 `bencode:"length,omitempty"` // BEP 3

	// Files is the files in the multi-file case, which are
	// concatenated in order to be split into the pieces.
	Files []File `bencode:"files,omitempty"` // BEP 3

	// Private is encoded as i1e, and omitted if false.
	Private bool `bencode:"private,omitempty"` // BEP 27
}

// NewInfoFromFilePath builds the info of a file or a directory,
// and calculates the pieces.
//
// The files in the directory are sorted by the path, and ".git" is skipped.
func NewInfoFromFilePath(root string, pieceLength int64) (info Info, err error) {
	root = filepath.Clean(root)
	fi, err := os.Stat(root)
	if err != nil {
		return
	}

	if fi.IsDir() {
		if info.Files, err = walkFiles(root); err != nil {
			return
		}
	} else {
		info.Length = fi.Size()
	}

	open := func(f File) (io.ReadCloser, error) {
		return os.Open(filepath.Join(append([]string{root}, f.Paths...)...))
	}

	info.Pieces, err = GeneratePiecesFromFiles(info.AllFiles(), pieceLength, open)
	if err != nil {
		return info, errors.Wrapf(err, "fail to generate the pieces of '%s'", root)
	}

	info.Name = filepath.Base(root)
	info.PieceLength = pieceLength
	return
}

func walkFiles(root string) (files []File, err error) {
	err = filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		} else if fi.IsDir() {
			if fi.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		paths := strings.Split(rel, string(filepath.Separator))
		files = append(files, File{Paths: paths, Length: fi.Size()})
		return nil
	})

	if err == nil && len(files) == 0 {
		err = errors.Newf("no files in the directory '%s'", root)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].String() < files[j].String() })
	return
}

// IsDir reports whether the torrent is the multi-file case.
func (info Info) IsDir() bool { return len(info.Files) != 0 }

// CountPieces returns the number of the pieces.
func (info Info) CountPieces() int { return len(info.Pieces) }

// TotalLength returns the total length of all the files.
func (info Info) TotalLength() (total int64) {
	if !info.IsDir() {
		return info.Length
	}

	for _, f := range info.Files {
		total += f.Length
	}
	return
}

// AllFiles returns all the files. For the single-file case,
// it only contains one file without the paths.
func (info Info) AllFiles() []File {
	if info.IsDir() {
		return info.Files
	}
	return []File{{Length: info.Length}}
}

// Validate checks whether the info is well-formed.
func (info Info) Validate() error {
	switch {
	case info.Name == "":
		return errors.New("missing the info name")
	case info.PieceLength <= 0:
		return errors.Newf("invalid piece length %d", info.PieceLength)
	case info.IsDir() && info.Length != 0:
		return errors.New("the info length and files are exclusive")
	case info.Length < 0:
		return errors.Newf("invalid info length %d", info.Length)
	}

	for i, f := range info.Files {
		if len(f.Paths) == 0 {
			return errors.Newf("the file #%d has no path", i)
		} else if f.Length < 0 {
			return errors.Newf("invalid length %d of the file '%s'", f.Length, f)
		}
	}

	total := info.TotalLength()
	if n := (total + info.PieceLength - 1) / info.PieceLength; int64(len(info.Pieces)) != n {
		return errors.Newf("expect %d pieces for %d bytes, but got %d", n, total, len(info.Pieces))
	}

	return nil
}
