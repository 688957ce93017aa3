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
	"crypto/sha1"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/xgfone/bt/internal/helper"
)

// Piece is a piece of the torrent.
type Piece struct {
	info  Info
	index int
}

// Piece returns the index-th piece, which panics if index is out of range.
func (info Info) Piece(index int) Piece {
	if index < 0 || index >= len(info.Pieces) {
		panic(errors.Newf("piece index %d out of range [0, %d)", index, len(info.Pieces)))
	}
	return Piece{info: info, index: index}
}

// Index returns the index of the piece.
func (p Piece) Index() int { return p.index }

// Hash returns the SHA1 hash of the piece.
func (p Piece) Hash() Hash { return p.info.Pieces[p.index] }

// Offset returns the offset of the piece from the beginning of the torrent.
func (p Piece) Offset() int64 { return int64(p.index) * p.info.PieceLength }

// Length returns the length of the piece, and the last may be shorter.
func (p Piece) Length() int64 {
	if p.index == len(p.info.Pieces)-1 {
		return p.info.TotalLength() - p.Offset()
	}
	return p.info.PieceLength
}

// GeneratePieces splits the data of r into the pieces, and returns
// their SHA1 hashes.
func GeneratePieces(r io.Reader, pieceLength int64) (hs Hashes, err error) {
	if pieceLength <= 0 {
		return nil, errors.Newf("invalid piece length %d", pieceLength)
	}

	buf := make([]byte, pieceLength)
	for {
		h := sha1.New()
		n, err := helper.CopyNBuffer(h, r, pieceLength, buf)
		if n > 0 {
			var hash Hash
			copy(hash[:], h.Sum(nil))
			hs = append(hs, hash)
		}

		switch {
		case err == io.EOF:
			return hs, nil
		case err != nil:
			return nil, err
		}
	}
}

// GeneratePiecesFromFiles concatenates the files in order and returns
// the hashes of the pieces.
//
// open is called for each file, and the data must have the length of the file.
func GeneratePiecesFromFiles(files []File, pieceLength int64,
	open func(File) (io.ReadCloser, error)) (Hashes, error) {
	if pieceLength <= 0 {
		return nil, errors.Newf("invalid piece length %d", pieceLength)
	}

	pr, pw := io.Pipe()
	defer pr.Close()

	go func() { pw.CloseWithError(concatFiles(pw, files, open)) }()
	return GeneratePieces(pr, pieceLength)
}

func concatFiles(w io.Writer, files []File, open func(File) (io.ReadCloser, error)) error {
	buf := make([]byte, 32*1024)
	for _, file := range files {
		r, err := open(file)
		if err != nil {
			return errors.Wrapf(err, "fail to open the file '%s'", file)
		}

		n, err := helper.CopyNBuffer(w, r, file.Length, buf)
		r.Close()
		if err != nil {
			return errors.Wrapf(err, "fail to read the file '%s' (%d/%d bytes)", file, n, file.Length)
		}
	}
	return nil
}
