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
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// File is a file of the torrent in the multi-file case.
type File struct {
	Length int64 `bencode:"length"` // BEP 3

	// Paths is the path elements of the file relative to the directory,
	// such as ["dir1", "dir2", "file.ext"], which is encoded as
	// l4:dir14:dir28:file.exte.
	Paths []string `bencode:"path"` // BEP 3
}

func (f File) String() string { return filepath.Join(f.Paths...) }

// Path returns the path of the file in the torrent.
func (f File) Path(info Info) string {
	if info.IsDir() {
		return filepath.Join(info.Name, f.String())
	}
	return info.Name
}

// Offset returns the offset of the file from the beginning of the torrent.
func (f File) Offset(info Info) (offset int64, err error) {
	path := f.String()
	for _, file := range info.AllFiles() {
		if file.String() == path {
			return offset, nil
		}
		offset += file.Length
	}
	return 0, errors.Newf("no file '%s' in the torrent", path)
}
