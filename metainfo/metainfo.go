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

// Package metainfo implements the metainfo of the torrent file (BEP 3),
// which is the main consumer of the bencode codec.
package metainfo

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/xgfone/bt/bencode"
	"github.com/xgfone/bt/internal/helper"
)

// AnnounceList is the tiers of the tracker urls (BEP 12).
type AnnounceList [][]string

// Unique returns all the non-empty urls without the duplicates.
func (al AnnounceList) Unique() []string {
	var urls []string
	for _, tier := range al {
		urls = append(urls, tier...)
	}
	return helper.UniqueStrings(urls)
}

// URLList is the list of the web seeds (BEP 19), which may be encoded
// as a single string or a list of strings.
type URLList []string

var (
	_ bencode.Marshaler   = URLList{}
	_ bencode.Unmarshaler = new(URLList)
)

// FullURL returns the url of the index-th web seed for the file name.
//
// name is the "name" of the info in the single-file case,
// or "name/path/file" in the multi-file case.
func (us URLList) FullURL(index int, name string) string {
	if url := us[index]; strings.HasSuffix(url, "/") {
		return url + name
	}
	return us[index]
}

// MarshalBencode implements the interface bencode.Marshaler.
func (us URLList) MarshalBencode() ([]byte, error) {
	return bencode.Encode([]string(us))
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (us *URLList) UnmarshalBencode(b []byte) error {
	v, err := bencode.Decode(b)
	if err != nil {
		return err
	}

	switch v := v.(type) {
	case bencode.ByteString:
		*us = URLList{string(v)}

	case bencode.List:
		urls := make(URLList, len(v))
		for i, u := range v {
			s, ok := u.(bencode.ByteString)
			if !ok {
				return errors.Newf("the url-list element #%d is not a string", i)
			}
			urls[i] = string(s)
		}
		*us = urls

	default:
		return errors.New("the url-list is neither a string nor a list")
	}

	return nil
}

// MetaInfo is the content of the .torrent file.
type MetaInfo struct {
	// InfoBytes is the canonical encoding of the info dictionary,
	// which is kept as is to calculate the info hash.
	InfoBytes    bencode.RawMessage `bencode:"info"`                    // BEP 3
	Announce     string             `bencode:"announce,omitempty"`      // BEP 3
	AnnounceList AnnounceList       `bencode:"announce-list,omitempty"` // BEP 12
	Nodes        []HostAddr         `bencode:"nodes,omitempty"`         // BEP 5
	URLList      URLList            `bencode:"url-list,omitempty"`      // BEP 19

	// The optional fields that are not in any BEP.

	CreationDate int64  `bencode:"creation date,omitempty"` // UNIX epoch in seconds
	Comment      string `bencode:"comment,omitempty"`
	CreatedBy    string `bencode:"created by,omitempty"`
	Encoding     string `bencode:"encoding,omitempty"`
}

// LoadBytes parses the metainfo from the canonical bencode data.
func LoadBytes(data []byte) (MetaInfo, error) {
	return Load(bytes.NewReader(data))
}

// Load reads all the data from r and parses the metainfo.
func Load(r io.Reader) (mi MetaInfo, err error) {
	if err = bencode.NewDecoder(r).Decode(&mi); err != nil {
		return MetaInfo{}, errors.Wrap(err, "fail to decode the metainfo")
	} else if len(mi.InfoBytes) == 0 {
		return MetaInfo{}, errors.New("the metainfo has no info")
	}
	return
}

// LoadFromFile loads the metainfo from the file.
func LoadFromFile(filename string) (MetaInfo, error) {
	f, err := os.Open(filename)
	if err != nil {
		return MetaInfo{}, errors.WithStack(err)
	}
	defer f.Close()

	mi, err := Load(f)
	if err != nil {
		return mi, errors.Wrapf(err, "fail to load '%s'", filename)
	}
	return mi, nil
}

// SetInfo encodes the info into InfoBytes.
func (mi *MetaInfo) SetInfo(info Info) (err error) {
	mi.InfoBytes, err = bencode.Encode(info)
	return
}

// Info decodes InfoBytes.
func (mi MetaInfo) Info() (info Info, err error) {
	if err = bencode.DecodeBytes(mi.InfoBytes, &info); err != nil {
		err = errors.Wrap(err, "fail to decode the info")
	}
	return
}

// InfoHash returns the SHA1 hash of InfoBytes.
func (mi MetaInfo) InfoHash() Hash { return NewHashFromBytes(mi.InfoBytes) }

// Announces returns the announce list, or the announce as one tier
// if the list is empty.
func (mi MetaInfo) Announces() AnnounceList {
	switch {
	case len(mi.AnnounceList) > 0:
		return mi.AnnounceList
	case mi.Announce != "":
		return AnnounceList{{mi.Announce}}
	default:
		return nil
	}
}

// Magnet returns the magnet link of the torrent.
//
// If displayName is empty, use the name of the info.
func (mi MetaInfo) Magnet(displayName string) Magnet {
	if displayName == "" {
		info, _ := mi.Info()
		displayName = info.Name
	}

	return Magnet{
		InfoHash:    mi.InfoHash(),
		DisplayName: displayName,
		Trackers:    mi.Announces().Unique(),
	}
}

// Bytes returns the canonical encoding of the metainfo.
func (mi MetaInfo) Bytes() ([]byte, error) {
	return bencode.Encode(mi)
}

// Write writes the canonical encoding of the metainfo into w.
func (mi MetaInfo) Write(w io.Writer) error {
	return bencode.NewEncoder(w).Encode(mi)
}

// Equal reports whether the two metainfos have the same encoding.
func (mi MetaInfo) Equal(o MetaInfo) bool {
	b1, err1 := mi.Bytes()
	b2, err2 := o.Bytes()
	return err1 == nil && err2 == nil && bytes.Equal(b1, b2)
}
