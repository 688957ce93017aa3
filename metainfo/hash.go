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
	"bytes"
	"crypto/sha1"
	"encoding/base32"
	"encoding/hex"

	"github.com/cockroachdb/errors"
	"github.com/xgfone/bt/bencode"
)

// HashSize is the size of the SHA1 hash of the info and the pieces.
const HashSize = sha1.Size

// Hash is a 20-byte SHA1 hash, which is encoded as a byte string.
type Hash [HashSize]byte

var (
	_ bencode.Marshaler   = Hash{}
	_ bencode.Unmarshaler = new(Hash)
)

// NewHashFromBytes returns the SHA1 hash of b.
func NewHashFromBytes(b []byte) Hash { return sha1.Sum(b) }

// NewHashFromHexString parses the 40-character hex string and panics
// if it is invalid.
func NewHashFromHexString(s string) (h Hash) {
	if err := h.FromHexString(s); err != nil {
		panic(err)
	}
	return
}

// String is equal to HexString.
func (h Hash) String() string { return h.HexString() }

// HexString returns the lower-case hex representation.
func (h Hash) HexString() string { return hex.EncodeToString(h[:]) }

// IsZero reports whether all bytes are zero.
func (h Hash) IsZero() bool { return h == Hash{} }

// FromHexString resets the hash from the 40-character hex string.
func (h *Hash) FromHexString(s string) error {
	if len(s) != 2*HashSize {
		return errors.Newf("invalid hash hex string length %d", len(s))
	}

	var v Hash
	if _, err := hex.Decode(v[:], []byte(s)); err != nil {
		return errors.Wrap(err, "invalid hash hex string")
	}

	*h = v
	return nil
}

// FromString resets the hash from the raw 20 bytes, the 40-character hex
// or the 32-character base32 string.
func (h *Hash) FromString(s string) error {
	switch len(s) {
	case HashSize:
		copy(h[:], s)
		return nil

	case 2 * HashSize:
		return h.FromHexString(s)

	case 32:
		b, err := base32.StdEncoding.DecodeString(s)
		if err != nil {
			return errors.Wrap(err, "invalid hash base32 string")
		}
		copy(h[:], b)
		return nil

	default:
		return errors.Newf("invalid hash string length %d", len(s))
	}
}

// MarshalBencode implements the interface bencode.Marshaler.
func (h Hash) MarshalBencode() ([]byte, error) {
	return bencode.Encode(h[:])
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (h *Hash) UnmarshalBencode(b []byte) error {
	var s string
	if err := bencode.DecodeBytes(b, &s); err != nil {
		return err
	}
	return h.FromString(s)
}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// Hashes is a list of hashes, which is encoded as the concatenation
// of all the hashes in one byte string, such as the "pieces" of the info.
type Hashes []Hash

var (
	_ bencode.Marshaler   = Hashes{}
	_ bencode.Unmarshaler = new(Hashes)
)

// Contains reports whether hs contains h.
func (hs Hashes) Contains(h Hash) bool {
	for _, v := range hs {
		if v == h {
			return true
		}
	}
	return false
}

// MarshalBencode implements the interface bencode.Marshaler.
func (hs Hashes) MarshalBencode() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(HashSize * len(hs))
	for _, h := range hs {
		buf.Write(h[:])
	}
	return bencode.Encode(buf.Bytes())
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
func (hs *Hashes) UnmarshalBencode(b []byte) error {
	var bs []byte
	if err := bencode.DecodeBytes(b, &bs); err != nil {
		return err
	}

	if len(bs)%HashSize != 0 {
		return errors.Newf("the length %d of the hashes is not a multiple of %d", len(bs), HashSize)
	}

	hashes := make(Hashes, len(bs)/HashSize)
	for i := range hashes {
		copy(hashes[i][:], bs[i*HashSize:])
	}

	*hs = hashes
	return nil
}
