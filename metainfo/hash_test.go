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
	"strings"
	"testing"

	"github.com/xgfone/bt/bencode"
)

func TestHash(t *testing.T) {
	hexHash := "0001020304050607080909080706050403020100"

	b, err := NewHashFromHexString(hexHash).MarshalBencode()
	if err != nil {
		t.Fatal(err)
	} else if len(b) != 23 || string(b[:3]) != "20:" {
		t.Errorf("unexpected encoded hash '%q'", b)
	}

	var h Hash
	if err = h.UnmarshalBencode(b); err != nil {
		t.Fatal(err)
	} else if s := h.String(); s != hexHash {
		t.Errorf("expect '%s', but got '%s'", hexHash, s)
	}

	// The hex string is also accepted.
	h = Hash{}
	if err = bencode.DecodeString("40:"+hexHash, &h); err != nil {
		t.Fatal(err)
	} else if s := h.HexString(); s != hexHash {
		t.Errorf("expect '%s', but got '%s'", hexHash, s)
	}

	if err = h.FromString("abc"); err == nil {
		t.Error("expect an error, but got nil")
	}
	if err = h.FromHexString(strings.Repeat("zz", HashSize)); err == nil {
		t.Error("expect an error, but got nil")
	}

	if s := NewHashFromBytes([]byte("abc")).HexString(); s != "a9993e364706816aba3e25717850c26c9cd0d89d" {
		t.Errorf("unexpected sha1 hash '%s'", s)
	}
}

func TestHashes(t *testing.T) {
	hexHash1 := "0101010101010101010101010101010101010101"
	hexHash2 := "0202020202020202020202020202020202020202"
	hashes := Hashes{NewHashFromHexString(hexHash1), NewHashFromHexString(hexHash2)}

	b, err := bencode.Encode(hashes)
	if err != nil {
		t.Fatal(err)
	} else if !strings.HasPrefix(string(b), "40:") {
		t.Errorf("unexpected encoded hashes '%q'", b)
	}

	var hs Hashes
	if err = bencode.DecodeBytes(b, &hs); err != nil {
		t.Fatal(err)
	}

	if len(hs) != 2 {
		t.Fatalf("expect 2 hashes, but got %d", len(hs))
	} else if s := hs[0].HexString(); s != hexHash1 {
		t.Errorf("expect '%s', but got '%s'", hexHash1, s)
	} else if s := hs[1].HexString(); s != hexHash2 {
		t.Errorf("expect '%s', but got '%s'", hexHash2, s)
	}

	if !hs.Contains(NewHashFromHexString(hexHash2)) {
		t.Error("expect to contain the second hash")
	}

	if err = bencode.DecodeString("3:abc", &hs); err == nil {
		t.Error("expect an error, but got nil")
	}
}
