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

package bencode

import (
	"bytes"
	"math"
	"math/big"
	"sort"
	"strconv"
)

// Value is a decoded bencode value, which is one of Integer, ByteString,
// List and *Dictionary.
type Value interface {
	bencodeValue()
}

func (Integer) bencodeValue()     {}
func (ByteString) bencodeValue()  {}
func (List) bencodeValue()        {}
func (*Dictionary) bencodeValue() {}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// Integer is an arbitrary-precision bencode integer.
//
// The value is held in an int64 and only falls back to a big.Int
// when it does not fit, so the zero value is 0.
type Integer struct {
	small int64
	big   *big.Int
}

// NewInteger returns a new Integer from an int64.
func NewInteger(v int64) Integer { return Integer{small: v} }

// NewUint returns a new Integer from an uint64.
func NewUint(v uint64) Integer {
	if v <= math.MaxInt64 {
		return Integer{small: int64(v)}
	}
	return Integer{big: new(big.Int).SetUint64(v)}
}

// NewBigInteger returns a new Integer from a big.Int, which is copied.
func NewBigInteger(v *big.Int) Integer {
	if v.IsInt64() {
		return Integer{small: v.Int64()}
	}
	return Integer{big: new(big.Int).Set(v)}
}

// Int64 returns the integer as int64 and reports whether it fits.
func (i Integer) Int64() (int64, bool) {
	if i.big != nil {
		return 0, false
	}
	return i.small, true
}

// Uint64 returns the integer as uint64 and reports whether it fits.
func (i Integer) Uint64() (uint64, bool) {
	if i.big != nil {
		if i.big.IsUint64() {
			return i.big.Uint64(), true
		}
		return 0, false
	}
	if i.small < 0 {
		return 0, false
	}
	return uint64(i.small), true
}

// BigInt returns a new big.Int with the value of the integer.
func (i Integer) BigInt() *big.Int {
	if i.big != nil {
		return new(big.Int).Set(i.big)
	}
	return big.NewInt(i.small)
}

// Sign returns -1, 0 or +1 according to the sign of the integer.
func (i Integer) Sign() int {
	if i.big != nil {
		return i.big.Sign()
	}

	switch {
	case i.small < 0:
		return -1
	case i.small > 0:
		return 1
	default:
		return 0
	}
}

// Cmp compares the integer with o and returns -1, 0 or +1.
func (i Integer) Cmp(o Integer) int {
	if i.big == nil && o.big == nil {
		switch {
		case i.small < o.small:
			return -1
		case i.small > o.small:
			return 1
		default:
			return 0
		}
	}
	return i.BigInt().Cmp(o.BigInt())
}

// String returns the decimal representation of the integer.
func (i Integer) String() string {
	if i.big != nil {
		return i.big.String()
	}
	return strconv.FormatInt(i.small, 10)
}

func (i Integer) writeTo(b *buffer) {
	if i.big != nil {
		b.writeBigInt(i.big)
	} else {
		b.writeInt(i.small)
	}
}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// ByteString is a bencode string, which is a sequence of raw bytes
// and is not required to be a valid UTF-8 text.
type ByteString []byte

// String returns the bytes as a string.
func (s ByteString) String() string { return string(s) }

// List is an ordered bencode list.
type List []Value

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// Entry is a key-value pair of the bencode dictionary.
type Entry struct {
	Key   ByteString
	Value Value
}

// Dictionary is a bencode dictionary, whose keys are unique and kept
// in the ascending byte order.
//
// A nil *Dictionary is an empty dictionary.
type Dictionary struct {
	entries []Entry
}

// NewDictionary returns a new Dictionary with the given entries,
// which may be in any order.
//
// It returns an EncodeError wrapping ErrDuplicateKey if two keys are equal.
func NewDictionary(entries ...Entry) (*Dictionary, error) {
	es := make([]Entry, len(entries))
	copy(es, entries)
	sort.Slice(es, func(i, j int) bool { return bytes.Compare(es[i].Key, es[j].Key) < 0 })

	for i := 1; i < len(es); i++ {
		if bytes.Equal(es[i-1].Key, es[i].Key) {
			return nil, encodeError(ErrDuplicateKey, "find duplicated keys %q in dict", es[i].Key)
		}
	}

	return &Dictionary{entries: es}, nil
}

// Len returns the number of the entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Get returns the value of the key.
func (d *Dictionary) Get(key string) (v Value, ok bool) {
	if d == nil {
		return
	}

	i := sort.Search(len(d.entries), func(i int) bool {
		return string(d.entries[i].Key) >= key
	})
	if i < len(d.entries) && string(d.entries[i].Key) == key {
		return d.entries[i].Value, true
	}
	return
}

// Keys returns the keys in the ascending order.
func (d *Dictionary) Keys() []ByteString {
	keys := make([]ByteString, d.Len())
	for i := range keys {
		keys[i] = d.entries[i].Key
	}
	return keys
}

// Entries returns a copy of the entries in the ascending order of the keys.
func (d *Dictionary) Entries() []Entry {
	es := make([]Entry, d.Len())
	if d != nil {
		copy(es, d.entries)
	}
	return es
}

// Range calls f for each entry in the ascending order of the keys
// until f returns false.
func (d *Dictionary) Range(f func(key ByteString, value Value) bool) {
	if d == nil {
		return
	}

	for _, e := range d.entries {
		if !f(e.Key, e.Value) {
			return
		}
	}
}

/// >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>

// Equal reports whether the two value trees are equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Integer:
		bv, ok := b.(Integer)
		return ok && av.Cmp(bv) == 0

	case ByteString:
		bv, ok := b.(ByteString)
		return ok && bytes.Equal(av, bv)

	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true

	case *Dictionary:
		bv, ok := b.(*Dictionary)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for i := 0; i < av.Len(); i++ {
			ae, be := av.entries[i], bv.entries[i]
			if !bytes.Equal(ae.Key, be.Key) || !Equal(ae.Value, be.Value) {
				return false
			}
		}
		return true

	default:
		return a == nil && b == nil
	}
}
