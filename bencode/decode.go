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
	"strconv"
)

// DefaultMaxDepth is the default maximum nesting depth of lists and dicts.
const DefaultMaxDepth = 512

// Decode decodes the canonical bencode value from data,
// which must contain exactly one value.
//
// The byte strings in the returned value share the memory with data.
func Decode(data []byte) (Value, error) {
	return decode(data, DefaultMaxDepth)
}

// Valid checks whether data is exactly one canonical bencode value.
func Valid(data []byte) error {
	_, err := decode(data, DefaultMaxDepth)
	return err
}

func decode(data []byte, maxDepth int) (Value, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	d := decodeState{buf: data, maxDepth: maxDepth}
	v, err := d.decodeValue()
	if err != nil {
		return nil, err
	}

	if d.pos != len(data) {
		return nil, decodeError(ErrTrailingData, d.pos,
			"invalid bencode data, parse ended before end of input")
	}

	return v, nil
}

// decodeState is the cursor over the input shared by all the recursive calls.
// When a call fails, pos is unspecified.
type decodeState struct {
	buf      []byte
	pos      int
	depth    int
	maxDepth int
}

func (d *decodeState) decodeValue() (Value, error) {
	if d.pos >= len(d.buf) {
		return nil, decodeError(ErrUnexpectedEnd, d.pos, "unexpected end of input")
	}

	switch c := d.buf[d.pos]; {
	case c == 'i':
		return d.decodeInteger()
	case c >= '0' && c <= '9':
		s, err := d.decodeByteString()
		if err != nil {
			return nil, err
		}
		return s, nil
	case c == 'l':
		return d.decodeList()
	case c == 'd':
		return d.decodeDictionary()
	default:
		return nil, decodeCharError(ErrInvalidPrefix, d.pos, c, "invalid bencode prefix")
	}
}

func (d *decodeState) decodeInteger() (Value, error) {
	start := d.pos
	end := bytes.IndexByte(d.buf[start:], 'e')
	if end < 0 {
		return nil, decodeError(ErrInvalidInteger, start, "invalid int, missing 'e'")
	}
	end += start

	i := start + 1
	if i == end {
		return nil, decodeError(ErrInvalidInteger, start, "invalid int, no digits")
	}

	var neg bool
	switch d.buf[i] {
	case '-':
		if i+1 < end && d.buf[i+1] == '0' {
			return nil, decodeError(ErrInvalidInteger, i, "invalid int, '-0' found")
		}
		if neg, i = true, i+1; i == end {
			return nil, decodeError(ErrInvalidInteger, i, "invalid int, no digits after '-'")
		}
	case '0':
		if i+1 != end {
			return nil, decodeError(ErrInvalidInteger, i,
				"invalid int, non-zero int should not start with '0'")
		}
	}

	var ok bool
	var mag uint64
	overflow := false
	for j := i; j < end; j++ {
		c := d.buf[j]
		if c < '0' || c > '9' {
			return nil, decodeCharError(ErrInvalidInteger, j, c, "invalid int")
		}
		if !overflow {
			if mag, ok = appendDigit(mag, c); !ok {
				overflow = true
			}
		}
	}
	d.pos = end + 1

	if !overflow {
		if v, ok := applySign(mag, neg); ok {
			return NewInteger(v), nil
		}
	}

	// The digits have been validated, so SetString cannot fail.
	v, _ := new(big.Int).SetString(string(d.buf[i:end]), 10)
	if neg {
		v.Neg(v)
	}
	return NewBigInteger(v), nil
}

func applySign(mag uint64, neg bool) (int64, bool) {
	switch {
	case !neg && mag <= math.MaxInt64:
		return int64(mag), true
	case neg && mag == 1<<63:
		return math.MinInt64, true
	case neg && mag < 1<<63:
		return mulInt64(int64(mag), -1)
	default:
		return 0, false
	}
}

// There is only one string type in bencode, which is used for both text and bytes.
func (d *decodeState) decodeByteString() (ByteString, error) {
	start := d.pos
	sep := bytes.IndexByte(d.buf[start:], ':')
	if sep < 0 {
		return nil, decodeError(ErrInvalidByteString, start, "invalid string, missing length")
	}
	sep += start

	if d.buf[start] == '0' && start+1 != sep {
		return nil, decodeError(ErrInvalidByteString, start,
			"invalid bytes length, non-zero length should not start with '0'")
	}

	var ok bool
	var length uint64
	for i := start; i < sep; i++ {
		c := d.buf[i]
		if c < '0' || c > '9' {
			return nil, decodeCharError(ErrInvalidByteString, i, c, "invalid bytes length")
		}
		if length, ok = appendDigit(length, c); !ok {
			return nil, decodeError(ErrInvalidByteString, start, "bytes length overflow")
		}
	}

	// The last byte of the string, sep+length, must be inside the input.
	if length > math.MaxInt64 {
		return nil, decodeError(ErrInvalidByteString, start, "bytes length overflow")
	}
	last, ok := addInt64(int64(sep), int64(length))
	if !ok || last >= int64(len(d.buf)) {
		return nil, decodeError(ErrInvalidByteString, start, "bytes length overflow")
	}

	d.pos = int(last) + 1
	return ByteString(d.buf[sep+1 : d.pos : d.pos]), nil
}

func (d *decodeState) enter() error {
	if d.depth++; d.depth > d.maxDepth {
		return decodeError(ErrMaxDepth, d.pos,
			"exceeded max nesting depth "+strconv.Itoa(d.maxDepth))
	}
	return nil
}

func (d *decodeState) decodeList() (Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}

	d.pos++
	list := List{}
	for {
		if d.pos >= len(d.buf) {
			return nil, decodeError(ErrUnexpectedEnd, d.pos, "invalid list, missing 'e'")
		} else if d.buf[d.pos] == 'e' {
			break
		}

		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}

	d.pos++
	d.depth--
	return list, nil
}

func (d *decodeState) decodeDictionary() (Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}

	d.pos++
	var entries []Entry
	for {
		if d.pos >= len(d.buf) {
			return nil, decodeError(ErrUnexpectedEnd, d.pos, "invalid dict, missing 'e'")
		}

		c := d.buf[d.pos]
		if c == 'e' {
			break
		} else if c < '0' || c > '9' {
			return nil, decodeCharError(ErrInvalidKey, d.pos, c,
				"invalid dict, key must be a byte string")
		}

		keyPos := d.pos
		key, err := d.decodeByteString()
		if err != nil {
			return nil, err
		}

		// The first key has nothing to compare with.
		if n := len(entries); n > 0 {
			switch r := bytes.Compare(key, entries[n-1].Key); {
			case r < 0:
				return nil, decodeError(ErrUnsortedKeys, keyPos, "invalid dict, key not sorted")
			case r == 0:
				return nil, decodeError(ErrDuplicateKey, keyPos,
					"invalid dict, find duplicated keys "+strconv.Quote(string(key)))
			}
		}

		value, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}

	d.pos++
	d.depth--
	return &Dictionary{entries: entries}, nil
}
