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
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"
)

func bigInt(s string) Integer {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid big integer: " + s)
	}
	return NewBigInteger(v)
}

func mustDict(entries ...Entry) *Dictionary {
	d, err := NewDictionary(entries...)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDecode(t *testing.T) {
	tests := []struct {
		input  string
		expect Value
	}{
		{"i0e", NewInteger(0)},
		{"i42e", NewInteger(42)},
		{"i-42e", NewInteger(-42)},
		{"i9223372036854775807e", NewInteger(math.MaxInt64)},
		{"i-9223372036854775808e", NewInteger(math.MinInt64)},
		{"i9223372036854775808e", bigInt("9223372036854775808")},
		{"i-9223372036854775809e", bigInt("-9223372036854775809")},
		{"i18446744073709551616e", bigInt("18446744073709551616")},
		{"i-123456789012345678901234567890e", bigInt("-123456789012345678901234567890")},
		{"0:", ByteString{}},
		{"4:spam", ByteString("spam")},
		{"3:\x00\xff\x01", ByteString{0, 0xff, 1}},
		{"le", List{}},
		{"l4:spami42ee", List{ByteString("spam"), NewInteger(42)}},
		{"llelee", List{List{}, List{}}},
		{"de", mustDict()},
		{"d3:bar4:spam3:fooi42ee", mustDict(
			Entry{Key: ByteString("bar"), Value: ByteString("spam")},
			Entry{Key: ByteString("foo"), Value: NewInteger(42)},
		)},
		{"d1:ad1:bli1eeee", mustDict(Entry{
			Key:   ByteString("a"),
			Value: mustDict(Entry{Key: ByteString("b"), Value: List{NewInteger(1)}}),
		})},
	}

	for _, test := range tests {
		v, err := Decode([]byte(test.input))
		if err != nil {
			t.Errorf("%q: unexpected error: %s", test.input, err)
			continue
		}

		if !Equal(v, test.expect) {
			t.Errorf("%q: expect %s, but got %s", test.input,
				DiagnoseValue(test.expect), DiagnoseValue(v))
		}

		// The canonical input is the unique encoding of the value.
		if b, err := Encode(v); err != nil {
			t.Errorf("%q: fail to encode: %s", test.input, err)
		} else if string(b) != test.input {
			t.Errorf("expect '%s', but got '%s'", test.input, b)
		}
	}
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		input  string
		kind   error
		offset int
	}{
		{"", ErrUnexpectedEnd, 0},
		{"i12", ErrInvalidInteger, 0},
		{"ie", ErrInvalidInteger, 0},
		{"i-0e", ErrInvalidInteger, 1},
		{"i-01e", ErrInvalidInteger, 1},
		{"i03e", ErrInvalidInteger, 1},
		{"i00e", ErrInvalidInteger, 1},
		{"i-e", ErrInvalidInteger, 2},
		{"i1x2e", ErrInvalidInteger, 2},
		{"i+1e", ErrInvalidInteger, 1},
		{"3abc", ErrInvalidByteString, 0},
		{"03:abc", ErrInvalidByteString, 0},
		{"1a:abc", ErrInvalidByteString, 1},
		{"5:abc", ErrInvalidByteString, 0},
		{"1:", ErrInvalidByteString, 0},
		{"99999999999999999999999:a", ErrInvalidByteString, 0},
		{"9223372036854775807:a", ErrInvalidByteString, 0},
		{"x", ErrInvalidPrefix, 0},
		{"-1:a", ErrInvalidPrefix, 0},
		{"li1e", ErrUnexpectedEnd, 4},
		{"l", ErrUnexpectedEnd, 1},
		{"d1:ai1e", ErrUnexpectedEnd, 7},
		{"d1:a", ErrUnexpectedEnd, 4},
		{"di1ei2ee", ErrInvalidKey, 1},
		{"dlei2ee", ErrInvalidKey, 1},
		{"d1:bi1e1:ai2ee", ErrUnsortedKeys, 7},
		{"d2:aai1e1:ai2ee", ErrUnsortedKeys, 8},
		{"d1:ai1e1:ai2ee", ErrDuplicateKey, 7},
		{"i1ei2e", ErrTrailingData, 3},
		{"1:a1:b", ErrTrailingData, 3},
		{"lee", ErrTrailingData, 2},
	}

	for _, test := range tests {
		_, err := Decode([]byte(test.input))
		if err == nil {
			t.Errorf("%q: expect an error, but got nil", test.input)
			continue
		}

		if !errors.Is(err, test.kind) {
			t.Errorf("%q: expect the error '%s', but got '%s'", test.input, test.kind, err)
		}

		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("%q: expect a DecodeError, but got %T", test.input, err)
		} else if de.Offset != test.offset {
			t.Errorf("%q: expect the offset %d, but got %d", test.input, test.offset, de.Offset)
		}
	}
}

func TestDecodeErrorMessage(t *testing.T) {
	_, err := Decode([]byte("l4:spamxe"))
	expect := "bencode: invalid bencode prefix, found 'x' at 7"
	if err == nil || err.Error() != expect {
		t.Errorf("expect '%s', but got '%v'", expect, err)
	}

	_, err = Decode([]byte("d1:ai1e1:ai2ee"))
	expect = "bencode: invalid dict, find duplicated keys \"a\", index 7"
	if err == nil || err.Error() != expect {
		t.Errorf("expect '%s', but got '%v'", expect, err)
	}
}

func TestDecodeMaxDepth(t *testing.T) {
	nested := func(n int) []byte {
		return []byte(strings.Repeat("l", n) + strings.Repeat("e", n))
	}

	if err := Valid(nested(DefaultMaxDepth)); err != nil {
		t.Errorf("unexpected error: %s", err)
	}

	if err := Valid(nested(DefaultMaxDepth + 1)); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("expect the error '%s', but got '%v'", ErrMaxDepth, err)
	}

	d := NewDecoder(strings.NewReader(string(nested(10))))
	d.SetMaxDepth(5)
	if _, err := d.DecodeValue(); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("expect the error '%s', but got '%v'", ErrMaxDepth, err)
	}
}

func TestDecodeSharesInput(t *testing.T) {
	data := []byte("l3:abc3:defe")
	v, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	s := v.(List)[0].(ByteString)
	if cap(s) != len(s) {
		t.Errorf("expect the capacity %d, but got %d", len(s), cap(s))
	}

	data[3] = 'x'
	if string(s) != "xbc" {
		t.Errorf("expect 'xbc', but got '%s'", s)
	}
}

func TestIntegerPaths(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1 << 40, math.MaxInt64, math.MinInt64} {
		small := NewInteger(v)
		fromBig := NewBigInteger(big.NewInt(v))
		if small != fromBig {
			t.Errorf("%d: expect the normalized integer", v)
		}

		b1, b2 := newBuffer(), newBuffer()
		b1.writeInt(v)
		b2.writeBigInt(big.NewInt(v))
		if s1, s2 := string(b1.intoBytes()), string(b2.intoBytes()); s1 != s2 {
			t.Errorf("%d: '%s' != '%s'", v, s1, s2)
		}
	}

	if v, ok := NewUint(math.MaxUint64).Uint64(); !ok || v != math.MaxUint64 {
		t.Errorf("expect %d, but got %d", uint64(math.MaxUint64), v)
	}
	if _, ok := NewUint(math.MaxUint64).Int64(); ok {
		t.Error("expect MaxUint64 not to fit int64")
	}
	if NewInteger(-1).Cmp(bigInt("18446744073709551616")) != -1 {
		t.Error("expect -1 < 2^64")
	}
}
