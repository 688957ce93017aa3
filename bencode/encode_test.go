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
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"
)

type testStruct struct {
	Name    string         `bencode:"name"`
	Length  int64          `bencode:"length"`
	Private bool           `bencode:"private,omitempty"`
	Paths   []string       `bencode:"path,omitempty"`
	Extra   map[string]int `bencode:"extra,omitempty"`
	Ptr     *int           `bencode:"ptr"`
	Skip    string         `bencode:"-"`
	NoTag   uint8
	hidden  int
}

type pairs []Pair

func (ps pairs) BencodeDict() []Pair { return ps }

type selfList struct{ items []interface{} }

func (l *selfList) BencodeList() []interface{} { return l.items }

type deepList struct{ n int }

func (l deepList) BencodeList() []interface{} { return []interface{}{deepList{n: l.n + 1}} }

type badMarshaler struct{}

func (badMarshaler) MarshalBencode() ([]byte, error) { return []byte("i01e"), nil }

func TestEncode(t *testing.T) {
	one := 1
	big100 := new(big.Int).Lsh(big.NewInt(1), 100)

	tests := []struct {
		value  interface{}
		expect string
	}{
		{0, "i0e"},
		{int8(-5), "i-5e"},
		{int64(math.MinInt64), "i-9223372036854775808e"},
		{uint64(math.MaxUint64), "i18446744073709551615e"},
		{big100, "i1267650600228229401496703205376e"},
		{*big100, "i1267650600228229401496703205376e"},
		{new(big.Int).Neg(big100), "i-1267650600228229401496703205376e"},
		{bigInt("-18446744073709551616"), "i-18446744073709551616e"},
		{true, "i1e"},
		{false, "i0e"},
		{"", "0:"},
		{"spam", "4:spam"},
		{[]byte{0, 0xff}, "2:\x00\xff"},
		{[4]byte{'a', 'b', 'c', 'd'}, "4:abcd"},
		{ByteString("spam"), "4:spam"},
		{[]int{}, "le"},
		{[2]int{1, 2}, "li1ei2ee"},
		{[]interface{}{"spam", 42, []string{"a"}}, "l4:spami42el1:aee"},
		{map[string]int{}, "de"},
		{map[string]interface{}{"b": 1, "a": "x", "c": []int{1, 2}}, "d1:a1:x1:bi1e1:cli1ei2eee"},
		{map[string][]byte{"k": []byte("v")}, "d1:k1:ve"},
		{testStruct{Name: "a", Length: 10, NoTag: 1, Skip: "x", hidden: 1}, "d5:NoTagi1e6:lengthi10e4:name1:ae"},
		{&testStruct{Name: "a", Private: true, Paths: []string{"p"}, Ptr: &one}, "d5:NoTagi0e6:lengthi0e4:name1:a4:pathl1:pe7:privatei1e3:ptri1ee"},
		{pairs{{Key: "b", Value: 1}, {Key: []byte("a"), Value: 2}}, "d1:ai2e1:bi1ee"},
		{RawMessage("d1:ai1ee"), "d1:ai1ee"},
		{[]interface{}{RawMessage("i1e"), NewInteger(2)}, "li1ei2ee"},
		{(*Dictionary)(nil), "de"},
		{List{NewInteger(1), mustDict(Entry{Key: ByteString("a"), Value: List{}})}, "li1ed1:aleee"},
	}

	for _, test := range tests {
		s, err := EncodeString(test.value)
		if err != nil {
			t.Errorf("%T: unexpected error: %s", test.value, err)
		} else if s != test.expect {
			t.Errorf("%T: expect '%s', but got '%s'", test.value, test.expect, s)
		}
	}
}

func TestEncodeDictOrder(t *testing.T) {
	d1 := mustDict(
		Entry{Key: ByteString("zz"), Value: NewInteger(1)},
		Entry{Key: ByteString("a"), Value: NewInteger(2)},
		Entry{Key: ByteString("\xff"), Value: NewInteger(3)},
		Entry{Key: ByteString("A"), Value: NewInteger(4)},
	)
	d2 := mustDict(
		Entry{Key: ByteString("\xff"), Value: NewInteger(3)},
		Entry{Key: ByteString("A"), Value: NewInteger(4)},
		Entry{Key: ByteString("zz"), Value: NewInteger(1)},
		Entry{Key: ByteString("a"), Value: NewInteger(2)},
	)

	expect := "d1:Ai4e1:ai2e2:zzi1e1:\xffi3ee"
	for _, v := range []interface{}{d1, d2, pairs{
		{Key: "a", Value: 2}, {Key: "\xff", Value: 3},
		{Key: []byte("zz"), Value: 1}, {Key: "A", Value: 4},
	}} {
		if s, err := EncodeString(v); err != nil {
			t.Error(err)
		} else if s != expect {
			t.Errorf("expect '%q', but got '%q'", expect, s)
		}
	}

	if _, err := NewDictionary(
		Entry{Key: ByteString("a"), Value: NewInteger(1)},
		Entry{Key: ByteString("a"), Value: NewInteger(2)},
	); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expect the error '%s', but got '%v'", ErrDuplicateKey, err)
	}
}

func TestEncodeError(t *testing.T) {
	l := &selfList{}
	l.items = []interface{}{1, l}

	m := map[string]interface{}{}
	m["self"] = m

	s := []interface{}{nil}
	s[0] = s

	vl := List{nil}
	vl[0] = vl

	tests := []struct {
		value interface{}
		kind  error
	}{
		{l, ErrCircularReference},
		{m, ErrCircularReference},
		{s, ErrCircularReference},
		{vl, ErrCircularReference},
		{deepList{}, ErrMaxDepth},
		{pairs{{Key: "a", Value: 1}, {Key: []byte("a"), Value: 2}}, ErrDuplicateKey},
		{pairs{{Key: 1, Value: 2}}, ErrInvalidKey},
		{map[int]string{1: "a"}, ErrInvalidKey},
		{badMarshaler{}, ErrInvalidMarshaler},
		{[]interface{}{RawMessage("i1ei2e")}, ErrInvalidMarshaler},
	}

	for _, test := range tests {
		_, err := Encode(test.value)
		if !errors.Is(err, test.kind) {
			t.Errorf("%T: expect the error '%s', but got '%v'", test.value, test.kind, err)
		}

		var ee *EncodeError
		if !errors.As(err, &ee) {
			t.Errorf("%T: expect an EncodeError, but got %T", test.value, err)
		}
	}

	expect := "bencode: find duplicated keys \"a\" with str and bytes in dict"
	if _, err := Encode(pairs{{Key: "a", Value: 1}, {Key: []byte("a"), Value: 2}}); err == nil || err.Error() != expect {
		t.Errorf("expect '%s', but got '%v'", expect, err)
	}
}

type valueHolder struct {
	Size  *Integer    `bencode:"size"`
	Name  *ByteString `bencode:"name"`
	Items *List       `bencode:"items"`
}

func TestEncodeValuePointers(t *testing.T) {
	i := NewInteger(5)
	s := ByteString("spam")
	l := List{NewInteger(1), ByteString("a")}

	tests := []struct {
		value  interface{}
		expect string
	}{
		{&i, "i5e"},
		{&s, "4:spam"},
		{&l, "li1e1:ae"},
		{List{&i, &s}, "li5e4:spame"},
		{valueHolder{Size: &i, Name: &s, Items: &l}, "d5:itemsli1e1:ae4:name4:spam4:sizei5ee"},
		{&valueHolder{Size: &i}, "d4:sizei5ee"},
	}

	for _, test := range tests {
		if v, err := EncodeString(test.value); err != nil {
			t.Errorf("%T: unexpected error: %s", test.value, err)
		} else if v != test.expect {
			t.Errorf("%T: expect '%s', but got '%s'", test.value, test.expect, v)
		}
	}

	// The value decoded into the pointer fields is encoded back as is.
	data := "d5:itemsli1ee4:name1:x4:sizei-3ee"
	var h valueHolder
	if err := DecodeString(data, &h); err != nil {
		t.Fatal(err)
	} else if v, err := EncodeString(h); err != nil {
		t.Error(err)
	} else if v != data {
		t.Errorf("expect '%s', but got '%s'", data, v)
	}

	cyclic := List{nil}
	cyclic[0] = &cyclic
	if _, err := Encode(cyclic); !errors.Is(err, ErrCircularReference) {
		t.Errorf("expect the error '%s', but got '%v'", ErrCircularReference, err)
	}
}

func TestEncodeSharedValues(t *testing.T) {
	shared := []int{1}
	p := &testStruct{Name: "a"}
	m := map[string]int{"a": 1}

	s, err := EncodeString([]interface{}{shared, shared, p, p, m, m})
	if err != nil {
		t.Fatal(err)
	}

	expect := "lli1eeli1ee" + strings.Repeat("d5:NoTagi0e6:lengthi0e4:name1:ae", 2) + "d1:ai1ed1:ai1ee"
	if s != expect {
		t.Errorf("expect '%s', but got '%s'", expect, s)
	}
}

func TestEncodeUnsupportedType(t *testing.T) {
	var nilPtr *testStruct
	values := []interface{}{1.5, nil, make(chan int), func() {}, nilPtr, []interface{}{nil},
		(*Integer)(nil), (*ByteString)(nil), (*List)(nil)}
	for _, v := range values {
		_, err := Encode(v)

		var ute *UnsupportedTypeError
		if !errors.As(err, &ute) {
			t.Errorf("%T: expect an UnsupportedTypeError, but got '%v'", v, err)
		}
	}

	_, err := Encode(1.5)
	expect := "bencode: invalid type 'float64', bencode only supports bytes, " +
		"string, int, list, array, map, struct and bool (encoded as 0/1, decoded as int)"
	if err == nil || err.Error() != expect {
		t.Errorf("expect '%s', but got '%v'", expect, err)
	}
}

func TestEncoder(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	enc := NewEncoder(buf)
	if err := enc.Encode(map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode(1.5); err == nil {
		t.Error("expect an error, but got nil")
	}

	if s := buf.String(); s != "d1:ai1ee" {
		t.Errorf("expect '%s', but got '%s'", "d1:ai1ee", s)
	}
}
