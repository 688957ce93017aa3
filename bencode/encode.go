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
	"fmt"
	"math/big"
	"reflect"
	"sort"
)

// Marshaler is the interface implemented by the types that can encode
// themselves into a bencode value.
//
// The returned bytes must be exactly one canonical bencode value.
type Marshaler interface {
	MarshalBencode() ([]byte, error)
}

// ListObject is implemented by the host objects which are encoded as a list.
type ListObject interface {
	BencodeList() []interface{}
}

// DictObject is implemented by the host objects which are encoded as a dict.
//
// The pairs may be returned in any order, and the key of each pair must be
// a text (string) or bytes ([]byte or ByteString).
type DictObject interface {
	BencodeDict() []Pair
}

// Pair is a key-value pair returned by DictObject.
type Pair struct {
	Key   interface{}
	Value interface{}
}

var (
	integerType    = reflect.TypeOf(Integer{})
	dictionaryType = reflect.TypeOf(Dictionary{})
	valueType      = reflect.TypeOf((*Value)(nil)).Elem()
	bigIntType     = reflect.TypeOf(big.Int{})
)

// Encode returns the canonical bencode encoding of v.
//
// v may be a Value, a Marshaler, a ListObject, a DictObject or a Go value:
//
//	bool                    -> i1e or i0e
//	int*, uint*, *big.Int   -> integer
//	string, []byte, [N]byte -> byte string
//	slice, array            -> list
//	map with string keys    -> dict
//	struct                  -> dict, keyed by the tag `bencode:"name,omitempty"`
//
// Pointers and interfaces are followed. The nil pointer and interface
// fields of a struct are omitted.
func Encode(v interface{}) ([]byte, error) {
	return encode(v, DefaultMaxDepth)
}

func encode(v interface{}, maxDepth int) ([]byte, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	e := encodeState{buf: newBuffer(), maxDepth: maxDepth}
	if err := e.encode(v); err != nil {
		return nil, err
	}
	return e.buf.intoBytes(), nil
}

// EncodeString is the same as Encode, but returns a string.
func EncodeString(v interface{}) (string, error) {
	b, err := Encode(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeBytes is the alias of Encode.
func EncodeBytes(v interface{}) ([]byte, error) { return Encode(v) }

// identity identifies a composite object being encoded.
type identity struct {
	ptr uintptr
	typ reflect.Type
	len int
}

func identityOf(rv reflect.Value) (identity, bool) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map:
		if rv.IsNil() {
			return identity{}, false
		}
		return identity{ptr: rv.Pointer(), typ: rv.Type()}, true

	case reflect.Slice:
		if rv.Len() == 0 {
			return identity{}, false
		}
		return identity{ptr: rv.Pointer(), typ: rv.Type(), len: rv.Len()}, true

	default:
		return identity{}, false
	}
}

// encodeState is the state of a single encoding call.
//
// seen holds the composites between the root and the current value,
// so a value shared by two siblings is not a circular reference.
type encodeState struct {
	buf      *buffer
	seen     map[identity]struct{}
	depth    int
	maxDepth int
}

func (e *encodeState) encode(v interface{}) error {
	if val, ok := v.(Value); ok {
		return e.writeValue(val)
	}
	return e.reflectValue(reflect.ValueOf(v))
}

func (e *encodeState) mark(rv reflect.Value) (id identity, ok bool, err error) {
	if id, ok = identityOf(rv); !ok {
		return
	}

	if _, exist := e.seen[id]; exist {
		err = encodeError(ErrCircularReference, "circular reference detected: %s", rv.Type())
		return
	}

	if e.seen == nil {
		e.seen = make(map[identity]struct{}, 8)
	}
	e.seen[id] = struct{}{}
	return
}

func (e *encodeState) unmark(id identity, ok bool) {
	if ok {
		delete(e.seen, id)
	}
}

func (e *encodeState) enter() error {
	if e.depth++; e.depth > e.maxDepth {
		return encodeError(ErrMaxDepth, "exceeded max nesting depth %d", e.maxDepth)
	}
	return nil
}

func (e *encodeState) leave() { e.depth-- }

func (e *encodeState) writeInteger(i Integer) {
	e.buf.WriteByte('i')
	i.writeTo(e.buf)
	e.buf.WriteByte('e')
}

func (e *encodeState) writeBigInt(v *big.Int) {
	e.buf.WriteByte('i')
	if v.IsInt64() {
		e.buf.writeInt(v.Int64())
	} else {
		e.buf.writeBigInt(v)
	}
	e.buf.WriteByte('e')
}

func (e *encodeState) writeBytes(b []byte) {
	e.buf.writeInt(int64(len(b)))
	e.buf.WriteByte(':')
	e.buf.Write(b)
}

func (e *encodeState) writeString(s string) {
	e.buf.writeInt(int64(len(s)))
	e.buf.WriteByte(':')
	e.buf.WriteString(s)
}

// writeValue encodes the value tree without reflection.
func (e *encodeState) writeValue(v Value) (err error) {
	switch v := v.(type) {
	case Integer:
		e.writeInteger(v)

	case ByteString:
		e.writeBytes(v)

	case *Integer:
		if v == nil {
			return &UnsupportedTypeError{Type: reflect.TypeOf(v)}
		}
		e.writeInteger(*v)

	case *ByteString:
		if v == nil {
			return &UnsupportedTypeError{Type: reflect.TypeOf(v)}
		}
		e.writeBytes(*v)

	case *List:
		if v == nil {
			return &UnsupportedTypeError{Type: reflect.TypeOf(v)}
		}
		return e.writeValue(*v)

	case List:
		id, ok, err := e.mark(reflect.ValueOf(v))
		if err != nil {
			return err
		} else if err = e.enter(); err != nil {
			return err
		}

		e.buf.WriteByte('l')
		for _, item := range v {
			if err = e.writeValue(item); err != nil {
				return err
			}
		}
		e.buf.WriteByte('e')

		e.leave()
		e.unmark(id, ok)

	case *Dictionary:
		id, ok, err := e.mark(reflect.ValueOf(v))
		if err != nil {
			return err
		} else if err = e.enter(); err != nil {
			return err
		}

		// The entries are sorted and unique since the dictionary was built.
		e.buf.WriteByte('d')
		for _, entry := range v.Entries() {
			e.writeBytes(entry.Key)
			if err = e.writeValue(entry.Value); err != nil {
				return err
			}
		}
		e.buf.WriteByte('e')

		e.leave()
		e.unmark(id, ok)

	default:
		return &UnsupportedTypeError{Type: reflect.TypeOf(v)}
	}

	return
}

func (e *encodeState) marshal(m Marshaler, t reflect.Type) error {
	b, err := m.MarshalBencode()
	if err != nil {
		return err
	}

	if _, err = decode(b, e.maxDepth); err != nil {
		return &EncodeError{
			Msg: fmt.Sprintf("invalid output of %s.MarshalBencode: %s", t, err),
			Err: ErrInvalidMarshaler,
		}
	}

	e.buf.Write(b)
	return nil
}

func (e *encodeState) reflectValue(rv reflect.Value) error {
	if !rv.IsValid() {
		return &UnsupportedTypeError{}
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return &UnsupportedTypeError{Type: rv.Type()}
		}
	}

	if rv.CanInterface() {
		switch v := rv.Interface().(type) {
		case Marshaler:
			return e.marshal(v, rv.Type())
		case Value:
			return e.writeValue(v)
		case Dictionary:
			return e.writeValue(&v)
		case *big.Int:
			e.writeBigInt(v)
			return nil
		case big.Int:
			e.writeBigInt(&v)
			return nil
		case ListObject:
			return e.writeListObject(rv, v)
		case DictObject:
			return e.writeDictObject(rv, v)
		}

		if rv.Kind() != reflect.Ptr && rv.CanAddr() {
			if m, ok := rv.Addr().Interface().(Marshaler); ok {
				return e.marshal(m, rv.Type())
			}
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			e.buf.WriteString("i1e")
		} else {
			e.buf.WriteString("i0e")
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf.WriteByte('i')
		e.buf.writeInt(rv.Int())
		e.buf.WriteByte('e')

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf.WriteByte('i')
		e.buf.writeUint(rv.Uint())
		e.buf.WriteByte('e')

	case reflect.String:
		e.writeString(rv.String())

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			e.writeBytes(rv.Bytes())
			return nil
		}

		id, ok, err := e.mark(rv)
		if err != nil {
			return err
		} else if err = e.writeList(rv); err != nil {
			return err
		}
		e.unmark(id, ok)

	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			e.writeBytes(arrayBytes(rv))
			return nil
		}
		return e.writeList(rv)

	case reflect.Map:
		id, ok, err := e.mark(rv)
		if err != nil {
			return err
		}

		pairs := make([]dictPair, 0, rv.Len())
		for iter := rv.MapRange(); iter.Next(); {
			key, isKey := keyBytes(iter.Key())
			if !isKey {
				return encodeError(ErrInvalidKey, "dict key must be str or bytes, but got %s", iter.Key().Type())
			}
			pairs = append(pairs, dictPair{key: key, value: iter.Value()})
		}

		if err = e.writeDict(pairs); err != nil {
			return err
		}
		e.unmark(id, ok)

	case reflect.Struct:
		fields := structFields(rv.Type())
		pairs := make([]dictPair, 0, len(fields))
		for _, f := range fields {
			fv := rv.Field(f.index)
			if f.omitEmpty && isEmptyValue(fv) {
				continue
			}

			switch fv.Kind() {
			case reflect.Ptr, reflect.Interface:
				if fv.IsNil() {
					continue
				}
			}

			pairs = append(pairs, dictPair{key: []byte(f.name), value: fv})
		}
		return e.writeDict(pairs)

	case reflect.Ptr:
		id, ok, err := e.mark(rv)
		if err != nil {
			return err
		} else if err = e.reflectValue(rv.Elem()); err != nil {
			return err
		}
		e.unmark(id, ok)

	case reflect.Interface:
		return e.reflectValue(rv.Elem())

	default:
		return &UnsupportedTypeError{Type: rv.Type()}
	}

	return nil
}

func arrayBytes(rv reflect.Value) []byte {
	b := make([]byte, rv.Len())
	for i := range b {
		b[i] = byte(rv.Index(i).Uint())
	}
	return b
}

// keyBytes normalizes a text or bytes key to its bytes.
func keyBytes(rv reflect.Value) ([]byte, bool) {
	switch rv.Kind() {
	case reflect.String:
		return []byte(rv.String()), true
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), true
		}
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return arrayBytes(rv), true
		}
	case reflect.Interface:
		if !rv.IsNil() {
			return keyBytes(rv.Elem())
		}
	}
	return nil, false
}

func (e *encodeState) writeList(rv reflect.Value) error {
	if err := e.enter(); err != nil {
		return err
	}

	e.buf.WriteByte('l')
	for i, n := 0, rv.Len(); i < n; i++ {
		if err := e.reflectValue(rv.Index(i)); err != nil {
			return err
		}
	}
	e.buf.WriteByte('e')

	e.leave()
	return nil
}

type dictPair struct {
	key   []byte
	value reflect.Value
}

// writeDict sorts the pairs by the key bytes and checks the duplicated keys
// before writing anything.
func (e *encodeState) writeDict(pairs []dictPair) error {
	sort.Slice(pairs, func(i, j int) bool { return bytes.Compare(pairs[i].key, pairs[j].key) < 0 })
	for i := 1; i < len(pairs); i++ {
		if bytes.Equal(pairs[i-1].key, pairs[i].key) {
			return encodeError(ErrDuplicateKey, "find duplicated keys %q with str and bytes in dict", pairs[i].key)
		}
	}

	if err := e.enter(); err != nil {
		return err
	}

	e.buf.WriteByte('d')
	for _, p := range pairs {
		e.writeBytes(p.key)
		if err := e.reflectValue(p.value); err != nil {
			return err
		}
	}
	e.buf.WriteByte('e')

	e.leave()
	return nil
}

func (e *encodeState) writeListObject(rv reflect.Value, o ListObject) error {
	id, ok, err := e.mark(rv)
	if err != nil {
		return err
	} else if err = e.writeList(reflect.ValueOf(o.BencodeList())); err != nil {
		return err
	}
	e.unmark(id, ok)
	return nil
}

func (e *encodeState) writeDictObject(rv reflect.Value, o DictObject) error {
	id, ok, err := e.mark(rv)
	if err != nil {
		return err
	}

	ps := o.BencodeDict()
	pairs := make([]dictPair, len(ps))
	for i, p := range ps {
		key, isKey := keyBytes(reflect.ValueOf(p.Key))
		if !isKey {
			return encodeError(ErrInvalidKey, "dict key must be str or bytes, but got %T", p.Key)
		}
		pairs[i] = dictPair{key: key, value: reflect.ValueOf(p.Value)}
	}

	if err = e.writeDict(pairs); err != nil {
		return err
	}
	e.unmark(id, ok)
	return nil
}
