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

import "reflect"

// Unmarshaler is the interface implemented by the types that can decode
// a bencode value by themselves.
//
// The argument is the canonical encoding of exactly one value.
type Unmarshaler interface {
	UnmarshalBencode([]byte) error
}

// DecodeBytes decodes the canonical bencode data into the value
// pointed by v.
//
// Into an empty interface, an integer is decoded as int64, or *big.Int
// if it does not fit, a byte string as string, a list as []interface{}
// and a dict as map[string]interface{}. An integer 0 or 1 can be decoded
// into a bool. The dict keys that match no struct field are ignored.
func DecodeBytes(data []byte, v interface{}) error {
	return decodeInto(data, v, DefaultMaxDepth)
}

// DecodeString is the same as DecodeBytes, but decodes from a string.
func DecodeString(s string, v interface{}) error {
	return DecodeBytes([]byte(s), v)
}

func decodeInto(data []byte, v interface{}, maxDepth int) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &InvalidUnmarshalError{Type: reflect.TypeOf(v)}
	}

	value, err := decode(data, maxDepth)
	if err != nil {
		return err
	}

	u := unmarshalState{maxDepth: maxDepth}
	return u.assign(value, rv.Elem())
}

func kindOf(v Value) string {
	switch v := v.(type) {
	case Integer:
		return "integer " + v.String()
	case ByteString:
		return "string"
	case List:
		return "list"
	default:
		return "dict"
	}
}

func typeError(src Value, dst reflect.Value) error {
	return &UnmarshalTypeError{Value: kindOf(src), Type: dst.Type()}
}

// unmarshalState carries the options of a single decoding call
// into the value assignment.
type unmarshalState struct {
	maxDepth int
}

// unmarshal re-encodes src with the depth limit of the decoding.
func (s unmarshalState) unmarshal(u Unmarshaler, src Value) error {
	b, err := encode(src, s.maxDepth)
	if err != nil {
		return err
	}
	return u.UnmarshalBencode(b)
}

// natural converts the value tree to the plain Go values.
func natural(src Value) interface{} {
	switch v := src.(type) {
	case Integer:
		if i, ok := v.Int64(); ok {
			return i
		}
		return v.BigInt()

	case ByteString:
		return string(v)

	case List:
		vs := make([]interface{}, len(v))
		for i, item := range v {
			vs[i] = natural(item)
		}
		return vs

	case *Dictionary:
		ms := make(map[string]interface{}, v.Len())
		v.Range(func(key ByteString, value Value) bool {
			ms[string(key)] = natural(value)
			return true
		})
		return ms

	default:
		return nil
	}
}

func (s unmarshalState) assign(src Value, dst reflect.Value) error {
	if dst.Kind() != reflect.Ptr && dst.CanAddr() && dst.Addr().CanInterface() {
		if u, ok := dst.Addr().Interface().(Unmarshaler); ok {
			return s.unmarshal(u, src)
		}
	}

	// Integer, ByteString, List and *Dictionary.
	if st := reflect.TypeOf(src); st == dst.Type() {
		dst.Set(reflect.ValueOf(src))
		return nil
	}

	switch dst.Type() {
	case dictionaryType:
		d, ok := src.(*Dictionary)
		if !ok {
			return typeError(src, dst)
		}
		dst.Set(reflect.ValueOf(d).Elem())
		return nil

	case bigIntType:
		i, ok := src.(Integer)
		if !ok {
			return typeError(src, dst)
		}
		dst.Set(reflect.ValueOf(i.BigInt()).Elem())
		return nil
	}

	switch dst.Kind() {
	case reflect.Ptr:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return s.assign(src, dst.Elem())

	case reflect.Interface:
		switch {
		case dst.NumMethod() == 0:
			dst.Set(reflect.ValueOf(natural(src)))
		case dst.Type() == valueType:
			dst.Set(reflect.ValueOf(src))
		default:
			return typeError(src, dst)
		}

	case reflect.Bool:
		i, ok := src.(Integer)
		if !ok {
			return typeError(src, dst)
		}

		v, ok := i.Int64()
		if !ok || (v != 0 && v != 1) {
			return typeError(src, dst)
		}
		dst.SetBool(v == 1)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := src.(Integer)
		if !ok {
			return typeError(src, dst)
		}

		v, ok := i.Int64()
		if !ok || dst.OverflowInt(v) {
			return typeError(src, dst)
		}
		dst.SetInt(v)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i, ok := src.(Integer)
		if !ok {
			return typeError(src, dst)
		}

		v, ok := i.Uint64()
		if !ok || dst.OverflowUint(v) {
			return typeError(src, dst)
		}
		dst.SetUint(v)

	case reflect.String:
		str, ok := src.(ByteString)
		if !ok {
			return typeError(src, dst)
		}
		dst.SetString(string(str))

	case reflect.Slice:
		return s.assignSlice(src, dst)

	case reflect.Array:
		return s.assignArray(src, dst)

	case reflect.Map:
		return s.assignMap(src, dst)

	case reflect.Struct:
		return s.assignStruct(src, dst)

	default:
		return typeError(src, dst)
	}

	return nil
}

func (s unmarshalState) assignSlice(src Value, dst reflect.Value) error {
	switch v := src.(type) {
	case ByteString:
		if dst.Type().Elem().Kind() != reflect.Uint8 {
			return typeError(src, dst)
		}

		// Not share the memory with the input.
		b := reflect.MakeSlice(dst.Type(), len(v), len(v))
		for i, c := range v {
			b.Index(i).SetUint(uint64(c))
		}
		dst.Set(b)

	case List:
		list := reflect.MakeSlice(dst.Type(), len(v), len(v))
		for i, item := range v {
			if err := s.assign(item, list.Index(i)); err != nil {
				return err
			}
		}
		dst.Set(list)

	default:
		return typeError(src, dst)
	}

	return nil
}

func (s unmarshalState) assignArray(src Value, dst reflect.Value) error {
	switch v := src.(type) {
	case ByteString:
		if dst.Type().Elem().Kind() != reflect.Uint8 || len(v) != dst.Len() {
			return typeError(src, dst)
		}
		for i, c := range v {
			dst.Index(i).SetUint(uint64(c))
		}

	case List:
		if len(v) != dst.Len() {
			return typeError(src, dst)
		}
		for i, item := range v {
			if err := s.assign(item, dst.Index(i)); err != nil {
				return err
			}
		}

	default:
		return typeError(src, dst)
	}

	return nil
}

func (s unmarshalState) assignMap(src Value, dst reflect.Value) (err error) {
	d, ok := src.(*Dictionary)
	if !ok {
		return typeError(src, dst)
	}

	mt := dst.Type()
	if mt.Key().Kind() != reflect.String {
		return typeError(src, dst)
	}

	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(mt, d.Len()))
	}

	d.Range(func(key ByteString, value Value) bool {
		elem := reflect.New(mt.Elem()).Elem()
		if err = s.assign(value, elem); err != nil {
			return false
		}

		dst.SetMapIndex(reflect.ValueOf(string(key)).Convert(mt.Key()), elem)
		return true
	})

	return
}

func (s unmarshalState) assignStruct(src Value, dst reflect.Value) (err error) {
	d, ok := src.(*Dictionary)
	if !ok {
		return typeError(src, dst)
	}

	fields := structFields(dst.Type())
	indexes := make(map[string]int, len(fields))
	for _, f := range fields {
		indexes[f.name] = f.index
	}

	d.Range(func(key ByteString, value Value) bool {
		if index, ok := indexes[string(key)]; ok {
			err = s.assign(value, dst.Field(index))
		}
		return err == nil
	})

	return
}
