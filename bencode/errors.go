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
	"fmt"
	"reflect"
	"strconv"
)

// Kinds of the decoding and encoding errors, which can be matched by errors.Is.
var (
	ErrInvalidInteger    = errors.New("invalid int")
	ErrInvalidByteString = errors.New("invalid bytes")
	ErrUnexpectedEnd     = errors.New("unexpected end of input")
	ErrInvalidKey        = errors.New("invalid dict key")
	ErrUnsortedKeys      = errors.New("dict keys not sorted")
	ErrDuplicateKey      = errors.New("duplicated dict keys")
	ErrInvalidPrefix     = errors.New("invalid bencode prefix")
	ErrTrailingData      = errors.New("trailing data")
	ErrMaxDepth          = errors.New("exceeded max nesting depth")
	ErrCircularReference = errors.New("circular reference")
	ErrInvalidMarshaler  = errors.New("invalid marshaler output")
)

// DecodeError is returned when the input is not a canonical bencode value.
//
// Offset is the byte offset where the problem was detected, and Char is
// the offending byte if HasChar is true.
type DecodeError struct {
	Offset  int
	Char    byte
	HasChar bool
	Msg     string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.HasChar {
		return fmt.Sprintf("bencode: %s, found %s at %d", e.Msg, quoteChar(e.Char), e.Offset)
	}
	return fmt.Sprintf("bencode: %s, index %d", e.Msg, e.Offset)
}

// Unwrap returns the error kind, such as ErrInvalidInteger.
func (e *DecodeError) Unwrap() error { return e.Err }

func decodeError(kind error, offset int, msg string) *DecodeError {
	return &DecodeError{Offset: offset, Msg: msg, Err: kind}
}

func decodeCharError(kind error, offset int, c byte, msg string) *DecodeError {
	return &DecodeError{Offset: offset, Char: c, HasChar: true, Msg: msg, Err: kind}
}

func quoteChar(c byte) string {
	return strconv.QuoteRuneToASCII(rune(c))
}

// EncodeError is returned when a value cannot be encoded canonically,
// such as duplicated dict keys or a circular reference.
type EncodeError struct {
	Msg string
	Err error
}

func (e *EncodeError) Error() string { return "bencode: " + e.Msg }

// Unwrap returns the error kind, such as ErrCircularReference.
func (e *EncodeError) Unwrap() error { return e.Err }

func encodeError(kind error, format string, args ...interface{}) *EncodeError {
	return &EncodeError{Msg: fmt.Sprintf(format, args...), Err: kind}
}

// UnsupportedTypeError is returned when encoding a value of the type
// that has no bencode representation.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	typ := "nil"
	if e.Type != nil {
		typ = e.Type.String()
	}

	return fmt.Sprintf("bencode: invalid type '%s', bencode only supports "+
		"bytes, string, int, list, array, map, struct and bool "+
		"(encoded as 0/1, decoded as int)", typ)
}

// InvalidUnmarshalError is returned when the argument of DecodeBytes
// is not a non-nil pointer.
type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "bencode: DecodeBytes(nil)"
	} else if e.Type.Kind() != reflect.Ptr {
		return "bencode: DecodeBytes(non-pointer " + e.Type.String() + ")"
	}
	return "bencode: DecodeBytes(nil " + e.Type.String() + ")"
}

// UnmarshalTypeError is returned when a decoded value cannot be stored
// into the given Go value.
type UnmarshalTypeError struct {
	Value string
	Type  reflect.Type
}

func (e *UnmarshalTypeError) Error() string {
	return fmt.Sprintf("bencode: cannot unmarshal %s into Go value of type %s", e.Value, e.Type)
}
