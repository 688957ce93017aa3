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

import "io"

// Decoder reads and decodes a bencode value from an input stream.
//
// The whole input is read before decoding, and must contain exactly one value.
type Decoder struct {
	r        io.Reader
	maxDepth int
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth sets the maximum nesting depth of lists and dicts.
//
// If depth is not positive, use DefaultMaxDepth.
func (d *Decoder) SetMaxDepth(depth int) {
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	d.maxDepth = depth
}

// Decode reads all the input and decodes it into the value pointed by v.
//
// See DecodeBytes.
func (d *Decoder) Decode(v interface{}) error {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	return decodeInto(data, v, d.maxDepth)
}

// DecodeValue reads all the input and decodes it as a value tree.
func (d *Decoder) DecodeValue() (Value, error) {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return nil, err
	}
	return decode(data, d.maxDepth)
}

// Encoder writes the bencode values to an output stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the canonical encoding of v to the stream.
//
// Nothing is written if v cannot be encoded.
func (e *Encoder) Encode(v interface{}) error {
	b, err := Encode(v)
	if err != nil {
		return err
	}

	_, err = e.w.Write(b)
	return err
}
