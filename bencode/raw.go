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

// RawMessage is a raw encoded bencode value, which can be used
// to delay decoding or precompute an encoding.
type RawMessage []byte

var (
	_ Marshaler   = RawMessage(nil)
	_ Unmarshaler = new(RawMessage)
)

// MarshalBencode implements the interface Marshaler.
func (m RawMessage) MarshalBencode() ([]byte, error) {
	return m, nil
}

// UnmarshalBencode implements the interface Unmarshaler.
func (m *RawMessage) UnmarshalBencode(b []byte) error {
	*m = append((*m)[:0], b...)
	return nil
}
