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

// Package bencode implements the canonical encoding and decoding of bencode,
// the serialization format of BitTorrent, which has a similar API to
// the encoding/json package.
//
// The decoder only accepts the canonical form: the integers have no leading
// zeros and no "-0", the string lengths have no leading zeros, the dict keys
// are byte strings in the strictly ascending order, and the input is exactly
// one value. So the encoder and the decoder are the inverse of each other,
// and the encoded bytes of a value can be hashed, such as the info hash.
//
// The integers have the arbitrary precision. See Integer.
//
// There are two ways to decode the data. Decode returns the value tree,
// that's, Integer, ByteString, List and *Dictionary, and DecodeBytes
// decodes the data into a Go value by the reflection like encoding/json.
// Encode accepts both of them.
package bencode
