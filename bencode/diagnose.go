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
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// diagnoseMaxBytes is the maximum number of the bytes of a binary string
// printed by Diagnose.
const diagnoseMaxBytes = 32

// Diagnose decodes the data and returns the human-readable notation of it.
//
// The printable strings are quoted like Go, and others are printed
// as h'...' in hex, which is truncated if longer than 32 bytes.
func Diagnose(data []byte) (string, error) {
	v, err := Decode(data)
	if err != nil {
		return "", err
	}
	return DiagnoseValue(v), nil
}

// DiagnoseValue returns the human-readable notation of the value tree.
func DiagnoseValue(v Value) string {
	var b strings.Builder
	diagnose(&b, v, 0)
	return b.String()
}

func diagnose(b *strings.Builder, v Value, indent int) {
	switch v := v.(type) {
	case Integer:
		b.WriteString(v.String())

	case ByteString:
		diagnoseBytes(b, v)

	case List:
		if len(v) == 0 {
			b.WriteString("[]")
			return
		}

		b.WriteString("[\n")
		for i, item := range v {
			writeIndent(b, indent+1)
			diagnose(b, item, indent+1)
			if i < len(v)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, indent)
		b.WriteByte(']')

	case *Dictionary:
		if v.Len() == 0 {
			b.WriteString("{}")
			return
		}

		b.WriteString("{\n")
		last := v.Len() - 1
		for i, e := range v.entries {
			writeIndent(b, indent+1)
			diagnoseBytes(b, e.Key)
			b.WriteString(": ")
			diagnose(b, e.Value, indent+1)
			if i < last {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, indent)
		b.WriteByte('}')

	default:
		b.WriteString("nil")
	}
}

func writeIndent(b *strings.Builder, n int) {
	for ; n > 0; n-- {
		b.WriteString("  ")
	}
}

func isPrintable(s []byte) bool {
	if !utf8.Valid(s) {
		return false
	}

	for _, r := range string(s) {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

func diagnoseBytes(b *strings.Builder, s []byte) {
	if isPrintable(s) {
		b.WriteString(strconv.Quote(string(s)))
		return
	}

	b.WriteString("h'")
	if len(s) <= diagnoseMaxBytes {
		b.WriteString(hex.EncodeToString(s))
		b.WriteByte('\'')
		return
	}

	b.WriteString(hex.EncodeToString(s[:diagnoseMaxBytes]))
	b.WriteString("...' (")
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteString(" bytes)")
}
