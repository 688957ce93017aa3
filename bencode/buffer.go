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
	"math/big"
	"strconv"
)

const defaultBufferSize = 4096

// buffer is the growable output of a single encoding call.
//
// When a write does not fit, the capacity becomes cap*2+n, so that the
// buffer always has room for the write after growing once. A failed
// allocation panics in the runtime and is never reported as an EncodeError.
type buffer struct {
	buf []byte
}

func newBuffer() *buffer {
	return &buffer{buf: make([]byte, 0, defaultBufferSize)}
}

func (b *buffer) Len() int { return len(b.buf) }

func (b *buffer) grow(n int) {
	if len(b.buf)+n <= cap(b.buf) {
		return
	}

	buf := make([]byte, len(b.buf), cap(b.buf)*2+n)
	copy(buf, b.buf)
	b.buf = buf
}

func (b *buffer) Write(p []byte) (int, error) {
	b.grow(len(p))
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *buffer) WriteString(s string) (int, error) {
	b.grow(len(s))
	b.buf = append(b.buf, s...)
	return len(s), nil
}

func (b *buffer) WriteByte(c byte) error {
	b.grow(1)
	b.buf = append(b.buf, c)
	return nil
}

func (b *buffer) writeInt(v int64) {
	var scratch [20]byte
	b.Write(strconv.AppendInt(scratch[:0], v, 10))
}

func (b *buffer) writeUint(v uint64) {
	var scratch [20]byte
	b.Write(strconv.AppendUint(scratch[:0], v, 10))
}

func (b *buffer) writeBigInt(v *big.Int) {
	// log10(2) < 1/3, plus the sign and the rounding.
	b.grow(v.BitLen()/3 + 2)
	b.buf = v.Append(b.buf, 10)
}

// intoBytes returns the written bytes and resets the buffer.
func (b *buffer) intoBytes() []byte {
	buf := b.buf[:len(b.buf):len(b.buf)]
	b.buf = nil
	return buf
}
