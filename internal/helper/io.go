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

package helper

import "io"

// CopyNBuffer copies n bytes from src to dst with the buffer buf.
//
// If src has fewer than n bytes, it returns the copied number and io.EOF.
func CopyNBuffer(dst io.Writer, src io.Reader, n int64, buf []byte) (int64, error) {
	written, err := io.CopyBuffer(dst, io.LimitReader(src, n), buf)
	switch {
	case written == n:
		return n, nil
	case err == nil:
		return written, io.EOF
	default:
		return written, err
	}
}
