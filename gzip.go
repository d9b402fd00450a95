// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dictzip

import (
	"compress/gzip"
	"fmt"
	"io"
)

// inflateBufSize is the size of the scratch buffer used by InflateAll. It
// mirrors the small fixed buffer the StarDict reference implementation uses
// when it whole-buffer inflates a plain (non-dictzip) gzip stream, such as a
// compressed index file.
const inflateBufSize = 1024

// InflateAll decompresses an entire ordinary gzip stream (not a dictzip
// stream; no random access) and returns the decompressed bytes.
//
// This is meant for small inputs like a gzipped StarDict .idx.gz index file,
// not for `.dict.dz` article stores, which should use [NewReader] instead
// for random access.
//
// On any error reading the gzip header or inflating the body, InflateAll
// returns an empty, non-nil byte slice rather than a partial result; callers
// should treat an empty return as failure regardless of whether an error is
// also returned.
func InflateAll(r io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return []byte{}, fmt.Errorf("%w: %w", errDictzip, err)
	}
	defer gz.Close()

	out := make([]byte, 0, inflateBufSize)
	buf := make([]byte, inflateBufSize)
	for {
		n, err := gz.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return []byte{}, fmt.Errorf("%w: inflating: %w", errDictzip, err)
		}
	}
}
