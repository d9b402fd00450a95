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

package stardict

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func writeIfo(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.ifo")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestParseIfo(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		contents string
		want     *IfoRecord
		wantErr  error
	}{
		{
			name: "minimal valid",
			contents: "StarDict's dict ifo file\n" +
				"bookname=Test Dictionary\n" +
				"wordcount=3\n" +
				"idxfilesize=42\n",
			want: &IfoRecord{
				Name:          "Test Dictionary",
				WordCount:     3,
				IdxOffsetBits: 32,
				IdxFileSize:   42,
			},
		},
		{
			name: "full fields and 64-bit offsets",
			contents: "StarDict's dict ifo file\n" +
				"bookname=Big Dictionary\n" +
				"description=A big one\n" +
				"wordcount=100000\n" +
				"sametypesequence=m\n" +
				"idxoffsetbits=64\n" +
				"idxfilesize=123456\n",
			want: &IfoRecord{
				Name:             "Big Dictionary",
				Description:      "A big one",
				WordCount:        100000,
				SameTypeSequence: "m",
				IdxOffsetBits:    64,
				IdxFileSize:      123456,
			},
		},
		{
			name: "unrecognized idxoffsetbits value falls back to 32",
			contents: "StarDict's dict ifo file\n" +
				"bookname=X\n" +
				"idxoffsetbits=16\n" +
				"idxfilesize=1\n",
			want: &IfoRecord{
				Name:          "X",
				IdxOffsetBits: 32,
				IdxFileSize:   1,
			},
		},
		{
			name: "leading blank lines are skipped before the magic",
			contents: "\n\n   \n" +
				"StarDict's dict ifo file\n" +
				"bookname=X\n" +
				"idxfilesize=1\n",
			want: &IfoRecord{
				Name:          "X",
				IdxOffsetBits: 32,
				IdxFileSize:   1,
			},
		},
		{
			name:     "missing magic",
			contents: "bookname=X\nidxfilesize=1\n",
			wantErr:  ErrIfoInvalid,
		},
		{
			name:     "empty file",
			contents: "",
			wantErr:  ErrIfoInvalid,
		},
		{
			name: "missing bookname",
			contents: "StarDict's dict ifo file\n" +
				"idxfilesize=1\n",
			wantErr: ErrIfoInvalid,
		},
		{
			name: "missing idxfilesize",
			contents: "StarDict's dict ifo file\n" +
				"bookname=X\n",
			wantErr: ErrIfoInvalid,
		},
		{
			name: "zero idxfilesize",
			contents: "StarDict's dict ifo file\n" +
				"bookname=X\n" +
				"idxfilesize=0\n",
			wantErr: ErrIfoInvalid,
		},
		{
			name: "non-numeric wordcount",
			contents: "StarDict's dict ifo file\n" +
				"bookname=X\n" +
				"wordcount=abc\n" +
				"idxfilesize=1\n",
			wantErr: ErrIfoInvalid,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeIfo(t, tc.contents)
			got, err := ParseIfo(path)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("ParseIfo error = %v, want wrapping %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIfo: unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ParseIfo mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseIfo_missingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseIfo(filepath.Join(t.TempDir(), "does-not-exist.ifo"))
	if !errors.Is(err, ErrIfoInvalid) {
		t.Fatalf("ParseIfo error = %v, want wrapping ErrIfoInvalid", err)
	}
}
