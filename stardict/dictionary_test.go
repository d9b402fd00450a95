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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	dictzip "github.com/ianlewis/go-stardict"
)

// fixtureWord pairs a headword with its plain-text "m"-type meaning.
type fixtureWord struct {
	word    string
	meaning string
}

// writeStardictFixture builds a minimal, valid StarDict dictionary (single
// sametypesequence=m entry per word) under dir/name.{ifo,idx,dict[.dz]} and
// returns the .ifo path.
func writeStardictFixture(t *testing.T, dir, name string, words []fixtureWord, compressed bool) string {
	t.Helper()

	var dictBuf bytes.Buffer
	records := make([]idxRecord, 0, len(words))
	for _, w := range words {
		offset := uint64(dictBuf.Len())
		dictBuf.WriteString(w.meaning)
		records = append(records, idxRecord{
			word:   w.word,
			offset: offset,
			size:   uint32(len(w.meaning)),
		})
	}

	idxRaw := encodeIdxRecords(records, 32)
	base := filepath.Join(dir, name)

	if err := os.WriteFile(base+".idx", idxRaw, 0o644); err != nil {
		t.Fatalf("WriteFile idx: %v", err)
	}

	if compressed {
		f, err := os.Create(base + ".dict.dz")
		if err != nil {
			t.Fatalf("Create dict.dz: %v", err)
		}
		zw, err := dictzip.NewWriter(f)
		if err != nil {
			t.Fatalf("NewWriter: %v", err)
		}
		if _, err := zw.Write(dictBuf.Bytes()); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("Close zw: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close f: %v", err)
		}
	} else {
		if err := os.WriteFile(base+".dict", dictBuf.Bytes(), 0o644); err != nil {
			t.Fatalf("WriteFile dict: %v", err)
		}
	}

	ifo := fmt.Sprintf(
		"StarDict's dict ifo file\nbookname=%s\nwordcount=%d\nsametypesequence=m\nidxoffsetbits=32\nidxfilesize=%d\n",
		name, len(words), len(idxRaw),
	)
	ifoPath := base + ".ifo"
	if err := os.WriteFile(ifoPath, []byte(ifo), 0o644); err != nil {
		t.Fatalf("WriteFile ifo: %v", err)
	}
	return ifoPath
}

func TestStardictDictionary_loadLookupArticle(t *testing.T) {
	t.Parallel()

	words := []fixtureWord{
		{word: "alpha", meaning: "the first letter"},
		{word: "beta", meaning: "the second letter"},
	}
	ifoPath := writeStardictFixture(t, t.TempDir(), "greek", words, false)

	d := NewStardictDictionary(nil)
	if err := d.Load(ifoPath); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := d.Name(), "greek"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
	if got, want := d.WordCount(), 2; got != want {
		t.Errorf("WordCount() = %d, want %d", got, want)
	}

	gotLookup := d.Lookup("al", false, 10)
	if len(gotLookup) != 1 || gotLookup[0] != "alpha" {
		t.Errorf("Lookup(\"al\") = %v, want [alpha]", gotLookup)
	}

	gotArticle := d.Article("beta")
	wantArticle := "the second letter"
	if gotArticle != wantArticle {
		t.Errorf("Article(\"beta\") = %q, want %q", gotArticle, wantArticle)
	}

	if got := d.Article("missing"); got != "" {
		t.Errorf("Article(\"missing\") = %q, want empty", got)
	}
}

func TestStardictDictionary_compressedDictFile(t *testing.T) {
	t.Parallel()

	words := []fixtureWord{
		{word: "run", meaning: "to move fast on foot"},
	}
	ifoPath := writeStardictFixture(t, t.TempDir(), "verbs", words, true)

	d := NewStardictDictionary(nil)
	if err := d.Load(ifoPath); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := d.Article("run")
	want := "to move fast on foot"
	if got != want {
		t.Errorf("Article(\"run\") = %q, want %q", got, want)
	}
}

func TestStardictDictionary_cancel(t *testing.T) {
	t.Parallel()

	words := []fixtureWord{
		{word: "one", meaning: "1"},
		{word: "two", meaning: "2"},
	}
	ifoPath := writeStardictFixture(t, t.TempDir(), "nums", words, false)

	d := NewStardictDictionary(nil)
	if err := d.Load(ifoPath); err != nil {
		t.Fatalf("Load: %v", err)
	}

	d.Cancel()
	if !d.Cancelled() {
		t.Fatal("Cancelled() = false after Cancel()")
	}
	if got := d.Lookup("o", false, 10); got != nil {
		t.Errorf("Lookup() after Cancel() = %v, want nil", got)
	}

	d.ResetCancel()
	if d.Cancelled() {
		t.Fatal("Cancelled() = true after ResetCancel()")
	}
	if got := d.Lookup("o", false, 10); len(got) != 1 {
		t.Errorf("Lookup() after ResetCancel() = %v, want 1 result", got)
	}
}

func TestStardictDictionary_loadFailureLeavesUnloaded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ifoPath := filepath.Join(dir, "broken.ifo")
	if err := os.WriteFile(ifoPath, []byte("not a stardict file"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	d := NewStardictDictionary(nil)
	if err := d.Load(ifoPath); err == nil {
		t.Fatal("Load() of a malformed ifo succeeded, want error")
	}
	if got := d.Name(); got != "" {
		t.Errorf("Name() after failed Load() = %q, want empty", got)
	}
}
