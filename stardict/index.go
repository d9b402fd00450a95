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
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"

	dictzip "github.com/ianlewis/go-stardict"
)

// IndexEntry locates an article's bytes in the .dict/.dict.dz stream.
type IndexEntry struct {
	Offset uint64
	Size   uint32
}

// wordSplitRE splits a compound headword into tokens on any run of Unicode
// whitespace or punctuation, per the StarDict index's compound-key rule.
var wordSplitRE = regexp.MustCompile(`[\p{Z}\p{P}]+`)

// errLookupCancelled unwinds a patricia.Trie visitor early when the
// dictionary's cancellation flag is observed mid-walk. It never escapes
// Index.Lookup.
var errLookupCancelled = errors.New("lookup cancelled")

// Index is the in-memory, prefix-ordered multimap built from a StarDict
// .idx/.idx.gz file. Keys are lower-cased tokens, plus the case-preserved
// full headword of each compound entry (see insertHeadword). Multiple
// IndexEntry values may share a
// headword (compound-word splitting can produce duplicate tokens, and nothing
// stops a dictionary file from repeating a headword outright).
//
// An Index is immutable after LoadIndex returns and is safe for concurrent
// lookups from multiple goroutines.
type Index struct {
	trie       *patricia.Trie
	rawRecords int
}

func newIndex() *Index {
	return &Index{trie: patricia.NewTrie()}
}

// insert adds entry under key, appending to any entries already present
// under that exact key.
func (idx *Index) insert(key string, entry IndexEntry) {
	k := patricia.Prefix(key)
	if existing := idx.trie.Get(k); existing != nil {
		entries := existing.([]IndexEntry)
		idx.trie.Insert(k, append(entries, entry))
		return
	}
	idx.trie.Insert(k, []IndexEntry{entry})
}

// insertHeadword applies the §4.4 compound-key splitting rule: every
// non-empty, lower-cased token of the headword is inserted, and if the split
// produced two or more tokens the original, case-preserved headword is also
// inserted as its own key.
func (idx *Index) insertHeadword(headword string, entry IndexEntry) {
	parts := wordSplitRE.Split(headword, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, strings.ToLower(p))
		}
	}
	for _, tok := range tokens {
		idx.insert(tok, entry)
	}
	if len(tokens) >= 2 {
		idx.insert(headword, entry)
	}
}

// LoadIndex locates, decompresses, and parses the .idx/.idx.gz file
// belonging to ifoPath according to ifo's declared offset width and
// expected uncompressed size.
func LoadIndex(ifoPath string, ifo *IfoRecord) (*Index, error) {
	base := strings.TrimSuffix(ifoPath, ".ifo")

	raw, err := readIndexBytes(base)
	if err != nil {
		return nil, err
	}
	if uint64(len(raw)) != ifo.IdxFileSize {
		return nil, fmt.Errorf("%w: got %d bytes, ifo declares %d", ErrIndexMismatch, len(raw), ifo.IdxFileSize)
	}

	idx := newIndex()
	if err := idx.parse(raw, ifo.IdxOffsetBits); err != nil {
		return nil, err
	}
	if idx.rawRecords != ifo.WordCount {
		log.Printf("stardict: %s: ifo declares wordcount=%d but index contains %d records", ifoPath, ifo.WordCount, idx.rawRecords)
	}
	return idx, nil
}

func readIndexBytes(base string) ([]byte, error) {
	if data, err := os.ReadFile(base + ".idx"); err == nil {
		return data, nil
	}

	f, err := os.Open(base + ".idx.gz")
	if err != nil {
		return nil, fmt.Errorf("%w: opening index: %w", ErrIfoInvalid, err)
	}
	defer f.Close()

	data, err := dictzip.InflateAll(f)
	if err != nil || len(data) == 0 {
		return nil, fmt.Errorf("%w: inflating index: %w", ErrIndexMismatch, err)
	}
	return data, nil
}

// parse reads headword/offset/size triples out of raw until it's consumed.
// A NUL sentinel is appended to simplify the terminator scan, but any
// "final" record whose headword's NUL terminator falls beyond the original,
// pre-sentinel length is rejected as a truncated index rather than silently
// dropped — see the Open Question this resolves in SPEC_FULL.md.
func (idx *Index) parse(raw []byte, offsetBits int) error {
	originalLen := len(raw)
	buf := append(raw, 0)

	offSize := 4
	if offsetBits == 64 {
		offSize = 8
	}
	recTailSize := offSize + 4

	pos := 0
	for pos < originalLen {
		nulIdx := bytes.IndexByte(buf[pos:], 0)
		if nulIdx < 0 {
			// Unreachable: the appended sentinel guarantees a NUL exists.
			return fmt.Errorf("%w: missing headword terminator at offset %d", ErrIndexMismatch, pos)
		}
		headword := string(buf[pos : pos+nulIdx])
		pos += nulIdx + 1

		if pos+recTailSize > originalLen {
			return fmt.Errorf("%w: truncated record for %q", ErrIndexMismatch, headword)
		}

		var offset uint64
		if offSize == 8 {
			offset = binary.BigEndian.Uint64(buf[pos : pos+8])
		} else {
			offset = uint64(binary.BigEndian.Uint32(buf[pos : pos+4]))
		}
		pos += offSize

		size := binary.BigEndian.Uint32(buf[pos : pos+4])
		pos += 4

		idx.insertHeadword(headword, IndexEntry{Offset: offset, Size: size})
		idx.rawRecords++
	}
	return nil
}

// Lookup returns the sorted, prefix-matching keys of idx for word.
//
// If suppressMultiforms is true, keys whose entry shares an offset with an
// already-returned key are skipped. cancelled, if non-nil, is polled before
// the walk and at each matching key; when it reports true, Lookup returns
// whatever has been accumulated so far. maxResults <= 0 means unbounded.
func (idx *Index) Lookup(word string, suppressMultiforms bool, maxResults int, cancelled func() bool) []string {
	query := strings.ToLower(word)
	if query == "" {
		return nil
	}
	if cancelled != nil && cancelled() {
		return nil
	}

	type keyed struct {
		key     string
		entries []IndexEntry
	}
	var matches []keyed
	_ = idx.trie.VisitSubtree(patricia.Prefix(query), func(prefix patricia.Prefix, item patricia.Item) error {
		if cancelled != nil && cancelled() {
			return errLookupCancelled
		}
		entries, ok := item.([]IndexEntry)
		if !ok {
			// Internal branch node created by the trie's prefix
			// compression, never Insert-ed itself; skip it.
			return nil
		}
		matches = append(matches, keyed{key: string(prefix), entries: entries})
		return nil
	})

	sort.Slice(matches, func(i, j int) bool { return matches[i].key < matches[j].key })

	var result []string
	seenOffsets := make(map[uint64]bool)
	for _, m := range matches {
		if cancelled != nil && cancelled() {
			break
		}
		if suppressMultiforms {
			off := m.entries[0].Offset
			if seenOffsets[off] {
				continue
			}
			seenOffsets[off] = true
		}
		result = append(result, m.key)
		if maxResults > 0 && len(result) >= maxResults {
			break
		}
	}
	return result
}

// Entries returns the IndexEntry values stored under the exact, already
// lower-cased key. It never splits or tokenizes key.
func (idx *Index) Entries(key string) []IndexEntry {
	item := idx.trie.Get(patricia.Prefix(key))
	if item == nil {
		return nil
	}
	return item.([]IndexEntry)
}
