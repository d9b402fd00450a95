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
	"fmt"
	"html"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	dictzip "github.com/ianlewis/go-stardict"
)

// Dictionary is the polymorphic contract the Controller fans queries out
// over. [StardictDictionary] is the only implementation today; the
// interface stays this small so a future format (XDXF, DSL) can plug in
// alongside it without touching Controller.
type Dictionary interface {
	// Load parses and opens every file belonging to the dictionary at
	// ifoPath. A failure at any step leaves the Dictionary in its
	// pre-Load, unloaded state.
	Load(ifoPath string) error

	Lookup(word string, suppressMultiforms bool, maxWords int) []string
	Article(word string) string

	Name() string
	Description() string
	WordCount() int

	// Cancel aborts in-flight and future Lookup/Article calls until
	// ResetCancel is called.
	Cancel()
	ResetCancel()
	Cancelled() bool
}

// articleSource is the minimal surface StardictDictionary needs over a
// `.dict` (plain, via *os.File) or `.dict.dz` (compressed, via
// [dictzip.Reader]) article store: an all-or-nothing ranged read, per
// §4.2's "never return a partial result" rule.
type articleSource interface {
	ReadRange(offset int64, size int) ([]byte, error)
	Close() error
}

// fileArticleSource adapts a plain *os.File to articleSource.
type fileArticleSource struct {
	f *os.File
}

func (s *fileArticleSource) ReadRange(offset int64, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, size)
	n, err := s.f.ReadAt(buf, offset)
	if n == size {
		return buf, nil
	}
	if err == nil {
		err = fmt.Errorf("short read: got %d of %d bytes", n, size)
	}
	return nil, fmt.Errorf("%w: reading article at offset %d: %w", ErrFormatMalformed, offset, err)
}

func (s *fileArticleSource) Close() error { return s.f.Close() }

// dictzipArticleSource adapts a dictzip.Reader, which decompresses over a
// live file handle, to articleSource, closing both together.
type dictzipArticleSource struct {
	f  *os.File
	zr *dictzip.Reader
}

func (s *dictzipArticleSource) ReadRange(offset int64, size int) ([]byte, error) {
	buf, err := s.zr.ReadRange(offset, int64(size))
	if err != nil {
		return nil, fmt.Errorf("%w: reading article at offset %d: %w", ErrFormatMalformed, offset, err)
	}
	return buf, nil
}

func (s *dictzipArticleSource) Close() error {
	zerr := s.zr.Close()
	ferr := s.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// StardictDictionary implements [Dictionary] over one `.ifo`/`.idx[.gz]`/
// `.dict[.dz]` file triple.
//
// mu guards ifo, index and src, including the article source's read
// state (cancelled is atomic and needs no lock): a dictzip.Reader is not
// safe for concurrent reads (it shares a single flate decoder and file
// cursor across calls), so concurrent
// Article calls on the same StardictDictionary serialize through mu, per
// the file-handle mutex model.
type StardictDictionary struct {
	renderer *Renderer

	mu    sync.Mutex
	ifo   *IfoRecord
	index *Index
	src   articleSource

	cancelled atomic.Bool
}

// NewStardictDictionary returns an unloaded StardictDictionary. renderer
// may be nil to use [NewRenderer]'s defaults.
func NewStardictDictionary(renderer *Renderer) *StardictDictionary {
	if renderer == nil {
		renderer = NewRenderer()
	}
	return &StardictDictionary{renderer: renderer}
}

// Load implements [Dictionary].
func (d *StardictDictionary) Load(ifoPath string) error {
	ifo, err := ParseIfo(ifoPath)
	if err != nil {
		return err
	}
	idx, err := LoadIndex(ifoPath, ifo)
	if err != nil {
		return err
	}
	src, err := openArticleSource(strings.TrimSuffix(ifoPath, ".ifo"))
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.src != nil {
		_ = d.src.Close()
	}
	d.ifo = ifo
	d.index = idx
	d.src = src
	return nil
}

func openArticleSource(base string) (articleSource, error) {
	if f, err := os.Open(base + ".dict"); err == nil {
		return &fileArticleSource{f: f}, nil
	}

	f, err := os.Open(base + ".dict.dz")
	if err != nil {
		return nil, fmt.Errorf("%w: opening dict file: %w", ErrIfoInvalid, err)
	}
	zr, err := dictzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrIfoInvalid, err)
	}
	return &dictzipArticleSource{f: f, zr: zr}, nil
}

// Lookup implements [Dictionary] by delegating to the loaded Index.
func (d *StardictDictionary) Lookup(word string, suppressMultiforms bool, maxWords int) []string {
	d.mu.Lock()
	idx := d.index
	d.mu.Unlock()
	if idx == nil {
		return nil
	}
	return idx.Lookup(word, suppressMultiforms, maxWords, d.Cancelled)
}

// Article implements [Dictionary]: every index entry filed under word's
// exact lower-cased form is read and rendered, concatenated with a
// "<br/><b>{word}</b>" separator between entries.
func (d *StardictDictionary) Article(word string) string {
	d.mu.Lock()
	idx := d.index
	renderer := d.renderer
	var seq string
	if d.ifo != nil {
		seq = d.ifo.SameTypeSequence
	}
	d.mu.Unlock()
	if idx == nil {
		return ""
	}

	entries := idx.Entries(strings.ToLower(word))
	if len(entries) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, e := range entries {
		if d.Cancelled() {
			break
		}
		if i > 0 {
			sb.WriteString("<br/><b>")
			sb.WriteString(html.EscapeString(word))
			sb.WriteString("</b>")
		}
		blob, err := d.readArticleBlob(e)
		if err != nil {
			continue
		}
		sb.WriteString(renderer.Render(blob, seq))
	}
	return sb.String()
}

func (d *StardictDictionary) readArticleBlob(e IndexEntry) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.src == nil {
		return nil, fmt.Errorf("%w: dictionary has no open article store", ErrFormatMalformed)
	}
	return d.src.ReadRange(int64(e.Offset), int(e.Size))
}

// Name implements [Dictionary].
func (d *StardictDictionary) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ifo == nil {
		return ""
	}
	return d.ifo.Name
}

// Description implements [Dictionary].
func (d *StardictDictionary) Description() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ifo == nil {
		return ""
	}
	return d.ifo.Description
}

// WordCount implements [Dictionary].
func (d *StardictDictionary) WordCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ifo == nil {
		return 0
	}
	return d.ifo.WordCount
}

// Cancel implements [Dictionary].
func (d *StardictDictionary) Cancel() { d.cancelled.Store(true) }

// ResetCancel implements [Dictionary].
func (d *StardictDictionary) ResetCancel() { d.cancelled.Store(false) }

// Cancelled implements [Dictionary].
func (d *StardictDictionary) Cancelled() bool { return d.cancelled.Load() }
