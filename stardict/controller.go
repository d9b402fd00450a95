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
	"context"
	"fmt"
	"html"
	"io/fs"
	"log"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"golang.org/x/sync/errgroup"
)

// defaultMaxWords is the Lookup result cap used when a caller passes
// maxWords <= 0.
const defaultMaxWords = 100

// loadConcurrency and fanoutConcurrency bound how many dictionaries are
// loaded, or queried, at once.
const (
	loadConcurrency   = 8
	fanoutConcurrency = 8
)

// articleAnnotationRE strips a trailing pronunciation annotation like
// " [v.]" from an article query, per §4.7.
var articleAnnotationRE = regexp.MustCompile(`\s+\[.*\]\s*$`)

// Controller owns a set of loaded dictionaries and answers lookups and
// article requests fanned out across all of them.
//
// The zero Controller is not ready to use; construct one with
// [NewController]. A Controller is safe for concurrent use.
type Controller struct {
	// Events receives completion notifications for LoadDictionaries,
	// LookupAsync, and ArticleAsync. Set before calling any of those
	// methods; it is read without synchronization afterward.
	Events Events

	maxWords int

	// newDictionary constructs a fresh, unloaded Dictionary. It is a
	// field (rather than a direct call to NewStardictDictionary) so
	// tests can substitute a fake.
	newDictionary func() Dictionary

	mu           sync.Mutex
	dictionaries []Dictionary
	loaded       atomic.Bool
}

// NewController returns a Controller capping Lookup results at maxWords by
// default (callers may still pass a smaller or larger explicit cap to
// Lookup). maxWords <= 0 uses [defaultMaxWords].
func NewController(maxWords int) *Controller {
	if maxWords <= 0 {
		maxWords = defaultMaxWords
	}
	return &Controller{
		maxWords:      maxWords,
		newDictionary: func() Dictionary { return NewStardictDictionary(nil) },
	}
}

// Loaded reports whether LoadDictionaries has finished at least once.
func (c *Controller) Loaded() bool { return c.loaded.Load() }

// LoadDictionaries recursively enumerates every ".ifo" file (case
// insensitive) under paths and loads each as a dictionary, in the
// background. It returns immediately; completion is reported through
// Events.DictionariesLoaded.
//
// Loading is bounded-concurrency (see [loadConcurrency]) and best-effort:
// a dictionary that fails to parse or open is logged and skipped, and
// every other dictionary still loads. Canceling ctx stops scheduling new
// dictionary loads and further insertions into the result, but does not
// interrupt a Dictionary.Load call already in flight.
func (c *Controller) LoadDictionaries(ctx context.Context, paths []string) {
	go c.loadDictionaries(ctx, paths)
}

func (c *Controller) loadDictionaries(ctx context.Context, paths []string) {
	files := discoverIfoFiles(paths)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)

	var totalWords int
	for _, ifoPath := range files {
		ifoPath := ifoPath
		g.Go(func() error {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			dict := c.newDictionary()
			if err := dict.Load(ifoPath); err != nil {
				log.Printf("stardict: skipping %s: %v", ifoPath, err)
				return nil
			}
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			c.mu.Lock()
			c.dictionaries = append(c.dictionaries, dict)
			totalWords += dict.WordCount()
			c.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	c.loaded.Store(true)

	c.mu.Lock()
	n := len(c.dictionaries)
	c.mu.Unlock()
	c.Events.dictionariesLoaded(fmt.Sprintf("loaded %d dictionaries (%d words)", n, totalWords))
}

func discoverIfoFiles(paths []string) []string {
	var files []string
	for _, root := range paths {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".ifo") {
				files = append(files, path)
			}
			return nil
		})
	}
	return files
}

func (c *Controller) snapshotDictionaries() []Dictionary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Dictionary(nil), c.dictionaries...)
}

// Lookup normalizes word, fans the prefix query out to every loaded
// dictionary in parallel, and returns the merged, sorted, deduplicated
// result capped at maxWords (or the Controller's default if maxWords <=
// 0). It returns nil if the Controller hasn't finished loading or word
// normalizes to empty.
func (c *Controller) Lookup(word string, suppressMultiforms bool, maxWords int) []string {
	if !c.loaded.Load() {
		return nil
	}
	query := normalizeLookupQuery(word)
	if query == "" {
		return nil
	}
	if maxWords <= 0 {
		maxWords = c.maxWords
	}

	dicts := c.snapshotDictionaries()
	for _, d := range dicts {
		d.ResetCancel()
	}

	var mu sync.Mutex
	var merged []string
	g := new(errgroup.Group)
	g.SetLimit(fanoutConcurrency)
	for _, d := range dicts {
		d := d
		g.Go(func() error {
			res := d.Lookup(query, suppressMultiforms, maxWords)
			mu.Lock()
			merged = append(merged, res...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(merged)
	merged = dedupAdjacent(merged)
	if len(merged) > maxWords {
		merged = merged[:maxWords]
	}
	return merged
}

// LookupAsync runs Lookup in the background and reports the result through
// Events.WordListComplete.
func (c *Controller) LookupAsync(word string, suppressMultiforms bool, maxWords int) {
	go func() {
		c.Events.wordListComplete(c.Lookup(word, suppressMultiforms, maxWords))
	}()
}

// Article normalizes word, asks every loaded dictionary for its article
// text in parallel, and concatenates the non-empty results in dictionary
// order, separated by "<hr/>" and, when includeDictNames is true, preceded
// by an "<h4>{name}:</h4>" header.
func (c *Controller) Article(word string, includeDictNames bool) string {
	if !c.loaded.Load() {
		return ""
	}
	query := normalizeArticleQuery(word)
	if query == "" {
		return ""
	}

	dicts := c.snapshotDictionaries()
	for _, d := range dicts {
		d.ResetCancel()
	}

	results := make([]string, len(dicts))
	g := new(errgroup.Group)
	g.SetLimit(fanoutConcurrency)
	for i, d := range dicts {
		i, d := i, d
		g.Go(func() error {
			results[i] = d.Article(query)
			return nil
		})
	}
	_ = g.Wait()

	var sb strings.Builder
	first := true
	for i, article := range results {
		if article == "" {
			continue
		}
		if !first {
			sb.WriteString("<hr/>")
		}
		first = false
		if includeDictNames {
			sb.WriteString("<h4>")
			sb.WriteString(html.EscapeString(dicts[i].Name()))
			sb.WriteString(":</h4>")
		}
		sb.WriteString(article)
	}
	return sb.String()
}

// ArticleAsync runs Article in the background and reports the result
// through Events.ArticleComplete.
func (c *Controller) ArticleAsync(word string, includeDictNames bool) {
	go func() {
		c.Events.articleComplete(c.Article(word, includeDictNames))
	}()
}

// Cancel sets the cancellation flag on every loaded dictionary, aborting
// in-flight lookups and article builds at their next check.
func (c *Controller) Cancel() {
	for _, d := range c.snapshotDictionaries() {
		d.Cancel()
	}
}

// LoadedDictionaries returns a "{name} ({word_count})" summary for every
// loaded dictionary, or nil if LoadDictionaries hasn't finished.
func (c *Controller) LoadedDictionaries() []string {
	if !c.loaded.Load() {
		return nil
	}
	dicts := c.snapshotDictionaries()
	out := make([]string, 0, len(dicts))
	for _, d := range dicts {
		out = append(out, fmt.Sprintf("%s (%d)", d.Name(), d.WordCount()))
	}
	return out
}

func dedupAdjacent(ss []string) []string {
	if len(ss) == 0 {
		return ss
	}
	out := ss[:1]
	for _, s := range ss[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}

// normalizeLookupQuery lower-cases word, truncates at the first run of
// whitespace, then drops every remaining non-word rune.
func normalizeLookupQuery(word string) string {
	lower := strings.ToLower(word)
	if i := strings.IndexFunc(lower, unicode.IsSpace); i >= 0 {
		lower = lower[:i]
	}
	var sb strings.Builder
	for _, r := range lower {
		if isWordRune(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// normalizeArticleQuery lower-cases word and strips a trailing
// pronunciation annotation like " [v.]".
func normalizeArticleQuery(word string) string {
	return articleAnnotationRE.ReplaceAllString(strings.ToLower(word), "")
}
