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
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// awaitLoaded polls c.Loaded() until it reports true or the deadline
// passes, since LoadDictionaries always runs in the background.
func awaitLoaded(t *testing.T, c *Controller) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !c.Loaded() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for Controller to finish loading")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestController_loadLookupArticle(t *testing.T) {
	t.Parallel()

	dir1 := t.TempDir()
	writeStardictFixture(t, dir1, "greek", []fixtureWord{
		{word: "alpha", meaning: "the first letter"},
		{word: "run", meaning: "greek meaning of run"},
	}, false)

	dir2 := t.TempDir()
	writeStardictFixture(t, dir2, "verbs", []fixtureWord{
		{word: "run", meaning: "to move fast on foot"},
	}, false)

	c := NewController(10)
	c.LoadDictionaries(context.Background(), []string{dir1, dir2})
	awaitLoaded(t, c)

	loaded := c.LoadedDictionaries()
	if len(loaded) != 2 {
		t.Fatalf("LoadedDictionaries() = %v, want 2 entries", loaded)
	}

	got := c.Lookup("al", false, 10)
	if diff := cmp.Diff([]string{"alpha"}, got); diff != "" {
		t.Errorf("Lookup(\"al\") mismatch (-want +got):\n%s", diff)
	}

	got = c.Lookup("run", false, 10)
	if diff := cmp.Diff([]string{"run"}, got); diff != "" {
		t.Errorf("Lookup(\"run\") mismatch (-want +got):\n%s", diff)
	}

	article := c.Article("run", true)
	if article == "" {
		t.Fatal("Article(\"run\", true) = empty, want both dictionaries' entries")
	}
	// Both dictionaries contributed, separated by <hr/>, with headers.
	wantSubstrings := []string{"<h4>", "<hr/>", "greek meaning of run", "to move fast on foot"}
	for _, want := range wantSubstrings {
		if !strings.Contains(article, want) {
			t.Errorf("Article(\"run\", true) = %q, want it to contain %q", article, want)
		}
	}
}

func TestController_notLoadedYet(t *testing.T) {
	t.Parallel()

	c := NewController(10)
	if got := c.Lookup("a", false, 10); got != nil {
		t.Errorf("Lookup() before loading = %v, want nil", got)
	}
	if got := c.Article("a", false); got != "" {
		t.Errorf("Article() before loading = %q, want empty", got)
	}
	if got := c.LoadedDictionaries(); got != nil {
		t.Errorf("LoadedDictionaries() before loading = %v, want nil", got)
	}
}

func TestController_badDictionarySkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStardictFixture(t, dir, "good", []fixtureWord{
		{word: "ok", meaning: "fine"},
	}, false)

	// A stray .ifo that won't parse; LoadDictionaries should skip it and
	// keep the good dictionary.
	badPath := filepath.Join(dir, "bad.ifo")
	if err := os.WriteFile(badPath, []byte("not valid"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := NewController(10)
	c.LoadDictionaries(context.Background(), []string{dir})
	awaitLoaded(t, c)

	loaded := c.LoadedDictionaries()
	if len(loaded) != 1 {
		t.Fatalf("LoadedDictionaries() = %v, want exactly 1 entry", loaded)
	}
}

func TestController_events(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStardictFixture(t, dir, "greek", []fixtureWord{
		{word: "alpha", meaning: "the first letter"},
	}, false)

	var mu sync.Mutex
	var loadedMsg string
	done := make(chan struct{})

	c := NewController(10)
	c.Events.DictionariesLoaded = func(msg string) {
		mu.Lock()
		loadedMsg = msg
		mu.Unlock()
		close(done)
	}
	c.LoadDictionaries(context.Background(), []string{dir})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for DictionariesLoaded event")
	}

	mu.Lock()
	defer mu.Unlock()
	if loadedMsg == "" {
		t.Error("DictionariesLoaded callback received empty message")
	}
}

func TestController_cancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStardictFixture(t, dir, "greek", []fixtureWord{
		{word: "alpha", meaning: "the first letter"},
	}, false)

	c := NewController(10)
	c.LoadDictionaries(context.Background(), []string{dir})
	awaitLoaded(t, c)

	c.Cancel()
	for _, d := range c.snapshotDictionaries() {
		if !d.Cancelled() {
			t.Error("dictionary not cancelled after Controller.Cancel()")
		}
	}
}
