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

// Events holds the Controller's completion callbacks. Every field is
// optional; a nil callback is simply not invoked. All callbacks run on
// whatever background goroutine produced the result — never the goroutine
// that called the triggering Controller method — so a callback that needs
// to touch caller state must do its own synchronization or context
// marshaling.
type Events struct {
	// DictionariesLoaded fires once, after LoadDictionaries finishes
	// enumerating and loading every search path, with a human-readable
	// "loaded N dictionaries (M words)" message.
	DictionariesLoaded func(message string)

	// WordListComplete fires at the end of LookupAsync with the merged,
	// sorted, deduplicated result.
	WordListComplete func(words []string)

	// ArticleComplete fires at the end of ArticleAsync with the
	// rendered HTML.
	ArticleComplete func(html string)
}

func (e Events) dictionariesLoaded(message string) {
	if e.DictionariesLoaded != nil {
		e.DictionariesLoaded(message)
	}
}

func (e Events) wordListComplete(words []string) {
	if e.WordListComplete != nil {
		e.WordListComplete(words)
	}
}

func (e Events) articleComplete(html string) {
	if e.ArticleComplete != nil {
		e.ArticleComplete(html)
	}
}
