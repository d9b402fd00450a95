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
	"encoding/binary"
	"fmt"
	"html"
	"log"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// XdxfToHTML converts one article entry's XDXF markup into HTML. Renderer
// calls it for type-'x' entries; [DefaultXdxfToHTML] is the built-in
// implementation but callers may inject their own.
type XdxfToHTML func(xdxf string) string

// Renderer turns a raw article blob (see LoadIndex/IndexEntry) into HTML,
// per the type-tagged framing rules of a StarDict .dict entry.
type Renderer struct {
	// Xdxf converts type-'x' entries. Defaults to [DefaultXdxfToHTML].
	Xdxf XdxfToHTML

	// LocaleEncoding decodes type-'l' entries. Defaults to
	// charmap.ISO8859_1, matching the StarDict reference implementation's
	// platform-default behavior for locale-encoded entries.
	LocaleEncoding encoding.Encoding

	// Warnf reports non-fatal problems (framing underflow, decode
	// failure) encountered while rendering. Defaults to log.Printf.
	Warnf func(format string, args ...any)
}

// NewRenderer returns a Renderer configured with its documented defaults.
func NewRenderer() *Renderer {
	return &Renderer{
		Xdxf:           DefaultXdxfToHTML,
		LocaleEncoding: charmap.ISO8859_1,
		Warnf:          log.Printf,
	}
}

type typedEntry struct {
	typ  byte
	data []byte
}

func isUpperType(t byte) bool { return t >= 'A' && t <= 'Z' }

// Render decodes blob into its typed entries according to sameTypeSequence
// (empty means every entry carries its own inline type byte) and renders
// each to HTML, concatenated in order.
//
// A framing underflow stops processing and returns whatever was rendered
// before the bad entry; it is reported through Warnf, never as an error,
// per §4.5.
func (r *Renderer) Render(blob []byte, sameTypeSequence string) string {
	warnf := r.Warnf
	if warnf == nil {
		warnf = log.Printf
	}

	var entries []typedEntry
	if sameTypeSequence != "" {
		entries = splitFixedSequence(blob, sameTypeSequence, warnf)
	} else {
		entries = splitInline(blob, warnf)
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(r.renderEntry(e, warnf))
	}
	return sb.String()
}

// splitFixedSequence frames blob using the ifo's declared sametypesequence:
// every type but the last is explicitly terminated/sized; the last consumes
// whatever remains.
func splitFixedSequence(blob []byte, seq string, warnf func(string, ...any)) []typedEntry {
	var entries []typedEntry
	pos := 0
	for i := 0; i < len(seq); i++ {
		t := seq[i]
		if i == len(seq)-1 {
			entries = append(entries, typedEntry{typ: t, data: blob[pos:]})
			break
		}
		if isUpperType(t) {
			if pos+4 > len(blob) {
				warnf("stardict: article framing underflow reading size for type %q", string(t))
				return entries
			}
			size := int(binary.BigEndian.Uint32(blob[pos : pos+4]))
			pos += 4
			if pos+size > len(blob) {
				warnf("stardict: article framing underflow reading %d bytes for type %q", size, string(t))
				return entries
			}
			entries = append(entries, typedEntry{typ: t, data: blob[pos : pos+size]})
			pos += size
			continue
		}
		nul := indexByte(blob[pos:], 0)
		if nul < 0 {
			warnf("stardict: article framing underflow: unterminated type %q", string(t))
			return entries
		}
		entries = append(entries, typedEntry{typ: t, data: blob[pos : pos+nul]})
		pos += nul + 1
	}
	return entries
}

// splitInline frames blob with every entry's type byte given inline, used
// when the ifo does not declare a sametypesequence.
func splitInline(blob []byte, warnf func(string, ...any)) []typedEntry {
	var entries []typedEntry
	pos := 0
	for pos < len(blob) {
		t := blob[pos]
		pos++
		if isUpperType(t) {
			if pos+4 > len(blob) {
				warnf("stardict: article framing underflow reading size for type %q", string(t))
				return entries
			}
			size := int(binary.BigEndian.Uint32(blob[pos : pos+4]))
			pos += 4
			if pos+size > len(blob) {
				warnf("stardict: article framing underflow reading %d bytes for type %q", size, string(t))
				return entries
			}
			entries = append(entries, typedEntry{typ: t, data: blob[pos : pos+size]})
			pos += size
			continue
		}
		nul := indexByte(blob[pos:], 0)
		if nul < 0 {
			warnf("stardict: article framing underflow: unterminated type %q", string(t))
			return entries
		}
		entries = append(entries, typedEntry{typ: t, data: blob[pos : pos+nul]})
		pos += nul + 1
	}
	return entries
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func (r *Renderer) renderEntry(e typedEntry, warnf func(string, ...any)) string {
	switch e.typ {
	case 'x':
		conv := r.Xdxf
		if conv == nil {
			conv = DefaultXdxfToHTML
		}
		return conv(string(e.data))
	case 'h', 'g':
		return string(e.data)
	case 'm':
		return plainMeaningHTML(string(e.data))
	case 'l':
		enc := r.LocaleEncoding
		if enc == nil {
			enc = charmap.ISO8859_1
		}
		decoded, err := enc.NewDecoder().Bytes(e.data)
		if err != nil {
			warnf("stardict: decoding locale-encoded entry: %v", err)
			decoded = e.data
		}
		return plainMeaningHTML(string(decoded))
	default:
		if isUpperType(e.typ) {
			return fmt.Sprintf("<b>Unsupported blob entry type '%c'.</b><br>", e.typ)
		}
		return fmt.Sprintf("<b>Unsupported textual entry type '%c': %s.</b><br>", e.typ, html.EscapeString(string(e.data)))
	}
}

// plainMeaningHTML implements the type-'m'/'l' rendering rule: strip \r,
// HTML-escape, then promote \t and \n to their HTML equivalents.
func plainMeaningHTML(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\t", "&emsp;")
	escaped = strings.ReplaceAll(escaped, "\n", "<br/>")
	return escaped
}
