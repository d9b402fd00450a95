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
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"
)

// xdxfSpanStyles maps an XDXF element name to the inline style of the
// <span> it is rewritten as. Names absent here (other than "kref" and "c",
// which are handled specially) pass through unrecognized.
var xdxfSpanStyles = map[string]string{
	"ex":   "color:#808080;",
	"k":    "font-weight:bold;",
	"abr":  "font-style:italic;color:#2E8B57;",
	"dtrn": "font-weight:bold;color:#400000;",
	"co":   "font-style:italic;color:#483D8B;",
	"tr":   "font-weight:bold;",
	"rref": "display:none;",
}

// DefaultXdxfToHTML is the built-in [XdxfToHTML] implementation. It
// rewrites the handful of XDXF dictionary-markup tags StarDict articles
// actually use into plain HTML:
//
//	ex, k, abr, dtrn, co, tr, rref -> <span style="...">
//	kref                           -> <a href="zdict?word=...">
//	c c="color"                    -> <font color="...">
//
// Every other element (including bare "<br/>", already substituted for "\n"
// before parsing) passes through unchanged. If the input isn't well-formed
// XML once wrapped in a single root element, the original text is returned
// unmodified, matching the reference implementation's fallback behavior.
func DefaultXdxfToHTML(in string) string {
	converted := strings.ReplaceAll(in, "\n", "<br/>")
	dec := xml.NewDecoder(strings.NewReader("<div>" + converted + "</div>"))
	dec.Strict = true
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var sb strings.Builder
	if err := xdxfRenderChildren(dec, &sb); err != nil {
		return in
	}
	return sb.String()
}

// xdxfRenderChildren writes tokens until it consumes the EndElement closing
// whatever element the caller is currently inside (or EOF, for the
// outermost call).
func xdxfRenderChildren(dec *xml.Decoder, sb *strings.Builder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := xdxfRenderElement(dec, sb, t); err != nil {
				return err
			}
		case xml.CharData:
			sb.WriteString(html.EscapeString(string(t)))
		case xml.EndElement:
			return nil
		}
	}
}

func xdxfRenderElement(dec *xml.Decoder, sb *strings.Builder, start xml.StartElement) error {
	name := start.Name.Local

	switch name {
	case "kref":
		text, err := xdxfCollectText(dec)
		if err != nil {
			return err
		}
		sb.WriteString(`<a href="zdict?word=`)
		sb.WriteString(url.QueryEscape(text))
		sb.WriteString(`">`)
		sb.WriteString(html.EscapeString(text))
		sb.WriteString(`</a>`)
		return nil
	case "c":
		sb.WriteString("<font")
		if color := xdxfAttr(start, "c"); color != "" {
			fmt.Fprintf(sb, ` color="%s"`, html.EscapeString(color))
		}
		sb.WriteString(">")
		if err := xdxfRenderChildren(dec, sb); err != nil {
			return err
		}
		sb.WriteString("</font>")
		return nil
	case "br":
		sb.WriteString("<br/>")
		return xdxfRenderChildren(dec, sb)
	}

	if style, ok := xdxfSpanStyles[name]; ok {
		fmt.Fprintf(sb, `<span style="%s">`, style)
		if err := xdxfRenderChildren(dec, sb); err != nil {
			return err
		}
		sb.WriteString("</span>")
		return nil
	}

	sb.WriteString("<" + name)
	for _, a := range start.Attr {
		fmt.Fprintf(sb, ` %s="%s"`, a.Name.Local, html.EscapeString(a.Value))
	}
	sb.WriteString(">")
	if err := xdxfRenderChildren(dec, sb); err != nil {
		return err
	}
	sb.WriteString("</" + name + ">")
	return nil
}

// xdxfCollectText flattens an element's descendant text nodes into a single
// string, mirroring QDomElement::text() in the reference implementation.
func xdxfCollectText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			if depth == 0 {
				return sb.String(), nil
			}
			depth--
		}
	}
}

func xdxfAttr(start xml.StartElement, local string) string {
	for _, a := range start.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
