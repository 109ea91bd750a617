// Package sanitize reduces user submitted markup to plain text.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Text strips every tag from raw and returns the remaining text, trimmed.
// Script and style bodies and comments are dropped and entities are decoded.
// Decoding can expose encoded markup, so passes repeat until one changes
// nothing; a pass that changes its input never makes it longer.
func Text(raw string) string {
	out := strip(raw)
	for {
		next := strip(out)
		if next == out {
			return out
		}
		out = next
	}
}

func strip(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if isRawText(z) {
				skip++
			}
		case html.EndTagToken:
			if isRawText(z) && skip > 0 {
				skip--
			}
		}
	}
}

func isRawText(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style:
		return true
	}
	return false
}
