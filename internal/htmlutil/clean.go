// Package htmlutil turns the page's HTML fragments into plain text for
// places that cannot carry markup, such as meta tags.
package htmlutil

import (
	"strings"

	"github.com/k3a/html2text"
)

// ToText converts HTML to plain text, decoding entities and dropping tags.
func ToText(s string) string {
	return html2text.HTML2Text(s)
}

// Summary converts s to a single line of text no longer than max runes,
// cutting at a word boundary and marking the cut with an ellipsis.
func Summary(s string, max int) string {
	text := strings.Join(strings.Fields(ToText(s)), " ")
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}

	cut := string(runes[:max-1])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
