package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// glyphReplacer maps characters recognizers confuse with the full-width bar.
var glyphReplacer = strings.NewReplacer("丨", "｜")

// Clean trims s, collapses every whitespace run to a single space, replaces
// look-alike glyphs, and composes the result to NFC.
func Clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return norm.NFC.String(glyphReplacer.Replace(s))
}
