// Package textnorm reduces text to the character set a Minitel-style
// terminal can display.
package textnorm

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Strip decomposes s (NFD) and drops every nonspacing combining mark,
// so "électricité" becomes "electricite". Runes without a canonical
// decomposition are returned unchanged.
func Strip(s string) string {
	if isASCII(s) {
		return s
	}
	// Transformers keep state between calls; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	// Neither transformer fails on string input.
	out, _, _ := transform.String(t, s)
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
