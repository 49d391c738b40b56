package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningDiacriticals is the Combining Diacritical Marks block.
var combiningDiacriticals = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// Normalize returns the comparison key of a word: lowercased, canonically
// decomposed, with combining diacritical marks removed. "Café" and "cafe"
// share a key.
func Normalize(word string) string {
	lower := strings.ToLower(word)
	// Transformers keep internal state; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningDiacriticals)))
	out, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return out
}
