package textutil

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// EditDistance returns the rune-level Levenshtein distance between a and b.
func EditDistance(a, b string) int {
	if a == b {
		return 0
	}
	return levenshtein.ComputeDistance(a, b)
}

// NormalizedDistance scales EditDistance by the longer input's rune count,
// giving a value in [0, 1]. Two empty strings are at distance 0.
func NormalizedDistance(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b), 1)
	return float64(EditDistance(a, b)) / float64(longest)
}
