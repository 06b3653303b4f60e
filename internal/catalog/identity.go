package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize collapses a free-form name into its comparison form: case-folded
// with runs of whitespace reduced to single spaces. This is the only
// transformation applied during identity matching; there is no fuzzy match.
func Normalize(raw string) string {
	folded := cases.Fold().String(raw)
	return strings.Join(strings.Fields(folded), " ")
}

// KeyFor derives the stable catalog key for a brand and model. The key is the
// normalized identity with spaces replaced by hyphens, so "Make Noise" +
// "Maths" and "make  noise maths" collapse to the same key.
func KeyFor(parts ...string) string {
	joined := Normalize(strings.Join(parts, " "))
	return strings.ReplaceAll(joined, " ", "-")
}
