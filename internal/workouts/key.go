package workouts

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ExerciseKey is the normalized identity of an exercise name: diacritics
// stripped, lower-cased, whitespace collapsed. "Supíno  Reto" and
// "supino reto" share one key.
func ExerciseKey(name string) string {
	// transformers keep state, one chain per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
