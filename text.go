package postalmap

import (
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalize trims, lowercases and collapses internal whitespace runs to a
// single space. It is the one normalization used for region aliases, grouping
// keys and search queries.
//
// strings.Fields splits on any Unicode whitespace, so tabs and non-breaking
// spaces in hand-edited data collapse the same way as plain spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(toLower(s)), " ")
}

// toLower converts a string to lowercase using the standard library.
//
// City names in the dataset are transliterated Somali, but a hand-edited
// dataset file can carry non-ASCII letters, so this stays Unicode-aware.
func toLower(s string) string {
	return strings.ToLower(s)
}

// toUpper converts a string to uppercase using the standard library.
// See toLower.
func toUpper(s string) string {
	return strings.ToUpper(s)
}

// newCollator returns a root-locale collator. Collators keep internal
// buffers and are not safe for concurrent use, so every sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und)
}

// foldAccents strips combining marks after NFD decomposition, so that
// "Cadaado" and "Cadáado" compare equal when ranking suggestions.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
