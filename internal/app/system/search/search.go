// internal/app/system/search/search.go
package search

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxLen bounds the search text sent upstream, in runes.
const MaxLen = 100

var strict = bluemonday.StrictPolicy()

// Normalize cleans search text typed into a screen: markup is stripped,
// whitespace runs collapse to one space, and the result is trimmed and
// cut to MaxLen runes. Case is preserved; the API matches
// case-insensitively.
func Normalize(raw string) string {
	s := strict.Sanitize(raw)
	// StrictPolicy escapes what it keeps; the API wants plain text.
	s = html.UnescapeString(s)
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > MaxLen {
		s = string([]rune(s)[:MaxLen])
		s = strings.TrimSpace(s)
	}
	return s
}

// Empty-state texts used when a screen defines none of its own.
const (
	DefaultNoMatches = "No records match your search or filter."
	DefaultNoRecords = "Nothing has been recorded yet."
)

// EmptyMessage picks the empty-state text: noMatches when the listing is
// narrowed by a search or filter, noRecords otherwise.
func EmptyMessage(narrowed bool, noMatches, noRecords string) string {
	if narrowed {
		if noMatches == "" {
			return DefaultNoMatches
		}
		return noMatches
	}
	if noRecords == "" {
		return DefaultNoRecords
	}
	return noRecords
}
