package suggest

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold lower-cases s. Both abbreviations and queries go through Fold before
// they are compared, so mixed-case keys in a user table still match.
func Fold(s string) string {
	if s == "" {
		return s
	}
	// A Caser keeps state between calls and must not be shared.
	return cases.Lower(language.Und).String(s)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
