package suggest

import "strings"

// MinQueryLength is the shortest lookup key that can open a suggestion list.
const MinQueryLength = 2

// DefaultStartMarker prefixes a word that should be looked up.
const DefaultStartMarker = "^"

// Span is a character range [Start, End) within one line.
type Span struct {
	Start int `msgpack:"s"`
	End   int `msgpack:"e"`
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Trigger describes an activated lookup: the folded key after the marker
// and the part of the line the chosen expansion will replace.
type Trigger struct {
	Query string
	Span  Span
}

// Evaluate decides whether token, which ends at cursor, should open a lookup.
//
// The token must start with marker, the rest of it must be at least
// MinQueryLength characters, and at least one abbreviation in table must
// contain it. Evaluate only checks that a match exists; Match builds the
// candidate list.
func Evaluate(token string, cursor int, marker string, table *Table) (Trigger, bool) {
	return evaluate(Fold(token), runeLen(token), cursor, marker, table)
}

// Detect runs Extract and Evaluate for a line with the cursor at cursor,
// using the marker and table from snap.
func Detect(line string, cursor int, snap Snapshot) (Trigger, bool) {
	if cursor < 0 {
		cursor = 0
	}
	if n := runeLen(line); cursor > n {
		cursor = n
	}
	raw := lastFragment(line, cursor)
	return evaluate(Fold(raw), runeLen(raw), cursor, snap.StartMarker, snap.Table)
}

func evaluate(token string, tokenLen, cursor int, marker string, table *Table) (Trigger, bool) {
	marker = Fold(marker)
	if !strings.HasPrefix(token, marker) {
		return Trigger{}, false
	}

	query := token[len(marker):]
	if runeLen(query) < MinQueryLength {
		return Trigger{}, false
	}
	if !table.Contains(query) {
		return Trigger{}, false
	}

	start := cursor - tokenLen
	if start < 0 {
		start = 0
	}
	return Trigger{
		Query: query,
		Span:  Span{Start: start, End: cursor},
	}, true
}
