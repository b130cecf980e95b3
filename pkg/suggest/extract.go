package suggest

import "strings"

// Extract returns the lower-cased word that ends at cursor.
//
// Only the text before the cursor is looked at, and words are split on the
// space character alone, so a tab stays part of the word. The cursor counts
// characters (runes) and is clamped into the line. When the text before the
// cursor ends with a space the word is empty.
func Extract(line string, cursor int) string {
	return Fold(lastFragment(line, cursor))
}

// lastFragment is Extract without the case folding. Spans are measured on
// it because folding can change the length of some runes.
func lastFragment(line string, cursor int) string {
	prefix := before(line, cursor)
	if prefix == "" {
		return ""
	}
	if i := strings.LastIndexByte(prefix, ' '); i >= 0 {
		return prefix[i+1:]
	}
	return prefix
}

// before returns the first cursor runes of line.
func before(line string, cursor int) string {
	if cursor <= 0 {
		return ""
	}
	n := 0
	for i := range line {
		if n == cursor {
			return line[:i]
		}
		n++
	}
	return line
}
