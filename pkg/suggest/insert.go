package suggest

import "strings"

// MathDelimiter opens and closes an inline math region.
const MathDelimiter = "$"

// ResolveInsertion returns the text to insert for expansion on line.
//
// A line that starts or ends with MathDelimiter is taken to be inside math
// already and gets the bare expansion; any other line gets $expansion$.
// Only the first and last character of the line are checked, so lines with
// several separate $...$ regions can be misjudged.
func ResolveInsertion(expansion, line string) string {
	if strings.HasPrefix(line, MathDelimiter) || strings.HasSuffix(line, MathDelimiter) {
		return expansion
	}
	return MathDelimiter + expansion + MathDelimiter
}

// Edit replaces Span on a line with Text.
type Edit struct {
	Span Span
	Text string
}

// Apply returns line with the edit applied. Span bounds outside the line are
// clamped.
func (e Edit) Apply(line string) string {
	runes := []rune(line)
	start, end := clamp(e.Span.Start, len(runes)), clamp(e.Span.End, len(runes))
	if end < start {
		end = start
	}
	return string(runes[:start]) + e.Text + string(runes[end:])
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}
