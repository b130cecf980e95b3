package suggest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fracExpansion = `\frac{numerator}{denominator}`

func sampleTable() *Table {
	return NewTable(
		Entry{Abbr: "fraction", Expansion: fracExpansion},
		Entry{Abbr: "sum", Expansion: `\sum_{i=1}^{n}`},
		Entry{Abbr: "alpha", Expansion: `\alpha`},
		Entry{Abbr: "double integral", Expansion: `\iint_{D}`},
		Entry{Abbr: "integral", Expansion: `\int_{a}^{b}`},
		Entry{Abbr: "rightarrow", Expansion: `\rightarrow`},
		Entry{Abbr: "Rightarrow", Expansion: `\Rightarrow`},
	)
}

func TestExtract(t *testing.T) {
	testCases := []struct {
		line     string
		cursor   int
		expected string
		desc     string
	}{
		{"solve ^frac", 11, "^frac", "Word at end of line"},
		{"solve ^FRAC", 11, "^frac", "Word is lower-cased"},
		{"solve ^frac more", 11, "^frac", "Text after cursor is ignored"},
		{"solve ^frac", 9, "^fr", "Cursor inside word"},
		{"solve ^frac", 8, "^f", "Cursor one past the marker"},
		{"solve ", 6, "", "Prefix ends with space"},
		{"", 0, "", "Empty line"},
		{"abc", 0, "", "Cursor at start"},
		{"abc", -3, "", "Negative cursor"},
		{"abc", 99, "abc", "Cursor past end is clamped"},
		{"a\t^sum", 6, "a\t^sum", "Tab does not split words"},
		{"x ∫ ^αβ", 7, "^αβ", "Cursor counts runes"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, Extract(tc.line, tc.cursor))
		})
	}
}

func TestEvaluate(t *testing.T) {
	table := sampleTable()

	t.Run("Token without marker", func(t *testing.T) {
		for _, token := range []string{"frac", "frac^", "", "$frac"} {
			_, ok := Evaluate(token, 10, "^", table)
			assert.False(t, ok, "token %q", token)
		}
	})

	t.Run("Lookup key shorter than two characters", func(t *testing.T) {
		everything := NewTable(Entry{Abbr: "a", Expansion: "A"}, Entry{Abbr: "alpha", Expansion: `\alpha`})
		for _, token := range []string{"^", "^a"} {
			_, ok := Evaluate(token, 2, "^", everything)
			assert.False(t, ok, "token %q", token)
		}
	})

	t.Run("Lookup key with no matching abbreviation", func(t *testing.T) {
		_, ok := Evaluate("^zzz", 4, "^", table)
		assert.False(t, ok)
	})

	t.Run("Substring match opens lookup", func(t *testing.T) {
		trigger, ok := Evaluate("^frac", 11, "^", table)
		require.True(t, ok)
		assert.Equal(t, "frac", trigger.Query)
		assert.Equal(t, Span{Start: 6, End: 11}, trigger.Span)
	})

	t.Run("Match inside the abbreviation", func(t *testing.T) {
		trigger, ok := Evaluate("^tegr", 5, "^", table)
		require.True(t, ok)
		assert.Equal(t, "tegr", trigger.Query)
		assert.Equal(t, 5, trigger.Span.End)
	})

	t.Run("Multi-character marker", func(t *testing.T) {
		trigger, ok := Evaluate(";;sum", 5, ";;", table)
		require.True(t, ok)
		assert.Equal(t, "sum", trigger.Query)
		assert.Equal(t, Span{Start: 0, End: 5}, trigger.Span)
	})

	t.Run("Mixed-case input is folded", func(t *testing.T) {
		trigger, ok := Evaluate("^ALPHA", 6, "^", table)
		require.True(t, ok)
		assert.Equal(t, "alpha", trigger.Query)
	})

	t.Run("Empty table never triggers", func(t *testing.T) {
		_, ok := Evaluate("^frac", 5, "^", NewTable())
		assert.False(t, ok)
		_, ok = Evaluate("^frac", 5, "^", nil)
		assert.False(t, ok)
	})
}

func TestMatch(t *testing.T) {
	table := sampleTable()

	t.Run("Order is preserved", func(t *testing.T) {
		assert.Equal(t, []string{"A", "C"}, Match("al", NewTable(
			Entry{Abbr: "alpha", Expansion: "A"},
			Entry{Abbr: "beta", Expansion: "B"},
			Entry{Abbr: "total", Expansion: "C"},
		)))
	})

	t.Run("Empty query matches everything", func(t *testing.T) {
		got := Match("", table)
		require.Len(t, got, table.Len())
		assert.Equal(t, fracExpansion, got[0])
	})

	t.Run("No match is an empty slice", func(t *testing.T) {
		got := Match("nothing", table)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Query is normalised to its last word", func(t *testing.T) {
		assert.Equal(t, []string{`\sum_{i=1}^{n}`}, Match("integral SUM", table))
	})

	t.Run("Substring anywhere in the key", func(t *testing.T) {
		assert.Equal(t, []string{`\iint_{D}`, `\int_{a}^{b}`}, Match("integral", table))
	})

	t.Run("Mixed-case keys match folded queries", func(t *testing.T) {
		assert.Equal(t, []string{`\rightarrow`, `\Rightarrow`}, Match("rightarrow", table))
	})
}

func TestResolveInsertion(t *testing.T) {
	testCases := []struct {
		line     string
		expected string
		desc     string
	}{
		{"solve ^frac", "$" + fracExpansion + "$", "Plain line is wrapped"},
		{"$solve ^frac", fracExpansion, "Line starting with $ is bare"},
		{"$x = ", fracExpansion, "Starts with $ but does not end with it"},
		{"x = ^frac $", fracExpansion, "Line ending with $"},
		{"", "$" + fracExpansion + "$", "Empty line is wrapped"},
		{"a $b$ ^frac", "$" + fracExpansion + "$", "Inner regions are not inspected"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, ResolveInsertion(fracExpansion, tc.line))
		})
	}
}

func TestEditApply(t *testing.T) {
	edit := Edit{Span: Span{Start: 6, End: 11}, Text: "$x$"}
	assert.Equal(t, "solve $x$", edit.Apply("solve ^frac"))
	assert.Equal(t, "solve $x$ now", edit.Apply("solve ^frac now"))
	assert.Equal(t, "ab$x$", Edit{Span: Span{Start: 2, End: 40}, Text: "$x$"}.Apply("abcd"))
}

type firstSink struct {
	seen []string
}

func (s *firstSink) Select(_ Trigger, candidates []string) (string, bool) {
	s.seen = candidates
	return candidates[0], true
}

type dismissSink struct{}

func (dismissSink) Select(Trigger, []string) (string, bool) { return "", false }

// End-to-end scenarios: trigger, match, select, insert.
func TestCompleterScenarios(t *testing.T) {
	table := NewTable(Entry{Abbr: "fraction", Expansion: fracExpansion})
	completer := NewCompleter(NewStaticStore(DefaultStartMarker, table))

	t.Run("Plain line wraps in delimiters", func(t *testing.T) {
		line := "solve ^frac"
		assert.Equal(t, "^frac", Extract(line, 11))

		trigger, ok := completer.Trigger(line, 11)
		require.True(t, ok)
		assert.Equal(t, "frac", trigger.Query)
		assert.Equal(t, Span{Start: 6, End: 11}, trigger.Span)
		assert.Equal(t, []string{fracExpansion}, completer.Suggest(trigger.Query, 0))

		sink := &firstSink{}
		edit, ok := completer.Complete(line, 11, sink)
		require.True(t, ok)
		assert.Equal(t, []string{fracExpansion}, sink.seen)
		assert.Equal(t, "$"+fracExpansion+"$", edit.Text)
		assert.Equal(t, "solve $"+fracExpansion+"$", edit.Apply(line))
	})

	t.Run("Line already in math inserts bare expansion", func(t *testing.T) {
		edit, ok := completer.Complete("$solve ^frac", 12, &firstSink{})
		require.True(t, ok)
		assert.Equal(t, fracExpansion, edit.Text)
	})

	t.Run("Single character key never triggers", func(t *testing.T) {
		sink := &firstSink{}
		_, ok := completer.Complete("^a", 2, sink)
		assert.False(t, ok)
		assert.Nil(t, sink.seen)
	})

	t.Run("Dismissed selection", func(t *testing.T) {
		_, ok := completer.Complete("solve ^frac", 11, dismissSink{})
		assert.False(t, ok)
	})

	t.Run("Marker change applies to the next event", func(t *testing.T) {
		store := NewStaticStore(DefaultStartMarker, table)
		c := NewCompleter(store)
		_, ok := c.Trigger("@frac", 5)
		assert.False(t, ok)

		require.NoError(t, store.SetStartMarker("@"))
		_, ok = c.Trigger("@frac", 5)
		assert.True(t, ok)
	})

	t.Run("Suggest honours limit", func(t *testing.T) {
		c := NewCompleter(NewStaticStore(DefaultStartMarker, sampleTable()))
		assert.Len(t, c.Suggest("", 3), 3)
		assert.Len(t, c.Suggest("", 0), 7)
	})
}

func TestTableSnapshots(t *testing.T) {
	base := sampleTable()

	t.Run("Repeated key keeps first position", func(t *testing.T) {
		table := NewTable(
			Entry{Abbr: "sum", Expansion: "old"},
			Entry{Abbr: "alpha", Expansion: `\alpha`},
			Entry{Abbr: "sum", Expansion: "new"},
		)
		require.Equal(t, 2, table.Len())
		assert.Equal(t, Entry{Abbr: "sum", Expansion: "new"}, table.Entries()[0])
	})

	t.Run("With and Without do not change the original", func(t *testing.T) {
		added := base.With("beta", `\beta`)
		removed := base.Without("sum")

		assert.Equal(t, 7, base.Len())
		assert.Equal(t, 8, added.Len())
		assert.Equal(t, 6, removed.Len())

		_, ok := base.Lookup("beta")
		assert.False(t, ok)
		exp, ok := added.Lookup("beta")
		require.True(t, ok)
		assert.Equal(t, `\beta`, exp)
		assert.False(t, removed.Contains("sum"))
		assert.True(t, base.Contains("sum"))
	})

	t.Run("Lookup is verbatim", func(t *testing.T) {
		_, ok := base.Lookup("RIGHTARROW")
		assert.False(t, ok)
		exp, ok := base.Lookup("Rightarrow")
		require.True(t, ok)
		assert.Equal(t, `\Rightarrow`, exp)
	})
}

func BenchmarkKeystroke(b *testing.B) {
	entries := make([]Entry, 0, 1000)
	for i := 0; i < 1000; i++ {
		entries = append(entries, Entry{Abbr: fmt.Sprintf("symbol%d", i), Expansion: fmt.Sprintf(`\sym{%d}`, i)})
	}
	completer := NewCompleter(NewStaticStore(DefaultStartMarker, NewTable(entries...)))
	lines := []string{"let ^sy", "let ^sym", "let ^symb", "let ^symbol9", "let ^bol12"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		line := lines[i%len(lines)]
		if trigger, ok := completer.Trigger(line, len(line)); ok {
			completer.Suggest(trigger.Query, 20)
		}
	}
}
