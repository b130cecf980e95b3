package suggest

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Entry is a single abbreviation and the LaTeX fragment it expands to.
type Entry struct {
	Abbr      string `toml:"abbr" msgpack:"a"`
	Expansion string `toml:"expansion" msgpack:"x"`
}

// Table is an ordered abbreviation -> expansion mapping.
//
// A Table never changes after construction. With and Without build a new
// table, so a snapshot handed to an evaluation stays valid for its lifetime.
//
// Matching runs on folded keys: each entry is indexed under every suffix of
// its folded abbreviation, which turns substring containment into a prefix
// walk of the trie.
type Table struct {
	entries  []Entry
	position map[string]int
	suffixes *patricia.Trie
}

// NewTable builds a table from entries in order. A repeated abbreviation
// overwrites the earlier expansion and keeps the earlier position.
func NewTable(entries ...Entry) *Table {
	t := &Table{
		entries:  make([]Entry, 0, len(entries)),
		position: make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := t.position[e.Abbr]; ok {
			t.entries[i].Expansion = e.Expansion
			continue
		}
		t.position[e.Abbr] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.suffixes = patricia.NewTrie()
	for i, e := range t.entries {
		key := Fold(e.Abbr)
		for start := range key {
			t.addSuffix(key[start:], i)
		}
	}
}

// addSuffix records entry i under suffix. Several entries can share a
// suffix, so the trie item is the list of their positions.
func (t *Table) addSuffix(suffix string, i int) {
	p := patricia.Prefix(suffix)
	if item := t.suffixes.Get(p); item != nil {
		positions := item.([]int)
		if positions[len(positions)-1] == i {
			return
		}
		t.suffixes.Set(p, append(positions, i))
		return
	}
	t.suffixes.Insert(p, []int{i})
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the entries in table order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return []Entry{}
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Lookup returns the expansion stored for abbr, compared verbatim.
func (t *Table) Lookup(abbr string) (string, bool) {
	if t == nil {
		return "", false
	}
	i, ok := t.position[abbr]
	if !ok {
		return "", false
	}
	return t.entries[i].Expansion, true
}

// With returns a copy of t with abbr set to expansion.
func (t *Table) With(abbr, expansion string) *Table {
	return NewTable(append(t.Entries(), Entry{Abbr: abbr, Expansion: expansion})...)
}

// Without returns a copy of t with abbr removed.
func (t *Table) Without(abbr string) *Table {
	entries := t.Entries()
	kept := entries[:0]
	for _, e := range entries {
		if e.Abbr != abbr {
			kept = append(kept, e)
		}
	}
	return NewTable(kept...)
}

// Contains reports whether any folded abbreviation contains the folded query.
func (t *Table) Contains(query string) bool {
	if t.Len() == 0 {
		return false
	}
	q := Fold(query)
	if q == "" {
		return true
	}
	return t.suffixes.MatchSubtree(patricia.Prefix(q))
}

// Filter returns the entries whose folded abbreviation contains the folded
// query, in table order. An empty query matches every entry.
func (t *Table) Filter(query string) []Entry {
	if t.Len() == 0 {
		return []Entry{}
	}
	q := Fold(query)
	if q == "" {
		return t.Entries()
	}

	seen := make(map[int]struct{})
	err := t.suffixes.VisitSubtree(patricia.Prefix(q), func(_ patricia.Prefix, item patricia.Item) error {
		for _, i := range item.([]int) {
			seen[i] = struct{}{}
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting suffix index: %v", err)
		return []Entry{}
	}

	positions := make([]int, 0, len(seen))
	for i := range seen {
		positions = append(positions, i)
	}
	sort.Ints(positions)

	out := make([]Entry, len(positions))
	for n, i := range positions {
		out[n] = t.entries[i]
	}
	return out
}
