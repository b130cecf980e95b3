package suggest

// Match returns the expansions whose abbreviation contains query, in table
// order. There is no ranking beyond that order.
//
// The query is normalised the same way as the word that opened the lookup:
// only its last space-separated word is used, lower-cased. An empty query
// matches everything, and no match gives an empty, non-nil slice.
func Match(query string, table *Table) []string {
	q := Extract(query, runeLen(query))
	entries := table.Filter(q)

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Expansion
	}
	return out
}
