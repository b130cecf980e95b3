// Package suggest is the core: it decides when an abbreviation lookup opens, which expansions match it, and how the chosen one is inserted.
package suggest

// ICompleter defines the interface for abbreviation completion engines
type ICompleter interface {
	// Trigger reports whether the word ending at cursor opens a lookup
	Trigger(line string, cursor int) (Trigger, bool)

	// Suggest returns expansions matching query, at most limit when limit > 0
	Suggest(query string, limit int) []string

	// Insert resolves the replacement for the chosen expansion on line
	Insert(expansion, line string, span Span) Edit

	// Complete runs the whole pipeline and asks sink for the selection
	Complete(line string, cursor int, sink SuggestionSink) (Edit, bool)

	// Stats returns statistics about the loaded table
	Stats() map[string]int
}

// Snapshot is the configuration one event is evaluated against.
type Snapshot struct {
	StartMarker string
	Table       *Table
}

// ConfigStore hands out snapshots and applies updates by replacing them.
// An update is visible to the next Snapshot call, never to one in flight.
type ConfigStore interface {
	Snapshot() Snapshot
	SetStartMarker(marker string) error
	SetMappings(table *Table) error
}

// SuggestionSink shows candidates to the user and returns the chosen one.
// It returns false when the user dismisses the list.
type SuggestionSink interface {
	Select(trigger Trigger, candidates []string) (string, bool)
}
