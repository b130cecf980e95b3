package suggest

import (
	"github.com/charmbracelet/log"
)

// StaticStore is a ConfigStore kept in memory only.
type StaticStore struct {
	snap Snapshot
}

// NewStaticStore returns a store holding marker and table.
func NewStaticStore(marker string, table *Table) *StaticStore {
	return &StaticStore{snap: Snapshot{StartMarker: marker, Table: table}}
}

func (s *StaticStore) Snapshot() Snapshot { return s.snap }

func (s *StaticStore) SetStartMarker(marker string) error {
	s.snap = Snapshot{StartMarker: marker, Table: s.snap.Table}
	return nil
}

func (s *StaticStore) SetMappings(table *Table) error {
	s.snap = Snapshot{StartMarker: s.snap.StartMarker, Table: table}
	return nil
}

// Completer runs the trigger, match and insert steps against the current
// configuration of a ConfigStore.
type Completer struct {
	store ConfigStore
}

// NewCompleter returns a Completer reading its configuration from store.
func NewCompleter(store ConfigStore) *Completer {
	return &Completer{store: store}
}

// Store returns the config store the completer reads from.
func (c *Completer) Store() ConfigStore {
	return c.store
}

func (c *Completer) Trigger(line string, cursor int) (Trigger, bool) {
	snap := c.store.Snapshot()
	trigger, ok := Detect(line, cursor, snap)
	if ok {
		log.Debug("Lookup triggered", "query", trigger.Query, "start", trigger.Span.Start, "end", trigger.Span.End)
	}
	return trigger, ok
}

func (c *Completer) Suggest(query string, limit int) []string {
	candidates := Match(query, c.store.Snapshot().Table)
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func (c *Completer) Insert(expansion, line string, span Span) Edit {
	return Edit{Span: span, Text: ResolveInsertion(expansion, line)}
}

// Complete takes one snapshot for the whole cycle, so a config change made
// while sink is waiting on the user does not affect this selection.
func (c *Completer) Complete(line string, cursor int, sink SuggestionSink) (Edit, bool) {
	snap := c.store.Snapshot()
	trigger, ok := Detect(line, cursor, snap)
	if !ok {
		return Edit{}, false
	}

	candidates := Match(trigger.Query, snap.Table)
	if len(candidates) == 0 {
		return Edit{}, false
	}

	chosen, ok := sink.Select(trigger, candidates)
	if !ok {
		log.Debug("Selection dismissed", "query", trigger.Query)
		return Edit{}, false
	}
	return c.Insert(chosen, line, trigger.Span), true
}

func (c *Completer) Stats() map[string]int {
	snap := c.store.Snapshot()
	return map[string]int{
		"mappings":       snap.Table.Len(),
		"markerLength":   runeLen(snap.StartMarker),
		"minQueryLength": MinQueryLength,
	}
}
