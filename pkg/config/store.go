package config

import (
	"sync"

	"github.com/bastiangx/mathserve/internal/utils"
	"github.com/bastiangx/mathserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// ErrEmptyStartKey is returned when the start key is set to "".
var ErrEmptyStartKey = errors.New("start key must not be empty")

// Store implements suggest.ConfigStore on top of a config file.
//
// Every change replaces the snapshot and is written to disk straight away.
// An empty path keeps the store in memory.
type Store struct {
	mu   sync.RWMutex
	cfg  Config
	snap suggest.Snapshot
	path string
}

// NewStore returns a store serving cfg, persisted at path.
func NewStore(cfg *Config, path string) *Store {
	s := &Store{path: path}
	s.replace(*cfg)
	return s
}

// replace installs cfg and its snapshot. Caller holds mu or owns s.
func (s *Store) replace(cfg Config) {
	cfg.Mappings = append([]suggest.Entry(nil), cfg.Mappings...)
	s.cfg = cfg
	s.snap = cfg.Snapshot()
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// Config returns a copy of the current config.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	cfg.Mappings = append([]suggest.Entry(nil), s.cfg.Mappings...)
	return cfg
}

// Snapshot returns the current marker and table.
func (s *Store) Snapshot() suggest.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// SetStartMarker changes the start key and saves the config.
func (s *Store) SetStartMarker(marker string) error {
	if marker == "" {
		return ErrEmptyStartKey
	}
	return s.update(func(cfg *Config) bool {
		cfg.Trigger.StartKey = marker
		return true
	})
}

// SetMappings replaces the abbreviation table and saves the config.
func (s *Store) SetMappings(table *suggest.Table) error {
	return s.update(func(cfg *Config) bool {
		cfg.Mappings = table.Entries()
		return true
	})
}

// SetMapping adds or replaces one abbreviation.
func (s *Store) SetMapping(abbr, expansion string) error {
	if abbr == "" || expansion == "" {
		return errors.Newf("mapping needs both abbr and expansion, got %q -> %q", abbr, expansion)
	}
	return s.update(func(cfg *Config) bool {
		cfg.Mappings = suggest.NewTable(cfg.Mappings...).With(abbr, expansion).Entries()
		return true
	})
}

// DeleteMapping removes one abbreviation. It reports whether it existed.
func (s *Store) DeleteMapping(abbr string) (bool, error) {
	var existed bool
	err := s.update(func(cfg *Config) bool {
		table := suggest.NewTable(cfg.Mappings...)
		if _, existed = table.Lookup(abbr); existed {
			cfg.Mappings = table.Without(abbr).Entries()
		}
		return existed
	})
	return existed, err
}

// update applies fn to a copy of the config, installs it and saves it.
// Nothing happens when fn reports no change. The new values stay active
// when saving fails.
func (s *Store) update(fn func(cfg *Config) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg
	next.Mappings = append([]suggest.Entry(nil), s.cfg.Mappings...)
	if !fn(&next) {
		return nil
	}
	s.replace(next)

	if s.path == "" {
		return nil
	}
	if err := SaveConfig(&s.cfg, s.path); err != nil {
		log.Errorf("Config change not persisted: %v", err)
		return err
	}
	return nil
}

// Reload reads the config file again and swaps in the result.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	if !utils.FileExists(s.path) {
		return errors.Newf("config file %s is missing", s.path)
	}
	cfg, err := LoadConfig(s.path)
	if err != nil {
		return errors.Wrapf(err, "reloading %s", s.path)
	}

	s.mu.Lock()
	s.replace(*cfg)
	s.mu.Unlock()

	log.Debug("Config reloaded", "path", s.path, "mappings", len(cfg.Mappings), "start_key", cfg.Trigger.StartKey)
	return nil
}
