// Package catalog indexes the national postal reference table (SEPOMEX) by
// state and municipality.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"mxaddress/internal/address/keys"
	"mxaddress/internal/address/models"
)

// Row is one raw record of the postal reference table.
type Row struct {
	State        string
	Municipality string
	Neighborhood string
	PostalCode   string
}

// Source streams catalog rows. Returning an error from fn stops iteration.
type Source interface {
	Rows(ctx context.Context, fn func(Row) error) error
}

// Stats summarizes a loaded index.
type Stats struct {
	Loaded  bool `json:"loaded"`
	Keys    int  `json:"keys"`
	Entries int  `json:"entries"`
	Skipped int  `json:"skipped"`
}

type key struct {
	state        keys.Key
	municipality keys.Key
}

// Index maps (state, municipality) to its valid postal entries. The table is
// parsed at most once; after a successful Load it is read-only.
type Index struct {
	source Source
	logger *slog.Logger

	loadMu sync.Mutex

	mu      sync.RWMutex
	loaded  bool
	entries map[key][]models.PostalEntry
	stats   Stats
}

// Option configures an Index.
type Option func(*Index)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) {
		i.logger = logger
	}
}

// New creates an unloaded index over source.
func New(source Source, opts ...Option) *Index {
	i := &Index{
		source: source,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Load parses the source into the index. Concurrent callers block until the
// first load finishes; later calls are no-ops. A failed load leaves the index
// unloaded so a later call retries.
func (i *Index) Load(ctx context.Context) error {
	i.loadMu.Lock()
	defer i.loadMu.Unlock()

	if i.Loaded() {
		return nil
	}
	if i.source == nil {
		return errors.New("catalog source is required")
	}

	entries := make(map[key][]models.PostalEntry)
	seen := make(map[key]map[models.PostalEntry]struct{})
	var stats Stats

	err := i.source.Rows(ctx, func(r Row) error {
		entry, k, ok := parseRow(r)
		if !ok {
			stats.Skipped++
			return nil
		}
		if seen[k] == nil {
			seen[k] = make(map[models.PostalEntry]struct{})
		}
		if _, dup := seen[k][entry]; dup {
			return nil
		}
		seen[k][entry] = struct{}{}
		entries[k] = append(entries[k], entry)
		stats.Entries++
		return nil
	})
	if err != nil {
		return fmt.Errorf("load postal catalog: %w", err)
	}

	stats.Loaded = true
	stats.Keys = len(entries)

	i.mu.Lock()
	i.entries = entries
	i.stats = stats
	i.loaded = true
	i.mu.Unlock()

	i.logger.InfoContext(ctx, "postal catalog loaded",
		"keys", stats.Keys,
		"entries", stats.Entries,
		"skipped_rows", stats.Skipped,
	)
	return nil
}

// Loaded reports whether Load has completed successfully.
func (i *Index) Loaded() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.loaded
}

// Lookup returns the postal entries for a state and municipality. It returns
// nil when the key is unknown or the index is not loaded.
func (i *Index) Lookup(state, municipality string) []models.PostalEntry {
	k := key{state: keys.CanonicalState(state), municipality: keys.Normalize(municipality)}

	i.mu.RLock()
	defer i.mu.RUnlock()
	found := i.entries[k]
	if len(found) == 0 {
		return nil
	}
	out := make([]models.PostalEntry, len(found))
	copy(out, found)
	return out
}

// Stats returns counters for the loaded table.
func (i *Index) Stats() Stats {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.stats
}

func parseRow(r Row) (models.PostalEntry, key, bool) {
	state := strings.TrimSpace(r.State)
	municipality := strings.TrimSpace(r.Municipality)
	neighborhood := strings.ToUpper(strings.TrimSpace(r.Neighborhood))
	if state == "" || municipality == "" || neighborhood == "" {
		return models.PostalEntry{}, key{}, false
	}
	code, ok := keys.PostalCode(r.PostalCode)
	if !ok {
		return models.PostalEntry{}, key{}, false
	}
	k := key{state: keys.CanonicalState(state), municipality: keys.Normalize(municipality)}
	return models.PostalEntry{PostalCode: code, Neighborhood: neighborhood}, k, true
}
