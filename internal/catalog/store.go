package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Snapshot is one immutable catalog generation: the sorted items plus both
// fuzzy indexes, built together. Never mutated after construction.
type Snapshot struct {
	items     []Item
	phrase    *index
	tokenized *index
}

func newSnapshot(raws []RawItem) *Snapshot {
	items := make([]Item, len(raws))
	for i, raw := range raws {
		items[i] = newItem(raw)
	}

	// Shorter display names first, so substring matching prefers the more
	// specific short name when several items contain the search term.
	sort.SliceStable(items, func(i, j int) bool {
		return len(items[i].DisplayName) < len(items[j].DisplayName)
	})

	return &Snapshot{
		items:     items,
		phrase:    newIndex(items, indexOptions{minScore: phraseMinScore}),
		tokenized: newIndex(items, indexOptions{tokenize: true, minScore: tokenizedMinScore}),
	}
}

// Len returns the number of items in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.items)
}

// Store owns the current catalog snapshot and swaps it atomically on load.
type Store struct {
	source ItemSource
	logger *zerolog.Logger
	snap   atomic.Pointer[Snapshot]
}

// NewStore creates a store over the given item-list source. The catalog is
// empty until the first successful Load.
func NewStore(source ItemSource, logger *zerolog.Logger) *Store {
	return &Store{source: source, logger: logger}
}

// Load fetches the item list, builds a complete new snapshot and swaps it
// in. On error the previous snapshot, if any, stays live untouched. The
// caller decides whether a failed first load aborts startup.
func (s *Store) Load(ctx context.Context) error {
	s.logger.Info().Msg("fetching item list")

	raws, err := s.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("catalog load: %w", err)
	}

	snap := newSnapshot(raws)
	s.snap.Store(snap)

	s.logger.Info().Int("items", snap.Len()).Msg("catalog loaded")

	return nil
}

// Snapshot returns the current catalog generation, or false before the
// first successful load.
func (s *Store) Snapshot() (*Snapshot, bool) {
	snap := s.snap.Load()
	return snap, snap != nil
}

// Resolve resolves a search term against the current snapshot. Before the
// first load every term misses.
func (s *Store) Resolve(term string) (Item, bool) {
	snap, ok := s.Snapshot()
	if !ok {
		return Item{}, false
	}

	return snap.Resolve(term)
}
