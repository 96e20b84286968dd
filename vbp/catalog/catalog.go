package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// Common error types used across catalog operations
var (
	ErrBuildSuperseded = errors.New("build superseded by a newer build")
	ErrEntryNotFound   = errors.New("entry not found in catalog")
)

// Deriver turns a raw file reference into a catalog entry. Implementations
// must never fail a file outright: on extraction errors they return a
// degraded entry alongside the error so the build can keep it.
type Deriver interface {
	Derive(ctx context.Context, ref FileRef) (*Entry, error)
}

// FavoriteLookup answers favorite membership for entry annotation.
type FavoriteLookup interface {
	Contains(id string) bool
}

// Catalog is the authoritative in-memory collection of video entries for the
// currently loaded source. A build replaces the snapshot wholesale; mutation
// operations act on the current snapshot in place.
type Catalog struct {
	mu      sync.RWMutex
	entries []*Entry
	byID    map[string]*Entry

	buildSeq   atomic.Uint64 // issued to each build
	appliedSeq uint64        // guarded by mu; last build that replaced the snapshot

	deriver Deriver
	workers int
}

// New creates a catalog that derives entries through the given deriver with
// at most workers concurrent extractions per build.
func New(deriver Deriver, workers int) *Catalog {
	if workers <= 0 {
		workers = 4
	}
	return &Catalog{
		byID:    make(map[string]*Entry),
		deriver: deriver,
		workers: workers,
	}
}

// Build derives entries for all files and replaces the snapshot once every
// extraction in the batch has settled. Extractions for distinct files fan out
// concurrently; the catalog is never observable in a partially built state.
//
// Concurrent builds may race: each build gets a monotonic sequence
// number and only the newest is allowed to install its result. A slower,
// older build that finishes after a newer one returns ErrBuildSuperseded and
// its result is discarded rather than merged. The installed sequence number
// is returned so callers can guard their own post-build bookkeeping against
// the same race.
func (c *Catalog) Build(ctx context.Context, files []FileRef, favs FavoriteLookup) (int, uint64, error) {
	gen := c.buildSeq.Add(1)
	start := time.Now()

	entries := make([]*Entry, len(files))
	var degraded atomic.Int64

	p := pool.New().WithMaxGoroutines(c.workers).WithContext(ctx)
	for i, ref := range files {
		p.Go(func(ctx context.Context) error {
			entry, err := c.deriver.Derive(ctx, ref)
			if err != nil {
				// Extraction failure yields a degraded entry, never a hole.
				degraded.Add(1)
				slog.Warn("Metadata extraction failed, keeping degraded entry",
					"file", ref.Name,
					"error", err)
				if entry == nil {
					entry = NewEntry(ref)
				}
			}
			if favs != nil {
				entry.IsFavorite = favs.Contains(entry.ID)
			}
			entries[i] = entry
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return 0, gen, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < c.appliedSeq {
		slog.Warn("Discarding stale build result",
			"build", gen,
			"applied", c.appliedSeq)
		return 0, gen, ErrBuildSuperseded
	}
	c.appliedSeq = gen
	c.entries = entries
	c.byID = make(map[string]*Entry, len(entries))
	for _, e := range entries {
		c.byID[e.ID] = e
	}

	slog.Info("Catalog build completed",
		"build", gen,
		"entries", len(entries),
		"degraded", degraded.Load(),
		"duration", time.Since(start))

	return len(entries), gen, nil
}

// Generation returns the sequence number of the last installed build.
func (c *Catalog) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.appliedSeq
}

// Entries returns the current snapshot in build order. The returned slice is
// a copy; the entries themselves are shared and must not be mutated by
// callers outside the catalog's own operations.
func (c *Catalog) Entries() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Get returns the entry with the given id, if present in the snapshot.
func (c *Catalog) Get(id string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	return e, ok
}

// Len returns the number of entries in the current snapshot.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// SetFavorite updates the mirrored favorite flag on the matching entry.
// The flag is derived state; the favorite store stays authoritative.
func (c *Catalog) SetFavorite(id string, favorite bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byID[id]
	if !ok {
		return ErrEntryNotFound
	}
	e.IsFavorite = favorite
	return nil
}

// RefreshFavorites recomputes the mirrored favorite flag on every entry from
// the favorite store. Used after bulk favorite mutations and import.
func (c *Catalog) RefreshFavorites(favs FavoriteLookup) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		e.IsFavorite = favs.Contains(e.ID)
	}
}

// RemoveEntries deletes the matching entries from the snapshot. Sidecar state
// for the removed ids is deliberately untouched; tags and favorite membership
// survive for a later reload of the same files. Returns the number removed.
func (c *Catalog) RemoveEntries(ids []string) int {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.entries[:0]
	removed := 0
	for _, e := range c.entries {
		if drop[e.ID] {
			delete(c.byID, e.ID)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept
	return removed
}
