package query

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/MaharajTanim/video-browser-pro/vbp/catalog"
)

// Engine wraps the pure projection with acceleration structures rebuilt on
// each snapshot change: attribute bitmaps for format/quality/favorite
// filters and a radix index for name completion. Projection results are
// identical to the plain Project function.
type Engine struct {
	mu      sync.RWMutex
	entries []*catalog.Entry
	bitmaps *AttributeBitmaps
	names   *NameIndex
}

// NewEngine creates an engine with no snapshot loaded.
func NewEngine() *Engine {
	return &Engine{names: NewNameIndex()}
}

// Reset rebuilds the acceleration structures for a new snapshot. Must be
// called after every catalog build or mutation and after favorite changes.
func (qe *Engine) Reset(entries []*catalog.Entry) {
	bitmaps := BuildBitmaps(entries)
	names := NewNameIndex()
	for _, e := range entries {
		names.Insert(e.DisplayName)
	}

	qe.mu.Lock()
	qe.entries = entries
	qe.bitmaps = bitmaps
	qe.names = names
	qe.mu.Unlock()

	slog.Debug("Query engine reset", "entries", len(entries))
}

// Project returns the ordered, filtered view for a spec using the bitmap
// candidates, then the residual predicates, then the sort.
func (qe *Engine) Project(spec Spec) []*catalog.Entry {
	qe.mu.RLock()
	entries := qe.entries
	bitmaps := qe.bitmaps
	qe.mu.RUnlock()

	if bitmaps == nil {
		return Project(entries, spec)
	}

	var playlist map[string]bool
	if spec.PlaylistIDs != nil {
		playlist = make(map[string]bool, len(spec.PlaylistIDs))
		for _, id := range spec.PlaylistIDs {
			playlist[id] = true
		}
	}
	search := strings.ToLower(spec.SearchText)

	candidates := bitmaps.Candidates(spec)
	out := make([]*catalog.Entry, 0, candidates.GetCardinality())
	it := candidates.Iterator()
	for it.HasNext() {
		e := entries[it.Next()]
		if search != "" && !strings.Contains(strings.ToLower(e.DisplayName), search) {
			continue
		}
		if playlist != nil && !playlist[e.ID] {
			continue
		}
		out = append(out, e)
	}

	Sort(out, spec.SortKey)
	return out
}

// Suggest completes a search-box prefix from the current snapshot's names.
func (qe *Engine) Suggest(prefix string, limit int) []string {
	qe.mu.RLock()
	names := qe.names
	qe.mu.RUnlock()
	return names.Suggest(prefix, limit)
}
