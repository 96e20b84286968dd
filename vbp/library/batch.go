package library

import (
	"errors"
	"log/slog"
)

// ErrEmptySelection rejects destructive batch operations with nothing selected.
var ErrEmptySelection = errors.New("no entries selected")

// Select adds entry ids to the active selection. Unknown ids are accepted;
// batch operations simply find no matching catalog entry for them.
func (l *Library) Select(ids ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		l.selection[id] = true
	}
}

// Deselect removes entry ids from the active selection.
func (l *Library) Deselect(ids ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		delete(l.selection, id)
	}
}

// ClearSelection empties the active selection, e.g. on batch-mode toggle.
func (l *Library) ClearSelection() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selection = make(map[string]bool)
}

// Selection returns the selected ids. Order is not significant.
func (l *Library) Selection() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.selection))
	for id := range l.selection {
		out = append(out, id)
	}
	return out
}

// BatchFavorite adds every selected id to the favorite set and re-syncs the
// mirrored flags. Idempotent; a no-op on an empty selection. Returns the
// number of ids newly added.
func (l *Library) BatchFavorite() int {
	ids := l.Selection()
	added := 0
	for _, id := range ids {
		if l.favorites.Add(id) {
			added++
		}
	}
	if len(ids) > 0 {
		l.catalog.RefreshFavorites(l.favorites)
		l.queries.Reset(l.catalog.Entries())
	}
	slog.Debug("Batch favorite completed", "selected", len(ids), "added", added)
	return added
}

// BatchUnfavorite removes every selected id from the favorite set and
// re-syncs the mirrored flags. Idempotent; a no-op on an empty selection.
// Returns the number of ids removed.
func (l *Library) BatchUnfavorite() int {
	ids := l.Selection()
	removed := 0
	for _, id := range ids {
		if l.favorites.Remove(id) {
			removed++
		}
	}
	if len(ids) > 0 {
		l.catalog.RefreshFavorites(l.favorites)
		l.queries.Reset(l.catalog.Entries())
	}
	slog.Debug("Batch unfavorite completed", "selected", len(ids), "removed", removed)
	return removed
}

// BatchTag applies the tags to every selected id. A no-op on an empty
// selection. Returns the total number of tag additions.
func (l *Library) BatchTag(tags []string) int {
	added := 0
	for _, id := range l.Selection() {
		added += l.tags.AddTags(id, tags)
	}
	return added
}

// BatchDelete removes the selected entries from the catalog and clears the
// selection. Sidecar state for the removed ids is retained, so tags and
// favorite membership come back if the same files are reloaded. An empty
// selection is refused rather than silently succeeding; the confirmation
// gate for the destructive action is the caller's responsibility.
func (l *Library) BatchDelete() (int, error) {
	ids := l.Selection()
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}

	removed := l.catalog.RemoveEntries(ids)
	l.ClearSelection()
	l.queries.Reset(l.catalog.Entries())

	slog.Info("Batch delete completed", "selected", len(ids), "removed", removed)
	return removed, nil
}
