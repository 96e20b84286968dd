package store

import (
	"log/slog"
	"sync"
)

// Favorites is the persisted favorite-id set. The in-memory mirror is loaded
// once at startup and written through on every mutation.
type Favorites struct {
	mu    sync.RWMutex
	ids   map[string]bool
	order []string // insertion order, keeps the persisted document stable
	docs  *Documents
}

// NewFavorites loads the favorite set from the document store.
func NewFavorites(docs *Documents) (*Favorites, error) {
	f := &Favorites{
		ids:  make(map[string]bool),
		docs: docs,
	}
	var persisted []string
	if err := docs.load(favoritesFile, &persisted); err != nil {
		return nil, err
	}
	for _, id := range persisted {
		if !f.ids[id] {
			f.ids[id] = true
			f.order = append(f.order, id)
		}
	}
	return f, nil
}

// Contains reports favorite membership for an entry id.
func (f *Favorites) Contains(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ids[id]
}

// Add inserts an id into the set. Idempotent; reports whether it was added.
func (f *Favorites) Add(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ids[id] {
		return false
	}
	f.ids[id] = true
	f.order = append(f.order, id)
	f.persistLocked()
	return true
}

// Remove deletes an id from the set. Idempotent; reports whether it was removed.
func (f *Favorites) Remove(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ids[id] {
		return false
	}
	delete(f.ids, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	f.persistLocked()
	return true
}

// Toggle flips membership for an id and returns the new state.
func (f *Favorites) Toggle(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ids[id] {
		delete(f.ids, id)
		for i, existing := range f.order {
			if existing == id {
				f.order = append(f.order[:i], f.order[i+1:]...)
				break
			}
		}
		f.persistLocked()
		return false
	}
	f.ids[id] = true
	f.order = append(f.order, id)
	f.persistLocked()
	return true
}

// IDs returns the favorite ids in insertion order.
func (f *Favorites) IDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Len returns the number of favorites.
func (f *Favorites) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.order)
}

// Replace swaps the whole set, used by import.
func (f *Favorites) Replace(ids []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = make(map[string]bool, len(ids))
	f.order = f.order[:0]
	for _, id := range ids {
		if !f.ids[id] {
			f.ids[id] = true
			f.order = append(f.order, id)
		}
	}
	f.persistLocked()
}

func (f *Favorites) persistLocked() {
	if err := f.docs.save(favoritesFile, f.order); err != nil {
		slog.Error("Failed to persist favorites", "error", err)
	}
}
