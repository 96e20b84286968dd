package store

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Tags is the persisted id-to-tags mapping. Tag order per id is insertion
// order with case-sensitive de-duplication. Entries for ids no longer in the
// catalog are retained so tags survive catalog reloads.
type Tags struct {
	mu   sync.RWMutex
	tags map[string][]string
	docs *Documents
}

// TagCount pairs a tag with its global occurrence count across all ids.
type TagCount struct {
	Tag   string
	Count int
}

// NewTags loads the tag mapping from the document store.
func NewTags(docs *Documents) (*Tags, error) {
	t := &Tags{
		tags: make(map[string][]string),
		docs: docs,
	}
	if err := docs.load(tagsFile, &t.tags); err != nil {
		return nil, err
	}
	return t, nil
}

// AddTags merges the given tags into an id's list. Tags are trimmed, empties
// dropped, and existing tags (case-sensitive) are not duplicated. Returns the
// number of tags actually added.
func (t *Tags) AddTags(id string, tags []string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing := make(map[string]bool, len(t.tags[id]))
	for _, tag := range t.tags[id] {
		existing[tag] = true
	}

	added := 0
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || existing[tag] {
			continue
		}
		t.tags[id] = append(t.tags[id], tag)
		existing[tag] = true
		added++
	}

	if added > 0 {
		t.persistLocked()
	}
	return added
}

// TagsFor returns the tag list for an id, in insertion order.
func (t *Tags) TagsFor(id string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.tags[id]))
	copy(out, t.tags[id])
	return out
}

// All returns a copy of the full id-to-tags mapping.
func (t *Tags) All() map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string][]string, len(t.tags))
	for id, tags := range t.tags {
		cp := make([]string, len(tags))
		copy(cp, tags)
		out[id] = cp
	}
	return out
}

// PopularTags ranks tags by descending global occurrence count across all
// ids. Ties keep first-encountered order; ids are walked in sorted order so
// the ranking is deterministic across sessions.
func (t *Tags) PopularTags(limit int) []TagCount {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.tags))
	for id := range t.tags {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	next := 0
	for _, id := range ids {
		for _, tag := range t.tags[id] {
			if _, seen := firstSeen[tag]; !seen {
				firstSeen[tag] = next
				next++
			}
			counts[tag]++
		}
	}

	ranked := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		ranked = append(ranked, TagCount{Tag: tag, Count: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Tag] < firstSeen[ranked[j].Tag]
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Replace swaps the whole mapping, used by import.
func (t *Tags) Replace(tags map[string][]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tags = make(map[string][]string, len(tags))
	for id, list := range tags {
		cp := make([]string, len(list))
		copy(cp, list)
		t.tags[id] = cp
	}
	t.persistLocked()
}

func (t *Tags) persistLocked() {
	if err := t.docs.save(tagsFile, t.tags); err != nil {
		slog.Error("Failed to persist tags", "error", err)
	}
}
