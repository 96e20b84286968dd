package query

import (
	"sort"
	"strings"
	"sync"

	"github.com/armon/go-radix"
)

// NameIndex provides O(k) prefix lookups over display names using a
// compressed trie (patricia tree), where k is the length of the prefix.
// It powers search-box completion; substring search stays predicate-side.
type NameIndex struct {
	tree *radix.Tree
	mu   sync.RWMutex
}

// NewNameIndex creates an empty display-name index.
func NewNameIndex() *NameIndex {
	return &NameIndex{tree: radix.New()}
}

// Insert adds a display name. Names are indexed case-insensitively; the
// original casing is kept as the stored value and returned by Suggest.
func (idx *NameIndex) Insert(name string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tree.Insert(strings.ToLower(name), name)
}

// Suggest returns up to limit display names starting with prefix
// (case-insensitive), in lexicographic order. A limit of 0 means no bound.
func (idx *NameIndex) Suggest(prefix string, limit int) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var results []string
	idx.tree.WalkPrefix(strings.ToLower(prefix), func(key string, value interface{}) bool {
		results = append(results, value.(string))
		return limit > 0 && len(results) >= limit
	})

	sort.Strings(results)
	return results
}

// Len returns the number of indexed names.
func (idx *NameIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Len()
}

// Clear drops all indexed names.
func (idx *NameIndex) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tree = radix.New()
}
