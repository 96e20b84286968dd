package query

import (
	"sort"
	"strings"

	"github.com/MaharajTanim/video-browser-pro/vbp/catalog"
)

// SortKey selects the ordering of a projection.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByDate     SortKey = "date"
	SortBySize     SortKey = "size"
	SortByDuration SortKey = "duration"
)

// FilterAll is the wildcard value for format and quality filters.
const FilterAll = "all"

// Spec describes one projection of the catalog: every filter must hold for
// an entry to appear, and the sort key orders the survivors.
type Spec struct {
	SearchText    string
	FormatFilter  string // FilterAll or an extension, matched case-insensitively
	QualityFilter string // FilterAll or a quality bucket name
	FavoritesOnly bool
	PlaylistIDs   []string // nil when no manual playlist filter is active
	SortKey       SortKey
}

// Project is the pure projection function: given a snapshot and a spec it
// returns the ordered, filtered view. It holds no state and is cheap enough
// to re-run on every catalog or sidecar mutation.
func Project(entries []*catalog.Entry, spec Spec) []*catalog.Entry {
	var playlist map[string]bool
	if spec.PlaylistIDs != nil {
		playlist = make(map[string]bool, len(spec.PlaylistIDs))
		for _, id := range spec.PlaylistIDs {
			playlist[id] = true
		}
	}

	search := strings.ToLower(spec.SearchText)
	out := make([]*catalog.Entry, 0, len(entries))
	for _, e := range entries {
		if !matches(e, spec, search, playlist) {
			continue
		}
		out = append(out, e)
	}

	Sort(out, spec.SortKey)
	return out
}

func matches(e *catalog.Entry, spec Spec, search string, playlist map[string]bool) bool {
	if search != "" && !strings.Contains(strings.ToLower(e.DisplayName), search) {
		return false
	}
	if spec.FormatFilter != "" && spec.FormatFilter != FilterAll &&
		!strings.EqualFold(e.Extension, spec.FormatFilter) {
		return false
	}
	if spec.QualityFilter != "" && spec.QualityFilter != FilterAll &&
		string(e.Quality()) != spec.QualityFilter {
		return false
	}
	if spec.FavoritesOnly && !e.IsFavorite {
		return false
	}
	if playlist != nil && !playlist[e.ID] {
		return false
	}
	return true
}

// Sort orders entries in place by the given key. An unknown key leaves the
// input order untouched. Ties keep their relative input order.
func Sort(entries []*catalog.Entry, key SortKey) {
	switch key {
	case SortByName:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].DisplayName < entries[j].DisplayName
		})
	case SortByDate:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Meta.CreatedAt > entries[j].Meta.CreatedAt
		})
	case SortBySize:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Meta.SizeBytes > entries[j].Meta.SizeBytes
		})
	case SortByDuration:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Meta.DurationSeconds > entries[j].Meta.DurationSeconds
		})
	}
}
