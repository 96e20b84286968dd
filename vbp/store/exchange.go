package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// ExchangeDoc is the user-facing export/import document. All keys are
// optional; import replaces only the stores whose keys are present.
type ExchangeDoc struct {
	Favorites []string            `json:"favorites,omitempty"`
	Playlists []*Playlist         `json:"playlists,omitempty"`
	VideoTags map[string][]string `json:"videoTags,omitempty"`
}

// rawExchange distinguishes absent keys from present-but-empty ones.
type rawExchange struct {
	Favorites *[]string            `json:"favorites"`
	Playlists *[]*Playlist         `json:"playlists"`
	VideoTags *map[string][]string `json:"videoTags"`
}

// Export serializes the current sidecar state into an exchange document.
func Export(favs *Favorites, tags *Tags, playlists *Playlists) ([]byte, error) {
	doc := ExchangeDoc{
		Favorites: favs.IDs(),
		Playlists: playlists.List(),
		VideoTags: tags.All(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export document: %w", err)
	}
	return data, nil
}

// Import parses an exchange document and replaces the corresponding stores
// wholesale for whichever keys are present, leaving absent keys untouched.
// Malformed JSON is rejected before any store is modified.
func Import(data []byte, favs *Favorites, tags *Tags, playlists *Playlists) error {
	var raw rawExchange
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("malformed import document: %w", err)
	}

	if raw.Favorites != nil {
		favs.Replace(*raw.Favorites)
	}
	if raw.Playlists != nil {
		playlists.Replace(*raw.Playlists)
	}
	if raw.VideoTags != nil {
		tags.Replace(*raw.VideoTags)
	}

	slog.Info("Import completed",
		"favorites", raw.Favorites != nil,
		"playlists", raw.Playlists != nil,
		"tags", raw.VideoTags != nil)
	return nil
}
