package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Persisted document file names inside the data directory.
const (
	favoritesFile = "favorites.json"
	playlistsFile = "playlists.json"
	tagsFile      = "videotags.json"
)

// Common error types used across sidecar stores
var (
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrDuplicateName    = errors.New("a playlist with that name already exists")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrHandleNotFound   = errors.New("no directory handle saved under that name")
)

// Documents persists the three sidecar JSON documents in a data directory.
// Every mutation writes through; reads happen once at startup.
type Documents struct {
	dir string
}

// NewDocuments prepares a document store rooted at dir.
func NewDocuments(dir string) (*Documents, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Documents{dir: dir}, nil
}

// load reads a JSON document into v. A missing file is not an error; the
// store starts empty on first run.
func (d *Documents) load(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(d.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// save writes a JSON document atomically via a temp file rename.
func (d *Documents) save(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	target := filepath.Join(d.dir, name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	slog.Debug("Sidecar document saved", "file", name, "bytes", len(data))
	return nil
}
