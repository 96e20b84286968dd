package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/tursodatabase/go-libsql"
)

// HandleStore persists directory handles keyed by playlist name, separate
// from the JSON playlist metadata. Handles are capability references, not
// plain data: a stored path is re-checked against the filesystem when the
// playlist is resolved, and a failed check surfaces as permission denial
// rather than a silent empty catalog.
type HandleStore struct {
	db *sql.DB
}

// NewHandleStore opens or initializes the handle database at path.
func NewHandleStore(path string) (*HandleStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create handle store directory: %w", err)
	}

	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open handle store: %w", err)
	}

	h := &HandleStore{db: db}
	if err := h.init(); err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("Handle store opened", "path", path)
	return h, nil
}

// init sets up the handles table.
func (h *HandleStore) init() error {
	_, err := h.db.Exec(`CREATE TABLE IF NOT EXISTS handles (
		name TEXT PRIMARY KEY UNIQUE,
		dir_path TEXT NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create handles table: %w", err)
	}
	return nil
}

// Put saves or replaces the directory handle for a playlist name.
func (h *HandleStore) Put(name, dirPath string) error {
	_, err := h.db.Exec(
		"INSERT INTO handles (name, dir_path) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET dir_path = excluded.dir_path",
		name, dirPath)
	if err != nil {
		return fmt.Errorf("failed to save handle for %s: %w", name, err)
	}
	return nil
}

// Get retrieves the directory path saved under a playlist name.
func (h *HandleStore) Get(name string) (string, error) {
	var dirPath string
	err := h.db.QueryRow("SELECT dir_path FROM handles WHERE name = ?", name).Scan(&dirPath)
	if err == sql.ErrNoRows {
		return "", ErrHandleNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load handle for %s: %w", name, err)
	}
	return dirPath, nil
}

// Delete removes the handle saved under a playlist name. Deleting a missing
// handle is a no-op.
func (h *HandleStore) Delete(name string) error {
	_, err := h.db.Exec("DELETE FROM handles WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete handle for %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying database.
func (h *HandleStore) Close() error {
	return h.db.Close()
}
