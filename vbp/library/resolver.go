package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/MaharajTanim/video-browser-pro/vbp/catalog"
	"github.com/MaharajTanim/video-browser-pro/vbp/store"
)

// ignoreFileName holds per-folder exclusion patterns, gitignore syntax.
const ignoreFileName = ".vbp-ignore"

// ActionKind discriminates the two playlist resolution outcomes.
type ActionKind int

const (
	// ActionActivateFilter narrows the projection to a manual id list.
	ActionActivateFilter ActionKind = iota
	// ActionReplaceCatalog rebuilds the catalog from a saved folder.
	ActionReplaceCatalog
)

// Action is the resolved form of a playlist reference.
type Action struct {
	Kind     ActionKind
	Playlist *store.Playlist
	VideoIDs []string          // ActionActivateFilter
	Files    []catalog.FileRef // ActionReplaceCatalog
	Dir      string            // ActionReplaceCatalog: the resolved directory
}

// CreatePlaylist creates a manual playlist from an explicit id list.
func (l *Library) CreatePlaylist(name string, videoIDs []string) (*store.Playlist, error) {
	return l.playlists.CreateManual(name, videoIDs)
}

// SaveFolderPlaylist saves the given directory as a folder-backed playlist.
// The metadata goes into the playlist document; the directory handle is kept
// in the handle store keyed by playlist name, rejoined at load time.
func (l *Library) SaveFolderPlaylist(name, dir string) (*store.Playlist, error) {
	if err := checkDirAccess(dir); err != nil {
		return nil, err
	}

	playlist, err := l.playlists.CreateFolder(name, filepath.Base(dir))
	if err != nil {
		return nil, err
	}
	if err := l.handles.Put(playlist.Name, dir); err != nil {
		// Roll the metadata back so the two stores never disagree.
		l.playlists.Delete(playlist.ID)
		return nil, err
	}
	return playlist, nil
}

// DeletePlaylist removes a playlist and, for the folder-backed variant, its
// saved directory handle.
func (l *Library) DeletePlaylist(id string) error {
	playlist, err := l.playlists.Delete(id)
	if err != nil {
		return err
	}
	if playlist.FolderBacked() {
		if err := l.handles.Delete(playlist.Name); err != nil {
			slog.Warn("Failed to delete directory handle", "playlist", playlist.Name, "error", err)
		}
	}

	l.mu.Lock()
	if l.activePlaylist == id {
		l.activePlaylist = ""
	}
	l.mu.Unlock()
	return nil
}

// Playlists lists all saved playlists in creation order.
func (l *Library) Playlists() []*store.Playlist {
	return l.playlists.List()
}

// Resolve maps a playlist reference onto the action it implies without
// executing it: manual playlists become a projection filter, folder-backed
// playlists become a catalog rebuild. A revoked or missing directory handle
// resolves to ErrPermissionDenied and the catalog is left untouched.
func (l *Library) Resolve(id string) (*Action, error) {
	playlist, err := l.playlists.Get(id)
	if err != nil {
		return nil, err
	}

	if !playlist.FolderBacked() {
		ids := make([]string, len(playlist.VideoIDs))
		copy(ids, playlist.VideoIDs)
		return &Action{
			Kind:     ActionActivateFilter,
			Playlist: playlist,
			VideoIDs: ids,
		}, nil
	}

	dir, err := l.handles.Get(playlist.Name)
	if err != nil {
		if errors.Is(err, store.ErrHandleNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, err
	}
	if err := checkDirAccess(dir); err != nil {
		return nil, err
	}

	files, err := ScanFolder(dir)
	if err != nil {
		return nil, err
	}
	return &Action{
		Kind:     ActionReplaceCatalog,
		Playlist: playlist,
		Files:    files,
		Dir:      dir,
	}, nil
}

// LoadPlaylist resolves a playlist and applies the resulting action: either
// activating the manual filter or replacing the catalog from the saved
// folder. On ActionReplaceCatalog the filter state resets with the catalog.
func (l *Library) LoadPlaylist(ctx context.Context, id string) (*Action, error) {
	action, err := l.Resolve(id)
	if err != nil {
		return nil, err
	}

	switch action.Kind {
	case ActionActivateFilter:
		l.mu.Lock()
		l.activePlaylist = id
		l.mu.Unlock()
	case ActionReplaceCatalog:
		if _, err := l.replaceCatalog(ctx, action.Dir, action.Files); err != nil {
			return nil, err
		}
	}
	return action, nil
}

// ClearPlaylistFilter returns to "no active playlist" without touching the
// catalog.
func (l *Library) ClearPlaylistFilter() {
	l.mu.Lock()
	l.activePlaylist = ""
	l.mu.Unlock()
}

// ActivePlaylist returns the synthetic id of the active manual playlist
// filter, empty when none is active.
func (l *Library) ActivePlaylist() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activePlaylist
}

// ScanFolder enumerates a single directory level and returns file references
// for entries carrying a whitelisted video extension. Sub-directories and
// non-video entries are silently skipped; a .vbp-ignore file in the folder
// excludes matching names.
func ScanFolder(dir string) ([]catalog.FileRef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	ignored := loadIgnorePatterns(dir)

	files := make([]catalog.FileRef, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !catalog.IsVideoFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if ignored != nil && ignored.MatchesPath(path) {
			slog.Debug("Ignoring file", "path", path)
			continue
		}

		info, err := entry.Info()
		if err != nil {
			slog.Warn("Error getting file info", "name", entry.Name(), "error", err)
			continue
		}
		files = append(files, catalog.FileRef{
			Path:    path,
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	slog.Debug("Folder scan completed", "dir", dir, "videos", len(files))
	return files, nil
}

// loadIgnorePatterns compiles the folder's ignore file if one exists.
func loadIgnorePatterns(dir string) *ignore.GitIgnore {
	ignorePath := filepath.Join(dir, ignoreFileName)
	if _, err := os.Stat(ignorePath); err != nil {
		return nil
	}
	ignored, err := ignore.CompileIgnoreFile(ignorePath)
	if err != nil {
		slog.Warn("Failed to compile ignore file", "path", ignorePath, "error", err)
		return nil
	}
	return ignored
}

// checkDirAccess probes the directory capability: the path must exist, be a
// directory and be readable. Anything else is surfaced as permission denial
// so the caller can prompt for re-selection.
func checkDirAccess(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return ErrPermissionDenied
	}
	if !info.IsDir() {
		return ErrPermissionDenied
	}
	if _, err := os.ReadDir(dir); err != nil {
		return ErrPermissionDenied
	}
	return nil
}
