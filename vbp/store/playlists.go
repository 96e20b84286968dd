package store

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Playlist is a named collection of videos. Two variants exist: a manual
// playlist carries an explicit id list, a folder-backed playlist carries the
// name of a saved directory whose handle lives in the handle store.
//
// The ID is a synthetic identifier generated at creation; all load and delete
// references use it instead of a positional index.
type Playlist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	VideoIDs   []string `json:"videoIds,omitempty"`
	FolderName string   `json:"folderName,omitempty"`
	SavedAt    int64    `json:"savedAt,omitempty"` // epoch milliseconds
}

// FolderBacked reports whether membership is implicit in a saved directory.
func (p *Playlist) FolderBacked() bool {
	return p.FolderName != ""
}

// Playlists is the persisted named playlist collection. Names are unique.
type Playlists struct {
	mu    sync.RWMutex
	items []*Playlist
	docs  *Documents
}

// NewPlaylists loads the playlist collection from the document store.
func NewPlaylists(docs *Documents) (*Playlists, error) {
	p := &Playlists{docs: docs}
	if err := docs.load(playlistsFile, &p.items); err != nil {
		return nil, err
	}
	// Older documents may predate synthetic ids; assign on load. Manual
	// playlists with no videos persist without the videoIds key; restore the
	// empty list so they stay distinguishable from folder-backed playlists
	// and still act as a filter.
	assigned := false
	for _, item := range p.items {
		if item.ID == "" {
			item.ID = uuid.NewString()
			assigned = true
		}
		if !item.FolderBacked() && item.VideoIDs == nil {
			item.VideoIDs = []string{}
		}
	}
	if assigned {
		p.persistLocked()
	}
	return p, nil
}

// CreateManual creates a manual playlist from an explicit id list.
func (p *Playlists) CreateManual(name string, videoIDs []string) (*Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.findByNameLocked(name) != nil {
		return nil, ErrDuplicateName
	}

	ids := make([]string, len(videoIDs))
	copy(ids, videoIDs)
	playlist := &Playlist{
		ID:       uuid.NewString(),
		Name:     name,
		VideoIDs: ids,
	}
	p.items = append(p.items, playlist)
	p.persistLocked()

	slog.Info("Playlist created", "name", name, "videos", len(ids))
	return playlist, nil
}

// CreateFolder creates a folder-backed playlist. The directory handle itself
// is persisted separately in the handle store, keyed by playlist name.
func (p *Playlists) CreateFolder(name, folderName string) (*Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.findByNameLocked(name) != nil {
		return nil, ErrDuplicateName
	}

	playlist := &Playlist{
		ID:         uuid.NewString(),
		Name:       name,
		FolderName: folderName,
		SavedAt:    time.Now().UnixMilli(),
	}
	p.items = append(p.items, playlist)
	p.persistLocked()

	slog.Info("Folder playlist created", "name", name, "folder", folderName)
	return playlist, nil
}

// Get returns the playlist with the given synthetic id.
func (p *Playlists) Get(id string) (*Playlist, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, item := range p.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, ErrPlaylistNotFound
}

// Delete removes the playlist with the given synthetic id.
func (p *Playlists) Delete(id string) (*Playlist, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, item := range p.items {
		if item.ID == id {
			p.items = append(p.items[:i], p.items[i+1:]...)
			p.persistLocked()
			slog.Info("Playlist deleted", "name", item.Name)
			return item, nil
		}
	}
	return nil, ErrPlaylistNotFound
}

// List returns the playlists in creation order.
func (p *Playlists) List() []*Playlist {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Playlist, len(p.items))
	copy(out, p.items)
	return out
}

// Replace swaps the whole collection, used by import. Playlists arriving
// without synthetic ids get one assigned.
func (p *Playlists) Replace(items []*Playlist) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = make([]*Playlist, 0, len(items))
	for _, item := range items {
		cp := *item
		if cp.ID == "" {
			cp.ID = uuid.NewString()
		}
		if !cp.FolderBacked() && cp.VideoIDs == nil {
			cp.VideoIDs = []string{}
		}
		p.items = append(p.items, &cp)
	}
	p.persistLocked()
}

func (p *Playlists) findByNameLocked(name string) *Playlist {
	for _, item := range p.items {
		if item.Name == name {
			return item
		}
	}
	return nil
}

func (p *Playlists) persistLocked() {
	if err := p.docs.save(playlistsFile, p.items); err != nil {
		slog.Error("Failed to persist playlists", "error", err)
	}
}
