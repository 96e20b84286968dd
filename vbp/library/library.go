// Package library wires the catalog, sidecar stores, metadata deriver and
// query engine into a single process-scoped engine instance. The presentation
// layer dispatches commands into this facade and renders whatever the
// projections return; the facade holds no event-loop or rendering dependency.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ZanzyTHEbar/assert-lib"

	"github.com/MaharajTanim/video-browser-pro/vbp/catalog"
	"github.com/MaharajTanim/video-browser-pro/vbp/config"
	"github.com/MaharajTanim/video-browser-pro/vbp/media"
	"github.com/MaharajTanim/video-browser-pro/vbp/query"
	"github.com/MaharajTanim/video-browser-pro/vbp/store"
)

// Common error types used across library operations
var (
	ErrPermissionDenied = errors.New("folder access denied")
	ErrNoCurrentEntry   = errors.New("no current entry selected")
)

// Library is the video library state engine: the authoritative catalog, the
// persisted sidecar stores and the query projections behind one mutation
// surface.
type Library struct {
	config  *config.Config
	catalog *catalog.Catalog
	queries *query.Engine

	favorites *store.Favorites
	tags      *store.Tags
	playlists *store.Playlists
	handles   *store.HandleStore

	thumbs media.Thumbnailer

	assertHandler *assert.AssertHandler

	mu             sync.Mutex
	selection      map[string]bool
	currentID      string
	activePlaylist string // synthetic playlist id, empty when no filter active
	sourceDir      string // directory backing the current catalog, if any

	watcher *Watcher
	stale   atomic.Bool
}

// New creates a library engine from configuration and an injected metadata
// deriver. The deriver is a collaborator so tests and embedders can stub
// extraction; NewDefault wires the ffprobe/ffmpeg implementation.
func New(cfg *config.Config, deriver catalog.Deriver, thumbs media.Thumbnailer) (*Library, error) {
	docs, err := store.NewDocuments(cfg.Library.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	favorites, err := store.NewFavorites(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	tags, err := store.NewTags(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	playlists, err := store.NewPlaylists(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlists: %w", err)
	}
	handles, err := store.NewHandleStore(cfg.Library.HandleDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open handle store: %w", err)
	}

	return &Library{
		config:        cfg,
		catalog:       catalog.New(deriver, cfg.Library.WorkerCount),
		queries:       query.NewEngine(),
		favorites:     favorites,
		tags:          tags,
		playlists:     playlists,
		handles:       handles,
		thumbs:        thumbs,
		assertHandler: assert.NewAssertHandler(),
		selection:     make(map[string]bool),
	}, nil
}

// NewDefault creates a library engine with the ffprobe-backed deriver from
// the media configuration.
func NewDefault(cfg *config.Config) (*Library, error) {
	prober := media.NewFFprobe(cfg.Media.FFprobePath, cfg.Media.ProbeTimeout())
	thumbs := media.NewFFmpeg(cfg.Media.FFmpegPath, cfg.Media.ProbeTimeout())
	deriver, err := media.NewDeriver(prober, thumbs, cfg.Media.ThumbnailDir)
	if err != nil {
		return nil, err
	}
	return New(cfg, deriver, thumbs)
}

// LoadFolder enumerates a directory (single level, video extensions only) and
// rebuilds the catalog from its contents.
func (l *Library) LoadFolder(ctx context.Context, dir string) (int, error) {
	files, err := ScanFolder(dir)
	if err != nil {
		return 0, err
	}
	return l.replaceCatalog(ctx, dir, files)
}

// LoadFiles rebuilds the catalog from an explicit file batch, e.g. a
// drag-and-drop drop. The prior catalog is replaced wholesale.
func (l *Library) LoadFiles(ctx context.Context, files []catalog.FileRef) (int, error) {
	return l.replaceCatalog(ctx, "", files)
}

// replaceCatalog runs the build and, if it was not superseded by a newer
// build, resets the projections and the per-source state.
func (l *Library) replaceCatalog(ctx context.Context, sourceDir string, files []catalog.FileRef) (int, error) {
	n, gen, err := l.catalog.Build(ctx, files, l.favorites)
	if err != nil {
		return 0, err
	}
	if err := l.applyBuild(gen, sourceDir); err != nil {
		return 0, err
	}
	return n, nil
}

// applyBuild resets the per-source state for an installed build. A build can
// be overtaken between installing its snapshot and reaching this point; the
// generation is re-checked so a superseded build never attaches its sourceDir
// or watcher to a newer snapshot.
func (l *Library) applyBuild(gen uint64, sourceDir string) error {
	l.mu.Lock()
	if gen != l.catalog.Generation() {
		l.mu.Unlock()
		return catalog.ErrBuildSuperseded
	}
	l.activePlaylist = ""
	l.selection = make(map[string]bool)
	l.currentID = ""
	l.sourceDir = sourceDir
	l.mu.Unlock()

	l.stale.Store(false)
	l.queries.Reset(l.catalog.Entries())
	l.restartWatcher(gen, sourceDir)
	return nil
}

// Project returns the ordered, filtered view for a spec. The active manual
// playlist filter, if any, is folded into the spec before projection.
func (l *Library) Project(spec query.Spec) []*catalog.Entry {
	l.mu.Lock()
	activeID := l.activePlaylist
	l.mu.Unlock()

	if activeID != "" && spec.PlaylistIDs == nil {
		if playlist, err := l.playlists.Get(activeID); err == nil && !playlist.FolderBacked() {
			spec.PlaylistIDs = playlist.VideoIDs
		}
	}
	return l.queries.Project(spec)
}

// Suggest completes a search-box prefix against the current catalog's names.
func (l *Library) Suggest(prefix string, limit int) []string {
	return l.queries.Suggest(prefix, limit)
}

// Entries returns the raw catalog snapshot in build order.
func (l *Library) Entries() []*catalog.Entry {
	return l.catalog.Entries()
}

// Get returns a catalog entry by id.
func (l *Library) Get(id string) (*catalog.Entry, bool) {
	return l.catalog.Get(id)
}

// ToggleFavorite flips favorite membership for an entry. Store and mirrored
// flag change within the one call; callers never observe them disagreeing.
func (l *Library) ToggleFavorite(id string) bool {
	favorite := l.favorites.Toggle(id)
	if err := l.catalog.SetFavorite(id, favorite); err != nil {
		// Favorites may reference entries outside the current catalog.
		slog.Debug("Favorite toggled for entry outside catalog", "id", id)
	}
	l.queries.Reset(l.catalog.Entries())
	return favorite
}

// AddTags merges tags into an entry's tag list.
func (l *Library) AddTags(id string, tags []string) int {
	return l.tags.AddTags(id, tags)
}

// TagsFor returns the tag list for an entry id.
func (l *Library) TagsFor(id string) []string {
	return l.tags.TagsFor(id)
}

// PopularTags ranks tags by global occurrence count.
func (l *Library) PopularTags(limit int) []store.TagCount {
	return l.tags.PopularTags(limit)
}

// SetCurrent marks the entry playback controls act on.
func (l *Library) SetCurrent(id string) error {
	if _, ok := l.catalog.Get(id); !ok {
		return catalog.ErrEntryNotFound
	}
	l.mu.Lock()
	l.currentID = id
	l.mu.Unlock()
	return nil
}

// Current returns the entry playback controls act on.
func (l *Library) Current() (*catalog.Entry, bool) {
	l.mu.Lock()
	id := l.currentID
	l.mu.Unlock()
	if id == "" {
		return nil, false
	}
	return l.catalog.Get(id)
}

// Snapshot captures a playback snapshot of the current entry at the given
// timestamp into dir.
func (l *Library) Snapshot(ctx context.Context, atSeconds float64, dir string) (string, error) {
	entry, ok := l.Current()
	if !ok {
		return "", ErrNoCurrentEntry
	}
	return media.CaptureSnapshot(ctx, l.thumbs, entry.Path, atSeconds, dir)
}

// Export serializes favorites, playlists and tags into the exchange document.
func (l *Library) Export() ([]byte, error) {
	return store.Export(l.favorites, l.tags, l.playlists)
}

// Import replaces sidecar stores from an exchange document and re-derives the
// favorite mirrors. Malformed documents leave all stores untouched.
func (l *Library) Import(data []byte) error {
	if err := store.Import(data, l.favorites, l.tags, l.playlists); err != nil {
		return err
	}
	l.catalog.RefreshFavorites(l.favorites)
	l.queries.Reset(l.catalog.Entries())

	// The replaced playlist collection may no longer contain the active
	// filter; a dangling id would report a filter that projections ignore.
	l.mu.Lock()
	if l.activePlaylist != "" {
		if _, err := l.playlists.Get(l.activePlaylist); err != nil {
			l.activePlaylist = ""
		}
	}
	l.mu.Unlock()
	return nil
}

// Stale reports whether the watched source folder changed since the last
// build. The caller decides when to rebuild; nothing rebuilds automatically.
func (l *Library) Stale() bool {
	return l.stale.Load()
}

// Close stops the folder watcher and releases the handle store.
func (l *Library) Close() error {
	l.mu.Lock()
	watcher := l.watcher
	l.watcher = nil
	l.mu.Unlock()
	if watcher != nil {
		watcher.Close()
	}
	return l.handles.Close()
}

// restartWatcher points the folder watcher at the new source directory, or
// stops it when the catalog came from a file batch. The build generation is
// re-checked before installing the new watcher; a watcher for a superseded
// build is discarded.
func (l *Library) restartWatcher(gen uint64, sourceDir string) {
	if !l.config.Library.WatchSource {
		return
	}

	l.mu.Lock()
	old := l.watcher
	l.watcher = nil
	l.mu.Unlock()
	if old != nil {
		old.Close()
	}
	if sourceDir == "" {
		return
	}

	watcher, err := NewWatcher(sourceDir, func() {
		l.stale.Store(true)
	})
	if err != nil {
		slog.Warn("Failed to watch source folder", "dir", sourceDir, "error", err)
		return
	}

	l.mu.Lock()
	if gen != l.catalog.Generation() {
		l.mu.Unlock()
		watcher.Close()
		return
	}
	l.watcher = watcher
	l.mu.Unlock()
}
