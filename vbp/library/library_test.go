package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaharajTanim/video-browser-pro/vbp/catalog"
	"github.com/MaharajTanim/video-browser-pro/vbp/config"
	"github.com/MaharajTanim/video-browser-pro/vbp/query"
)

// stubDeriver fills metadata without shelling out to ffprobe. Duration and
// resolution derive from the file size so tests can steer them.
type stubDeriver struct{}

func (d *stubDeriver) Derive(ctx context.Context, ref catalog.FileRef) (*catalog.Entry, error) {
	entry := catalog.NewEntry(ref)
	entry.Meta.DurationSeconds = float64(ref.Size)
	entry.Meta.Width = 1920
	entry.Meta.Height = 1080
	return entry, nil
}

type stubThumbnailer struct{}

func (t *stubThumbnailer) Capture(ctx context.Context, path string, atSeconds float64, outPath string) error {
	return os.WriteFile(outPath, []byte("jpeg"), 0o644)
}

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	dataDir := t.TempDir()
	cfg := &config.Config{
		Library: config.LibraryConfig{
			DataDir:      dataDir,
			HandleDBPath: filepath.Join(dataDir, "handles.db"),
			WatchSource:  false,
			WorkerCount:  4,
		},
	}
	lib, err := New(cfg, &stubDeriver{}, &stubThumbnailer{})
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

// writeVideos drops zero-padded files of the given sizes into a fresh dir.
func writeVideos(t *testing.T, files map[string]int) string {
	t.Helper()
	dir := t.TempDir()
	for name, size := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644))
	}
	return dir
}

func TestLoadFolderScansVideosOnly(t *testing.T) {
	lib := newTestLibrary(t)
	dir := writeVideos(t, map[string]int{
		"a.mp4":     10,
		"b.mkv":     20,
		"notes.txt": 5,
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "deep.mp4"), []byte("x"), 0o644))

	n, err := lib.LoadFolder(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "non-videos and sub-directories are skipped")
}

func TestLoadFolderHonorsIgnoreFile(t *testing.T) {
	lib := newTestLibrary(t)
	dir := writeVideos(t, map[string]int{
		"keep.mp4":    10,
		"skip me.mp4": 10,
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, ignoreFileName), []byte("skip*\n"), 0o644))

	n, err := lib.LoadFolder(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, "keep.mp4", lib.Entries()[0].DisplayName)
}

func TestLoadFolderMissingDirectory(t *testing.T) {
	lib := newTestLibrary(t)
	_, err := lib.LoadFolder(context.Background(), filepath.Join(t.TempDir(), "gone"))
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestLoadFilesReplacesCatalog(t *testing.T) {
	lib := newTestLibrary(t)

	n, err := lib.LoadFiles(context.Background(), []catalog.FileRef{
		{Path: "/v/a.mp4", Name: "a.mp4", Size: 10},
		{Path: "/v/b.mp4", Name: "b.mp4", Size: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = lib.LoadFiles(context.Background(), []catalog.FileRef{
		{Path: "/v/c.mp4", Name: "c.mp4", Size: 30},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, lib.Entries(), 1)
}

func TestProjectWithFilters(t *testing.T) {
	lib := newTestLibrary(t)
	_, err := lib.LoadFiles(context.Background(), []catalog.FileRef{
		{Path: "/v/beach.mp4", Name: "beach.mp4", Size: 10},
		{Path: "/v/city.mkv", Name: "city.mkv", Size: 20},
		{Path: "/v/beach trip.mkv", Name: "beach trip.mkv", Size: 30},
	})
	require.NoError(t, err)

	got := lib.Project(query.Spec{SearchText: "beach", SortKey: query.SortByName})
	require.Len(t, got, 2)
	assert.Equal(t, "beach trip.mkv", got[0].DisplayName)

	got = lib.Project(query.Spec{FormatFilter: "mkv"})
	assert.Len(t, got, 2)
}

func TestToggleFavorite(t *testing.T) {
	lib := newTestLibrary(t)
	_, err := lib.LoadFiles(context.Background(), []catalog.FileRef{
		{Path: "/v/a.mp4", Name: "a.mp4", Size: 10},
	})
	require.NoError(t, err)
	id := lib.Entries()[0].ID

	assert.True(t, lib.ToggleFavorite(id))
	entry, _ := lib.Get(id)
	assert.True(t, entry.IsFavorite, "mirrored flag follows the store")
	assert.Len(t, lib.Project(query.Spec{FavoritesOnly: true}), 1)

	assert.False(t, lib.ToggleFavorite(id))
	assert.Empty(t, lib.Project(query.Spec{FavoritesOnly: true}))
}

func TestFavoritesSurviveCatalogReload(t *testing.T) {
	lib := newTestLibrary(t)
	files := []catalog.FileRef{{Path: "/v/a.mp4", Name: "a.mp4", Size: 10}}

	_, err := lib.LoadFiles(context.Background(), files)
	require.NoError(t, err)
	id := lib.Entries()[0].ID
	lib.ToggleFavorite(id)

	// Reload the same file batch: identity is derived, so the favorite maps
	// back onto the rebuilt entry.
	_, err = lib.LoadFiles(context.Background(), files)
	require.NoError(t, err)
	entry, ok := lib.Get(id)
	require.True(t, ok)
	assert.True(t, entry.IsFavorite)
}

func TestCurrentEntry(t *testing.T) {
	lib := newTestLibrary(t)
	_, err := lib.LoadFiles(context.Background(), []catalog.FileRef{
		{Path: "/v/a.mp4", Name: "a.mp4", Size: 10},
	})
	require.NoError(t, err)
	id := lib.Entries()[0].ID

	_, ok := lib.Current()
	assert.False(t, ok)

	assert.ErrorIs(t, lib.SetCurrent("missing"), catalog.ErrEntryNotFound)
	require.NoError(t, lib.SetCurrent(id))

	entry, ok := lib.Current()
	require.True(t, ok)
	assert.Equal(t, id, entry.ID)
}

func TestSnapshotRequiresCurrentEntry(t *testing.T) {
	lib := newTestLibrary(t)
	_, err := lib.Snapshot(context.Background(), 5, t.TempDir())
	assert.ErrorIs(t, err, ErrNoCurrentEntry)
}

func TestSnapshotCapturesCurrentEntry(t *testing.T) {
	lib := newTestLibrary(t)
	_, err := lib.LoadFiles(context.Background(), []catalog.FileRef{
		{Path: "/v/a.mp4", Name: "a.mp4", Size: 10},
	})
	require.NoError(t, err)
	require.NoError(t, lib.SetCurrent(lib.Entries()[0].ID))

	path, err := lib.Snapshot(context.Background(), 5, t.TempDir())
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestExportImportRoundTrip(t *testing.T) {
	lib := newTestLibrary(t)
	_, err := lib.LoadFiles(context.Background(), []catalog.FileRef{
		{Path: "/v/a.mp4", Name: "a.mp4", Size: 10},
	})
	require.NoError(t, err)
	id := lib.Entries()[0].ID
	lib.ToggleFavorite(id)
	lib.AddTags(id, []string{"action"})
	_, err = lib.CreatePlaylist("Mix", []string{id})
	require.NoError(t, err)

	data, err := lib.Export()
	require.NoError(t, err)

	other := newTestLibrary(t)
	_, err = other.LoadFiles(context.Background(), []catalog.FileRef{
		{Path: "/v/a.mp4", Name: "a.mp4", Size: 10},
	})
	require.NoError(t, err)
	require.NoError(t, other.Import(data))

	entry, _ := other.Get(id)
	assert.True(t, entry.IsFavorite, "import re-derives the favorite mirror")
	assert.Equal(t, []string{"action"}, other.TagsFor(id))
	require.Len(t, other.Playlists(), 1)
	assert.Equal(t, "Mix", other.Playlists()[0].Name)
}

func TestStaleBuildBookkeepingRefused(t *testing.T) {
	lib := newTestLibrary(t)
	filesA := []catalog.FileRef{{Path: "/a/a.mp4", Name: "a.mp4", Size: 10}}
	filesB := []catalog.FileRef{{Path: "/b/b.mp4", Name: "b.mp4", Size: 20}}

	// Build A installs its snapshot but is overtaken before its per-source
	// bookkeeping runs.
	_, genA, err := lib.catalog.Build(context.Background(), filesA, lib.favorites)
	require.NoError(t, err)

	_, genB, err := lib.catalog.Build(context.Background(), filesB, lib.favorites)
	require.NoError(t, err)
	require.NoError(t, lib.applyBuild(genB, "/src/b"))

	err = lib.applyBuild(genA, "/src/a")
	assert.ErrorIs(t, err, catalog.ErrBuildSuperseded,
		"a superseded build must not apply its source state")

	lib.mu.Lock()
	sourceDir := lib.sourceDir
	lib.mu.Unlock()
	assert.Equal(t, "/src/b", sourceDir, "the newer build's source state stands")

	entries := lib.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "b.mp4", entries[0].DisplayName)
}

func TestImportClearsDanglingActiveFilter(t *testing.T) {
	lib := newTestLibrary(t)
	_, err := lib.LoadFiles(context.Background(), []catalog.FileRef{
		{Path: "/v/a.mp4", Name: "a.mp4", Size: 10},
	})
	require.NoError(t, err)

	playlist, err := lib.CreatePlaylist("Picks", []string{lib.Entries()[0].ID})
	require.NoError(t, err)
	_, err = lib.LoadPlaylist(context.Background(), playlist.ID)
	require.NoError(t, err)
	require.Equal(t, playlist.ID, lib.ActivePlaylist())

	// Importing a document that replaces the playlists drops the one the
	// filter referenced.
	require.NoError(t, lib.Import([]byte(`{"playlists": []}`)))
	assert.Empty(t, lib.ActivePlaylist(), "a dangling filter id is cleared on import")
	assert.Len(t, lib.Project(query.Spec{}), 1)
}

func TestImportKeepsSurvivingActiveFilter(t *testing.T) {
	lib := newTestLibrary(t)
	_, err := lib.LoadFiles(context.Background(), []catalog.FileRef{
		{Path: "/v/a.mp4", Name: "a.mp4", Size: 10},
	})
	require.NoError(t, err)

	playlist, err := lib.CreatePlaylist("Picks", []string{lib.Entries()[0].ID})
	require.NoError(t, err)
	_, err = lib.LoadPlaylist(context.Background(), playlist.ID)
	require.NoError(t, err)

	// A round-trip import carries the same playlist id; the filter survives.
	data, err := lib.Export()
	require.NoError(t, err)
	require.NoError(t, lib.Import(data))
	assert.Equal(t, playlist.ID, lib.ActivePlaylist())
}

func TestImportMalformedLeavesStateUntouched(t *testing.T) {
	lib := newTestLibrary(t)
	_, err := lib.LoadFiles(context.Background(), []catalog.FileRef{
		{Path: "/v/a.mp4", Name: "a.mp4", Size: 10},
	})
	require.NoError(t, err)
	id := lib.Entries()[0].ID
	lib.ToggleFavorite(id)

	require.Error(t, lib.Import([]byte("not json")))
	entry, _ := lib.Get(id)
	assert.True(t, entry.IsFavorite)
}
