package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/MaharajTanim/video-browser-pro/vbp/catalog"
)

// Deriver implements catalog.Deriver: it computes the stable id, probes
// duration and resolution, and captures a thumbnail frame. Any extraction
// failure produces a degraded entry rather than dropping the file.
type Deriver struct {
	prober   Prober
	thumbs   Thumbnailer
	thumbDir string
}

// NewDeriver creates a metadata deriver writing thumbnails into thumbDir.
func NewDeriver(prober Prober, thumbs Thumbnailer, thumbDir string) (*Deriver, error) {
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail directory %s: %w", thumbDir, err)
	}
	return &Deriver{
		prober:   prober,
		thumbs:   thumbs,
		thumbDir: thumbDir,
	}, nil
}

// Derive builds the full catalog entry for one file. The frame is sampled at
// min(1.0, duration/4) seconds in, which skips the black leading frames
// common in media without decoding more than one frame.
//
// On probe failure the returned entry is degraded (zero duration, zero
// resolution, no thumbnail) and the probe error is returned alongside it so
// the catalog can log and keep the entry.
func (d *Deriver) Derive(ctx context.Context, ref catalog.FileRef) (*catalog.Entry, error) {
	entry := catalog.NewEntry(ref)

	probe, err := d.prober.Probe(ctx, ref.Path)
	if err != nil {
		return entry, fmt.Errorf("probe failed: %w", err)
	}
	entry.Meta.DurationSeconds = probe.DurationSeconds
	entry.Meta.Width = probe.Width
	entry.Meta.Height = probe.Height

	seekAt := math.Min(1.0, probe.DurationSeconds/4)
	thumbPath := filepath.Join(d.thumbDir, thumbName(entry.ID))
	if err := d.thumbs.Capture(ctx, ref.Path, seekAt, thumbPath); err != nil {
		// Thumbnail failure alone does not degrade the metadata; the entry
		// just carries the empty-thumbnail sentinel.
		slog.Warn("Thumbnail capture failed",
			"file", ref.Name,
			"error", err)
		return entry, nil
	}
	entry.ThumbnailPath = thumbPath

	return entry, nil
}

// thumbName maps an entry id to a filesystem-safe thumbnail file name.
// Ids embed the display name, which may contain path separators on import.
func thumbName(id string) string {
	sum := sha1.Sum([]byte(id))
	return hex.EncodeToString(sum[:]) + ".jpg"
}
