package catalog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileRef describes one raw video file handed to the catalog by the
// file-acquisition layer. The engine only ever reads the file; Path is the
// opaque source reference carried on the derived entry.
type FileRef struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Meta holds the descriptive metadata derived for one entry.
type Meta struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	CreatedAt       int64   `json:"created_at"` // epoch milliseconds
	SizeBytes       int64   `json:"size_bytes"`
}

// Entry is one catalog record: identity, metadata, thumbnail and the
// mirrored favorite flag. Entries live only as long as the snapshot that
// produced them.
type Entry struct {
	ID            string `json:"id"`
	Path          string `json:"path"`
	DisplayName   string `json:"display_name"`
	Extension     string `json:"extension"`
	Meta          Meta   `json:"meta"`
	ThumbnailPath string `json:"thumbnail_path"` // empty when extraction failed
	IsFavorite    bool   `json:"is_favorite"`
}

// DeriveID computes the stable identifier for a file from its name, byte size
// and last-modified timestamp. Files that agree on all three collide, which is
// an accepted limitation of the scheme.
func DeriveID(name string, size int64, modTime time.Time) string {
	return fmt.Sprintf("%s_%d_%d", name, size, modTime.UnixMilli())
}

// NewEntry builds an entry skeleton from a file reference. Duration,
// resolution and thumbnail are filled in by the metadata deriver; a skeleton
// is already a valid degraded entry.
func NewEntry(ref FileRef) *Entry {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(ref.Name)), ".")
	return &Entry{
		ID:          DeriveID(ref.Name, ref.Size, ref.ModTime),
		Path:        ref.Path,
		DisplayName: ref.Name,
		Extension:   ext,
		Meta: Meta{
			CreatedAt: ref.ModTime.UnixMilli(),
			SizeBytes: ref.Size,
		},
	}
}

// Degraded reports whether metadata extraction failed for this entry.
func (e *Entry) Degraded() bool {
	return e.Meta.DurationSeconds == 0 && e.Meta.Width == 0 && e.Meta.Height == 0
}

// QualityBucket classifies an entry by its larger pixel dimension.
type QualityBucket string

const (
	Quality4K    QualityBucket = "4k"
	Quality1080p QualityBucket = "1080p"
	Quality720p  QualityBucket = "720p"
	QualitySD    QualityBucket = "sd"
)

// Quality returns the quality bucket for the entry's resolution. Degraded
// entries with zero resolution fall into the sd bucket.
func (e *Entry) Quality() QualityBucket {
	return BucketFor(e.Meta.Width, e.Meta.Height)
}

// BucketFor buckets a resolution by max(width, height).
func BucketFor(width, height int) QualityBucket {
	maxDim := width
	if height > maxDim {
		maxDim = height
	}
	switch {
	case maxDim >= 2160:
		return Quality4K
	case maxDim >= 1080:
		return Quality1080p
	case maxDim >= 720:
		return Quality720p
	default:
		return QualitySD
	}
}

// VideoExtensions is the fixed whitelist of supported container extensions,
// lowercased and without the leading dot.
var VideoExtensions = map[string]bool{
	"mp4":  true,
	"mov":  true,
	"avi":  true,
	"mkv":  true,
	"webm": true,
	"ogg":  true,
	"flv":  true,
	"wmv":  true,
}

// IsVideoFile reports whether a file name carries a supported container
// extension (case-insensitive).
func IsVideoFile(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return VideoExtensions[ext]
}
