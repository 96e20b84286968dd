package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIDDeterminism(t *testing.T) {
	modTime := time.UnixMilli(1700000000000)

	first := DeriveID("movie.mp4", 1024, modTime)
	second := DeriveID("movie.mp4", 1024, modTime)
	assert.Equal(t, first, second, "identical inputs must derive identical ids")
	assert.Equal(t, "movie.mp4_1024_1700000000000", first)

	// Changing any one component changes the id
	assert.NotEqual(t, first, DeriveID("other.mp4", 1024, modTime))
	assert.NotEqual(t, first, DeriveID("movie.mp4", 1025, modTime))
	assert.NotEqual(t, first, DeriveID("movie.mp4", 1024, modTime.Add(time.Millisecond)))
}

func TestNewEntry(t *testing.T) {
	modTime := time.UnixMilli(1700000000000)
	entry := NewEntry(FileRef{
		Path:    "/videos/Clip.MKV",
		Name:    "Clip.MKV",
		Size:    2048,
		ModTime: modTime,
	})

	assert.Equal(t, "Clip.MKV_2048_1700000000000", entry.ID)
	assert.Equal(t, "Clip.MKV", entry.DisplayName)
	assert.Equal(t, "mkv", entry.Extension, "extension is lowercased without the dot")
	assert.Equal(t, int64(2048), entry.Meta.SizeBytes)
	assert.Equal(t, modTime.UnixMilli(), entry.Meta.CreatedAt)
	assert.True(t, entry.Degraded(), "skeleton entries carry degraded metadata")
}

func TestQualityBucketBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		want   QualityBucket
	}{
		{"uhd", 3840, 2160, Quality4K},
		{"exactly 2160", 2160, 100, Quality4K},
		{"full hd", 1920, 1080, Quality1080p},
		{"exactly 1080", 1080, 100, Quality1080p},
		{"just under 2160", 2159, 100, Quality1080p},
		{"hd", 1280, 720, Quality720p},
		{"exactly 720", 720, 100, Quality720p},
		{"just under 1080", 1079, 100, Quality720p},
		{"just under 720", 719, 600, QualitySD},
		{"sd", 640, 480, QualitySD},
		{"portrait uses max dimension", 1080, 1920, Quality1080p},
		{"degraded zero resolution", 0, 0, QualitySD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketFor(tt.width, tt.height))
		})
	}
}

func TestIsVideoFile(t *testing.T) {
	assert.True(t, IsVideoFile("movie.mp4"))
	assert.True(t, IsVideoFile("MOVIE.MP4"), "extension match is case-insensitive")
	assert.True(t, IsVideoFile("clip.WebM"))
	assert.False(t, IsVideoFile("notes.txt"))
	assert.False(t, IsVideoFile("archive.mp4.zip"))
	assert.False(t, IsVideoFile("extensionless"))
}
