package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBinary writes an executable shell script that stands in for ffprobe.
func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func TestFFprobeParsesOutput(t *testing.T) {
	bin := fakeBinary(t, `cat <<'EOF'
{
  "streams": [{"width": 1920, "height": 1080}],
  "format": {"duration": "734.5"}
}
EOF`)

	prober := NewFFprobe(bin, time.Second)
	result, err := prober.Probe(context.Background(), "/videos/movie.mp4")
	require.NoError(t, err)
	assert.Equal(t, 1920, result.Width)
	assert.Equal(t, 1080, result.Height)
	assert.InDelta(t, 734.5, result.DurationSeconds, 1e-9)
}

func TestFFprobeMissingDuration(t *testing.T) {
	// Some containers report no format-level duration; resolution still parses.
	bin := fakeBinary(t, `echo '{"streams": [{"width": 640, "height": 480}], "format": {}}'`)

	prober := NewFFprobe(bin, time.Second)
	result, err := prober.Probe(context.Background(), "/videos/clip.avi")
	require.NoError(t, err)
	assert.Equal(t, 640, result.Width)
	assert.Zero(t, result.DurationSeconds)
}

func TestFFprobeNoVideoStream(t *testing.T) {
	bin := fakeBinary(t, `echo '{"streams": [], "format": {"duration": "10"}}'`)

	prober := NewFFprobe(bin, time.Second)
	_, err := prober.Probe(context.Background(), "/videos/audio-only.mp4")
	assert.Error(t, err)
}

func TestFFprobeInvalidDuration(t *testing.T) {
	bin := fakeBinary(t, `echo '{"streams": [{"width": 640, "height": 480}], "format": {"duration": "N/A"}}'`)

	prober := NewFFprobe(bin, time.Second)
	_, err := prober.Probe(context.Background(), "/videos/odd.mkv")
	assert.Error(t, err)
}

func TestFFprobeBinaryFailure(t *testing.T) {
	bin := fakeBinary(t, `exit 1`)

	prober := NewFFprobe(bin, time.Second)
	_, err := prober.Probe(context.Background(), "/videos/movie.mp4")
	assert.Error(t, err)
}

func TestFFprobeDefaults(t *testing.T) {
	prober := NewFFprobe("", 0)
	assert.Equal(t, "ffprobe", prober.bin)
	assert.Equal(t, 15*time.Second, prober.timeout)

	thumbs := NewFFmpeg("", 0)
	assert.Equal(t, "ffmpeg", thumbs.bin)
	assert.Equal(t, 15*time.Second, thumbs.timeout)
}
