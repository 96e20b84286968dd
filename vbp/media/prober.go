package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// ProbeResult carries the stream metadata extracted from a video file.
type ProbeResult struct {
	DurationSeconds float64
	Width           int
	Height          int
}

// Prober extracts duration and resolution from a video file.
type Prober interface {
	Probe(ctx context.Context, path string) (ProbeResult, error)
}

// Thumbnailer captures a single frame of a video file as a JPEG.
type Thumbnailer interface {
	Capture(ctx context.Context, path string, atSeconds float64, outPath string) error
}

// FFprobe implements Prober by shelling out to ffprobe with a JSON query
// against the first video stream. The probe never decodes more than the
// container headers, keeping per-file cost low.
type FFprobe struct {
	bin     string
	timeout time.Duration
}

// NewFFprobe creates an ffprobe-backed prober. An empty bin falls back to
// "ffprobe" on PATH.
func NewFFprobe(bin string, timeout time.Duration) *FFprobe {
	if bin == "" {
		bin = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &FFprobe{bin: bin, timeout: timeout}
}

// ffprobeOutput mirrors the subset of ffprobe's JSON document we consume.
type ffprobeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe against the file and parses duration and resolution.
func (f *FFprobe) Probe(ctx context.Context, path string) (ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.bin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-show_entries", "format=duration",
		"-print_format", "json",
		path)

	output, err := cmd.Output()
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return ProbeResult{}, fmt.Errorf("failed to parse ffprobe output for %s: %w", path, err)
	}
	if len(parsed.Streams) == 0 {
		return ProbeResult{}, fmt.Errorf("no video stream in %s", path)
	}

	result := ProbeResult{
		Width:  parsed.Streams[0].Width,
		Height: parsed.Streams[0].Height,
	}
	if parsed.Format.Duration != "" {
		duration, err := strconv.ParseFloat(parsed.Format.Duration, 64)
		if err != nil {
			return ProbeResult{}, fmt.Errorf("invalid duration %q for %s: %w", parsed.Format.Duration, path, err)
		}
		result.DurationSeconds = duration
	}

	return result, nil
}

// FFmpeg implements Thumbnailer by seeking to a timestamp and emitting one
// frame. -q:v 2 corresponds to roughly 0.95 JPEG quality.
type FFmpeg struct {
	bin     string
	timeout time.Duration
}

// NewFFmpeg creates an ffmpeg-backed thumbnailer. An empty bin falls back to
// "ffmpeg" on PATH.
func NewFFmpeg(bin string, timeout time.Duration) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &FFmpeg{bin: bin, timeout: timeout}
}

// Capture writes a single JPEG frame sampled at atSeconds into outPath.
func (f *FFmpeg) Capture(ctx context.Context, path string, atSeconds float64, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.bin,
		"-y",
		"-ss", strconv.FormatFloat(atSeconds, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-q:v", "2",
		"-loglevel", "error",
		outPath)

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg frame capture failed for %s: %w (%s)", path, err, output)
	}
	return nil
}
