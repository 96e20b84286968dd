package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CaptureSnapshot grabs a playback snapshot of a video at the given timestamp
// and writes it as snapshot-{epochMs}.jpg into dir. Returns the written path.
func CaptureSnapshot(ctx context.Context, thumbs Thumbnailer, videoPath string, atSeconds float64, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}

	outPath := filepath.Join(dir, fmt.Sprintf("snapshot-%d.jpg", time.Now().UnixMilli()))
	if err := thumbs.Capture(ctx, videoPath, atSeconds, outPath); err != nil {
		return "", fmt.Errorf("snapshot capture failed: %w", err)
	}
	return outPath, nil
}
