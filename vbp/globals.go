package internal

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	// DefaultAppName identifies the application in config and data paths.
	DefaultAppName     = "video-browser"
	DefaultConfigPath  = filepath.Join(getHomeDir(), ".config", DefaultAppName)
	DefaultDataDir     = filepath.Join(DefaultConfigPath, "data")
	DefaultThumbDir    = filepath.Join(DefaultConfigPath, "thumbnails")
	DefaultHandleDB    = filepath.Join(DefaultConfigPath, "handles.db")
	DefaultGlobalConf  = filepath.Join(DefaultConfigPath, "config.yaml")
	DefaultFFprobeBin  = "ffprobe"
	DefaultFFmpegBin   = "ffmpeg"
	DefaultProbeWorker = 8
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current working directory if home directory is unavailable
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			// Last resort - use tmp directory
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
