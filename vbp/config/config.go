package config

import (
	"fmt"
	"strings"
	"time"

	internal "github.com/MaharajTanim/video-browser-pro/vbp"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	Media   MediaConfig   `mapstructure:"media"`
}

// LibraryConfig stores catalog and sidecar storage configurations.
type LibraryConfig struct {
	DataDir      string `mapstructure:"dataDir"`
	HandleDBPath string `mapstructure:"handleDBPath"`
	WatchSource  bool   `mapstructure:"watchSource"`
	WorkerCount  int    `mapstructure:"workerCount"`
}

// MediaConfig stores metadata extraction tooling configurations.
type MediaConfig struct {
	FFprobePath         string `mapstructure:"ffprobePath"`
	FFmpegPath          string `mapstructure:"ffmpegPath"`
	ThumbnailDir        string `mapstructure:"thumbnailDir"`
	ProbeTimeoutSeconds int    `mapstructure:"probeTimeoutSeconds"`
}

// ProbeTimeout returns the extraction deadline as a duration.
func (m MediaConfig) ProbeTimeout() time.Duration {
	return time.Duration(m.ProbeTimeoutSeconds) * time.Second
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("library.dataDir", internal.DefaultDataDir)
	viper.SetDefault("library.handleDBPath", internal.DefaultHandleDB)
	viper.SetDefault("library.watchSource", false)
	viper.SetDefault("library.workerCount", internal.DefaultProbeWorker)

	viper.SetDefault("media.ffprobePath", internal.DefaultFFprobeBin)
	viper.SetDefault("media.ffmpegPath", internal.DefaultFFmpegBin)
	viper.SetDefault("media.thumbnailDir", internal.DefaultThumbDir)
	viper.SetDefault("media.probeTimeoutSeconds", 15)

	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // e.g. library.dataDir becomes LIBRARY_DATADIR

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults will be used.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
