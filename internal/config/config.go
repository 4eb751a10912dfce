// Package config provides configuration management for vodstudy using
// Viper. It supports configuration from files, environment variables,
// and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultDownloadConcurrent  = 2
	defaultOptimizeConcurrent  = 1
	defaultTickInterval        = 2 * time.Second
	defaultMirrorWriteInterval = 500 * time.Millisecond
	defaultHistorySize         = 10
)

// defaultQualityCeilings are the download quality ceilings tried in
// order, highest first.
var defaultQualityCeilings = []int{1080, 720, 480}

// Config holds all configuration for the application.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Download QueueConfig    `mapstructure:"download"`
	Optimize QueueConfig    `mapstructure:"optimize"`
	Tools    ToolsConfig    `mapstructure:"tools"`
}

// StorageConfig holds on-disk layout configuration.
type StorageConfig struct {
	MediaDir string `mapstructure:"media_dir"`
	TempDir  string `mapstructure:"temp_dir"`
}

// DatabaseConfig holds the catalog database configuration.
type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"` // silent, error, warn, info
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// QueueConfig holds per-queue scheduling configuration.
type QueueConfig struct {
	// MaxConcurrent caps simultaneously active jobs. Transcoding is
	// CPU-bound and defaults to 1; downloads are I/O-bound and default
	// to 2.
	MaxConcurrent int `mapstructure:"max_concurrent"`

	// TickInterval is the scheduler poll interval.
	TickInterval time.Duration `mapstructure:"tick_interval"`

	// MirrorWriteInterval throttles progress writes to the catalog.
	MirrorWriteInterval time.Duration `mapstructure:"mirror_write_interval"`

	// HistorySize bounds the completed and failed history rings.
	HistorySize int `mapstructure:"history_size"`

	// QualityCeilings lists the download quality ceilings tried in
	// order, highest first. Ignored by the optimize queue.
	QualityCeilings []int `mapstructure:"quality_ceilings"`
}

// ToolsConfig holds the external tool binary paths.
type ToolsConfig struct {
	YtdlpPath   string `mapstructure:"ytdlp_path"`
	FFmpegPath  string `mapstructure:"ffmpeg_path"`
	FFprobePath string `mapstructure:"ffprobe_path"`
}

// SetDefaults registers default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	base := defaultBaseDir()

	v.SetDefault("storage.media_dir", filepath.Join(base, "media"))
	v.SetDefault("storage.temp_dir", filepath.Join(base, "tmp"))

	v.SetDefault("database.dsn", filepath.Join(base, "vodstudy.db"))
	v.SetDefault("database.log_level", "silent")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("download.max_concurrent", defaultDownloadConcurrent)
	v.SetDefault("download.tick_interval", defaultTickInterval)
	v.SetDefault("download.mirror_write_interval", defaultMirrorWriteInterval)
	v.SetDefault("download.history_size", defaultHistorySize)
	v.SetDefault("download.quality_ceilings", defaultQualityCeilings)

	v.SetDefault("optimize.max_concurrent", defaultOptimizeConcurrent)
	v.SetDefault("optimize.tick_interval", defaultTickInterval)
	v.SetDefault("optimize.mirror_write_interval", defaultMirrorWriteInterval)
	v.SetDefault("optimize.history_size", defaultHistorySize)

	v.SetDefault("tools.ytdlp_path", "yt-dlp")
	v.SetDefault("tools.ffmpeg_path", "ffmpeg")
	v.SetDefault("tools.ffprobe_path", "ffprobe")
}

// defaultBaseDir returns the per-user application directory.
func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vodstudy"
	}
	return filepath.Join(home, ".vodstudy")
}

// Load unmarshals the viper state into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Storage.MediaDir == "" {
		return fmt.Errorf("storage.media_dir must not be empty")
	}
	if c.Storage.TempDir == "" {
		return fmt.Errorf("storage.temp_dir must not be empty")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}
	if err := c.Download.validate("download"); err != nil {
		return err
	}
	if err := c.Optimize.validate("optimize"); err != nil {
		return err
	}
	if len(c.Download.QualityCeilings) == 0 {
		return fmt.Errorf("download.quality_ceilings must not be empty")
	}
	for _, h := range c.Download.QualityCeilings {
		if h <= 0 {
			return fmt.Errorf("download.quality_ceilings entries must be positive, got %d", h)
		}
	}
	return nil
}

func (q *QueueConfig) validate(name string) error {
	if q.MaxConcurrent < 1 {
		return fmt.Errorf("%s.max_concurrent must be at least 1, got %d", name, q.MaxConcurrent)
	}
	if q.TickInterval <= 0 {
		return fmt.Errorf("%s.tick_interval must be positive, got %s", name, q.TickInterval)
	}
	if q.MirrorWriteInterval < 0 {
		return fmt.Errorf("%s.mirror_write_interval must not be negative, got %s", name, q.MirrorWriteInterval)
	}
	if q.HistorySize < 1 {
		return fmt.Errorf("%s.history_size must be at least 1, got %d", name, q.HistorySize)
	}
	return nil
}
