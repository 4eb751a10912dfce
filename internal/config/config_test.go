package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Download.MaxConcurrent)
	assert.Equal(t, 1, cfg.Optimize.MaxConcurrent)
	assert.Equal(t, 2*time.Second, cfg.Download.TickInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Download.MirrorWriteInterval)
	assert.Equal(t, 10, cfg.Download.HistorySize)
	assert.Equal(t, []int{1080, 720, 480}, cfg.Download.QualityCeilings)
	assert.Equal(t, "yt-dlp", cfg.Tools.YtdlpPath)
	assert.Equal(t, "ffmpeg", cfg.Tools.FFmpegPath)
	assert.NotEmpty(t, cfg.Storage.MediaDir)
	assert.NotEmpty(t, cfg.Database.DSN)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("download.max_concurrent", 4)
	v.Set("optimize.tick_interval", "5s")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Download.MaxConcurrent)
	assert.Equal(t, 5*time.Second, cfg.Optimize.TickInterval)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{"download.max_concurrent", 0},
		{"optimize.max_concurrent", -1},
		{"download.tick_interval", "0s"},
		{"download.history_size", 0},
		{"storage.media_dir", ""},
		{"database.dsn", ""},
		{"download.quality_ceilings", []int{}},
		{"download.quality_ceilings", []int{1080, -720}},
	}

	for _, tt := range tests {
		v := viper.New()
		SetDefaults(v)
		v.Set(tt.key, tt.value)

		_, err := Load(v)
		assert.Error(t, err, "key %s value %v", tt.key, tt.value)
	}
}
