package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "test_config.yaml")
	configContent := `
log_level: -4
file_extension: .flac
paths:
  data_dir: sets
  output_dir: out
downloader:
  command: /usr/local/bin/yt-dlp
  no_check_certificates: false
  headers: []
tagging:
  enabled: false
  album: Live at the Warehouse
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, -4, cfg.LogLevel)
	assert.Equal(t, "flac", cfg.FileExtension)
	assert.Equal(t, "sets", cfg.Paths.DataDir)
	assert.Equal(t, "downloads", cfg.Paths.DownloadsDir)
	assert.Equal(t, "out", cfg.Paths.OutputDir)
	assert.Equal(t, "/usr/local/bin/yt-dlp", cfg.Downloader.Command)
	assert.False(t, *cfg.Downloader.NoCheckCertificates)
	assert.True(t, *cfg.Downloader.PreferFreeFormats)
	assert.Empty(t, cfg.Downloader.Headers)
	assert.Equal(t, "ffmpeg", cfg.Transcoder.Command)
	assert.False(t, cfg.TaggingEnabled())
	assert.Equal(t, "Live at the Warehouse", cfg.Tagging.Album)
	assert.Equal(t, StorageLocal, cfg.Storage.Type)
}

func TestLoadEmptyFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(configPath, nil, 0644))

	cfg, err := Load(configPath)

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("non_existent_file.yaml")

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "invalid_config.yaml")
	configContent := `
log_level: -4
file_extension: mp3
invalid_yaml: [this is not valid yaml
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "mp3", cfg.FileExtension)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, "downloads", cfg.Paths.DownloadsDir)
	assert.Equal(t, "rips", cfg.Paths.OutputDir)
	assert.Equal(t, "yt-dlp", cfg.Downloader.Command)
	assert.Equal(t, []string{"referer:youtube.com", "user-agent:googlebot"}, cfg.Downloader.Headers)
	assert.True(t, cfg.TaggingEnabled())
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", cfg.SourceURL("abc123"))
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "missing downloader", mutate: func(c *Config) { c.Downloader.Command = " " }, wantErr: true},
		{name: "missing transcoder", mutate: func(c *Config) { c.Transcoder.Command = "" }, wantErr: true},
		{name: "template without placeholder", mutate: func(c *Config) { c.Downloader.URLTemplate = "https://example.com" }, wantErr: true},
		{name: "gcs without bucket", mutate: func(c *Config) { c.Storage.Type = StorageGCS }, wantErr: true},
		{name: "gcs with bucket", mutate: func(c *Config) {
			c.Storage.Type = StorageGCS
			c.Storage.Bucket = "rips"
		}},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Type = "s3" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
