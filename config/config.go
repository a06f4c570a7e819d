package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel      int    `yaml:"log_level"`
	FileExtension string `yaml:"file_extension"`

	Paths      PathsConfig      `yaml:"paths"`
	Downloader DownloaderConfig `yaml:"downloader"`
	Transcoder TranscoderConfig `yaml:"transcoder"`
	Tagging    TaggingConfig    `yaml:"tagging"`
	Storage    StorageConfig    `yaml:"storage"`
}

type PathsConfig struct {
	// Track lists, one <id>.json (or <id>.csv) per source
	DataDir string `yaml:"data_dir"`
	// Downloaded source media, named <id>.<ext>
	DownloadsDir string `yaml:"downloads_dir"`
	// Ripped tracks
	OutputDir string `yaml:"output_dir"`
}

type DownloaderConfig struct {
	Command string `yaml:"command"`
	// Source URL, %s is replaced with the source identifier
	URLTemplate         string   `yaml:"url_template"`
	AudioFormat         string   `yaml:"audio_format"`
	AudioQuality        string   `yaml:"audio_quality"`
	PreferFreeFormats   *bool    `yaml:"prefer_free_formats"`
	NoCheckCertificates *bool    `yaml:"no_check_certificates"`
	Headers             []string `yaml:"headers"`
}

type TranscoderConfig struct {
	Command string `yaml:"command"`
}

type TaggingConfig struct {
	Enabled *bool `yaml:"enabled"`
	// Album tag written to every track, defaults to the source identifier
	Album string `yaml:"album"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type string `yaml:"type"`

	// GCS publishing options
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	if config == nil {
		config = &Config{}
	}
	config.setDefaults()

	return config, nil
}

func (c *Config) setDefaults() {
	if c.FileExtension == "" {
		c.FileExtension = "mp3"
	}
	c.FileExtension = strings.TrimPrefix(c.FileExtension, ".")

	if c.Paths.DataDir == "" {
		c.Paths.DataDir = "data"
	}
	if c.Paths.DownloadsDir == "" {
		c.Paths.DownloadsDir = "downloads"
	}
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = "rips"
	}

	d := &c.Downloader
	if d.Command == "" {
		d.Command = "yt-dlp"
	}
	if d.URLTemplate == "" {
		d.URLTemplate = "https://www.youtube.com/watch?v=%s"
	}
	if d.AudioFormat == "" {
		d.AudioFormat = "mp3"
	}
	if d.AudioQuality == "" {
		d.AudioQuality = "0"
	}
	if d.PreferFreeFormats == nil {
		d.PreferFreeFormats = boolPtr(true)
	}
	if d.NoCheckCertificates == nil {
		d.NoCheckCertificates = boolPtr(true)
	}
	if d.Headers == nil {
		d.Headers = []string{"referer:youtube.com", "user-agent:googlebot"}
	}

	if c.Transcoder.Command == "" {
		c.Transcoder.Command = "ffmpeg"
	}

	if c.Tagging.Enabled == nil {
		c.Tagging.Enabled = boolPtr(true)
	}

	if c.Storage.Type == "" {
		c.Storage.Type = StorageLocal
	}
}

// Validate reports settings that would make a run fail half way through.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Downloader.Command) == "" {
		return fmt.Errorf("%w: downloader.command is empty", ErrInvalidConfig)
	}
	if strings.Count(c.Downloader.URLTemplate, "%s") != 1 {
		return fmt.Errorf("%w: downloader.url_template must contain exactly one %%s", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Transcoder.Command) == "" {
		return fmt.Errorf("%w: transcoder.command is empty", ErrInvalidConfig)
	}

	switch c.Storage.Type {
	case StorageLocal:
	case StorageGCS:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("%w: storage.bucket is required for gcs", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage type %q", ErrInvalidConfig, c.Storage.Type)
	}

	return nil
}

// TaggingEnabled reports whether ripped tracks get extra ID3 frames.
func (c *Config) TaggingEnabled() bool {
	return c.Tagging.Enabled != nil && *c.Tagging.Enabled
}

// SourceURL builds the download URL for a source identifier.
func (c *Config) SourceURL(id string) string {
	return fmt.Sprintf(c.Downloader.URLTemplate, id)
}

func boolPtr(v bool) *bool {
	return &v
}
