package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Backend names
const (
	BackendFFmpeg  = "ffmpeg"
	BackendLibrary = "library"
)

// Probe names
const (
	ProbeFFprobe = "ffprobe"
	ProbeLibrary = "library"
	ProbeOpenCV  = "opencv"
)

// DefaultPath is where the config file is looked up when --config is not given
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Backend string        `yaml:"backend"`
	Probe   string        `yaml:"probe,omitempty"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Library LibraryConfig `yaml:"library"`
}

// FFmpegConfig contains settings for the external ffmpeg backend
type FFmpegConfig struct {
	FFmpegPath         string `yaml:"ffmpeg_path"`
	// FFprobePath is used by the ffprobe probe only; the library probe runs ffprobe from PATH
	FFprobePath        string `yaml:"ffprobe_path"`
	HWAccel            string `yaml:"hwaccel"`
	HWVideoCodec       string `yaml:"hw_video_codec"`
	FallbackVideoCodec string `yaml:"fallback_video_codec"`
	VideoBitrate       string `yaml:"video_bitrate"`
	MaxRate            string `yaml:"max_rate"`
	BufSize            string `yaml:"buf_size"`
	Profile            string `yaml:"profile"`
	MaxHeight          int    `yaml:"max_height"`
	AudioCodec         string `yaml:"audio_codec"`
	AudioBitrate       string `yaml:"audio_bitrate"`
}

// LibraryConfig contains settings for the filter-graph library backend
type LibraryConfig struct {
	VideoCodec string `yaml:"video_codec"`
	AudioCodec string `yaml:"audio_codec"`
	Preset     string `yaml:"preset"`
	Overwrite  bool   `yaml:"overwrite"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		Backend: BackendFFmpeg,
		FFmpeg: FFmpegConfig{
			FFmpegPath:         "ffmpeg",
			FFprobePath:        "ffprobe",
			HWAccel:            "videotoolbox",
			HWVideoCodec:       "h264_videotoolbox",
			FallbackVideoCodec: "libx264",
			VideoBitrate:       "4M",
			MaxRate:            "5M",
			BufSize:            "5M",
			Profile:            "main",
			MaxHeight:          720,
			AudioCodec:         "aac",
			AudioBitrate:       "128k",
		},
		Library: LibraryConfig{
			VideoCodec: "libx264",
			AudioCodec: "aac",
			Preset:     "medium",
		},
	}
}

// ProbeName returns the configured probe, defaulting to the one paired with the backend
func (c *Config) ProbeName() string {
	if c.Probe != "" {
		return c.Probe
	}
	if c.Backend == BackendLibrary {
		return ProbeLibrary
	}
	return ProbeFFprobe
}

// Validate checks backend and probe names
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFFmpeg, BackendLibrary:
	default:
		return fmt.Errorf("unknown backend %q: expected %q or %q", c.Backend, BackendFFmpeg, BackendLibrary)
	}

	switch c.ProbeName() {
	case ProbeFFprobe, ProbeLibrary, ProbeOpenCV:
	default:
		return fmt.Errorf("unknown probe %q: expected %q, %q or %q", c.Probe, ProbeFFprobe, ProbeLibrary, ProbeOpenCV)
	}

	if c.FFmpeg.MaxHeight < 0 {
		return fmt.Errorf("ffmpeg.max_height must not be negative")
	}
	return nil
}

// Load reads and parses the configuration from the specified YAML file.
// Fields the file leaves out keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
