package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// ConfigManager reads and updates individual config entries
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Entry is a single key/value pair of the config
type Entry struct {
	Key   string
	Value string
}

type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringField(ptr func(c *Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error {
			*ptr(c) = v
			return nil
		},
	}
}

var fields = map[string]field{
	"backend": {
		get: func(c *Config) string { return c.Backend },
		set: func(c *Config, v string) error {
			if v != BackendFFmpeg && v != BackendLibrary {
				return fmt.Errorf("%w: backend must be %q or %q", ErrInvalidValue, BackendFFmpeg, BackendLibrary)
			}
			c.Backend = v
			return nil
		},
	},
	"probe": {
		get: func(c *Config) string { return c.ProbeName() },
		set: func(c *Config, v string) error {
			switch v {
			case ProbeFFprobe, ProbeLibrary, ProbeOpenCV:
			default:
				return fmt.Errorf("%w: probe must be %q, %q or %q", ErrInvalidValue, ProbeFFprobe, ProbeLibrary, ProbeOpenCV)
			}
			c.Probe = v
			return nil
		},
	},
	"ffmpeg.ffmpeg_path":          stringField(func(c *Config) *string { return &c.FFmpeg.FFmpegPath }),
	"ffmpeg.ffprobe_path":         stringField(func(c *Config) *string { return &c.FFmpeg.FFprobePath }),
	"ffmpeg.hwaccel":              stringField(func(c *Config) *string { return &c.FFmpeg.HWAccel }),
	"ffmpeg.hw_video_codec":       stringField(func(c *Config) *string { return &c.FFmpeg.HWVideoCodec }),
	"ffmpeg.fallback_video_codec": stringField(func(c *Config) *string { return &c.FFmpeg.FallbackVideoCodec }),
	"ffmpeg.video_bitrate":        stringField(func(c *Config) *string { return &c.FFmpeg.VideoBitrate }),
	"ffmpeg.max_rate":             stringField(func(c *Config) *string { return &c.FFmpeg.MaxRate }),
	"ffmpeg.buf_size":             stringField(func(c *Config) *string { return &c.FFmpeg.BufSize }),
	"ffmpeg.profile":              stringField(func(c *Config) *string { return &c.FFmpeg.Profile }),
	"ffmpeg.max_height": {
		get: func(c *Config) string { return strconv.Itoa(c.FFmpeg.MaxHeight) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("%w: max_height must be a non-negative integer", ErrInvalidValue)
			}
			c.FFmpeg.MaxHeight = n
			return nil
		},
	},
	"ffmpeg.audio_codec":   stringField(func(c *Config) *string { return &c.FFmpeg.AudioCodec }),
	"ffmpeg.audio_bitrate": stringField(func(c *Config) *string { return &c.FFmpeg.AudioBitrate }),
	"library.video_codec":  stringField(func(c *Config) *string { return &c.Library.VideoCodec }),
	"library.audio_codec":  stringField(func(c *Config) *string { return &c.Library.AudioCodec }),
	"library.preset":       stringField(func(c *Config) *string { return &c.Library.Preset }),
	"library.overwrite": {
		get: func(c *Config) string { return strconv.FormatBool(c.Library.Overwrite) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: overwrite must be true or false", ErrInvalidValue)
			}
			c.Library.Overwrite = b
			return nil
		},
	},
}

// Get returns the value stored under key
func (m *ConfigManager) Get(key string) (string, error) {
	f, ok := fields[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return f.get(m.config), nil
}

// Set updates key and saves the config file
func (m *ConfigManager) Set(key, value string) error {
	f, ok := fields[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if err := f.set(m.config, strings.TrimSpace(value)); err != nil {
		return err
	}
	return Save(m.config, m.configPath)
}

// List returns every entry sorted by key
func (m *ConfigManager) List() []Entry {
	result := make([]Entry, 0, len(fields))
	for key, f := range fields {
		result = append(result, Entry{Key: key, Value: f.get(m.config)})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}
