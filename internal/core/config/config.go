package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "vsub"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "VSUB_CONFIG"
)

// Transcription providers.
const (
	ProviderOpenAIAudio = "openai-audio" // chat completion with audio input
	ProviderWhisper     = "whisper"      // /audio/transcriptions
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderQwen        = "qwen"
)

// Timestamp modes.
const (
	TimestampsVAD   = "vad"
	TimestampsModel = "model"
)

// Subtitle formats.
const (
	FormatSRT      = "srt"
	FormatVTT      = "vtt"
	FormatMarkdown = "md"
)

// ConfigDir returns the standard config directory for vsub.
// Windows: %APPDATA%\vsub\
// macOS/Linux: ~/.config/vsub/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file, honoring VSUB_CONFIG.
// e.g., ~/.config/vsub/config.yml
func ConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return expandPath(p), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

type Config struct {
	// Default output directory; empty writes next to the input
	OutputDir string `yaml:"output_dir,omitempty"`

	// Number of groups transcribed in parallel
	Concurrency int `yaml:"concurrency,omitempty"`

	Transcription TranscriptionConfig `yaml:"transcription"`
	Translation   TranslationConfig   `yaml:"translation,omitempty"`
	VAD           VADConfig           `yaml:"vad"`
	Subtitle      SubtitleConfig      `yaml:"subtitle"`
	Audio         AudioConfig         `yaml:"audio"`
	Watch         WatchConfig         `yaml:"watch"`
	Log           LogConfig           `yaml:"log"`
}

// TranscriptionConfig selects and configures the speech-to-text service.
type TranscriptionConfig struct {
	// openai-audio or whisper
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`

	// ISO 639-1 code, or "auto"
	Language        string  `yaml:"language"`
	Temperature     float64 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens,omitempty"`

	// vad: region timestamps, model: timestamps returned by the service
	Timestamps string `yaml:"timestamps"`
}

// TranslationConfig configures the optional translation pass.
type TranslationConfig struct {
	// openai, anthropic or qwen
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// VADConfig holds region detection and grouping parameters.
type VADConfig struct {
	FrameWidth                int     `yaml:"frame_width"`
	MinRegionSize             float64 `yaml:"min_region_size"`
	MaxRegionSize             float64 `yaml:"max_region_size"`
	EnergyThresholdPercentile float64 `yaml:"energy_threshold_percentile"`
	MaxGroupDuration          float64 `yaml:"max_group_duration"`
	MaxGap                    float64 `yaml:"max_gap"`
}

// SubtitleConfig controls subtitle layout.
type SubtitleConfig struct {
	MaxCharsPerLine  int     `yaml:"max_chars_per_line"`
	MaxLinesPerBlock int     `yaml:"max_lines_per_block"`
	Overlap          float64 `yaml:"overlap,omitempty"`
	Format           string  `yaml:"format"`
}

// AudioConfig controls input conversion.
type AudioConfig struct {
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
	TempDir    string `yaml:"temp_dir,omitempty"`
	KeepTemp   bool   `yaml:"keep_temp,omitempty"`
}

// WatchConfig controls `vsub watch`.
type WatchConfig struct {
	IntervalSeconds int      `yaml:"interval_seconds"`
	Extensions      []string `yaml:"extensions,omitempty"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultWatchExtensions are the media types picked up by `vsub watch`.
var DefaultWatchExtensions = []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".mp4", ".mkv", ".webm"}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every zero value with its default.
func (c *Config) ApplyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}

	t := &c.Transcription
	if t.Provider == "" {
		t.Provider = ProviderOpenAIAudio
	}
	if t.Model == "" {
		if t.Provider == ProviderWhisper {
			t.Model = "whisper-1"
		} else {
			t.Model = "gpt-4o-audio-preview"
		}
	}
	if t.Language == "" {
		t.Language = "auto"
	}
	if t.MaxOutputTokens <= 0 {
		t.MaxOutputTokens = 8192
	}
	if t.Timestamps == "" {
		t.Timestamps = TimestampsVAD
	}

	tr := &c.Translation
	if tr.Provider == "" {
		tr.Provider = ProviderOpenAI
	}
	if tr.Model == "" {
		switch tr.Provider {
		case ProviderAnthropic:
			tr.Model = "claude-3-5-haiku-latest"
		case ProviderQwen:
			tr.Model = "qwen-plus"
		default:
			tr.Model = "gpt-4o-mini"
		}
	}

	v := &c.VAD
	if v.FrameWidth <= 0 {
		v.FrameWidth = 4096
	}
	if v.MinRegionSize <= 0 {
		v.MinRegionSize = 0.5
	}
	if v.MaxRegionSize <= 0 {
		v.MaxRegionSize = 6.0
	}
	if v.EnergyThresholdPercentile <= 0 {
		v.EnergyThresholdPercentile = 0.2
	}
	if v.MaxGroupDuration <= 0 {
		v.MaxGroupDuration = 30.0
	}
	if v.MaxGap <= 0 {
		v.MaxGap = 2.0
	}

	s := &c.Subtitle
	if s.MaxCharsPerLine <= 0 {
		s.MaxCharsPerLine = 40
	}
	if s.MaxLinesPerBlock <= 0 {
		s.MaxLinesPerBlock = 2
	}
	if s.Format == "" {
		s.Format = FormatSRT
	}

	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = 1
	}

	if c.Watch.IntervalSeconds <= 0 {
		c.Watch.IntervalSeconds = 5
	}
	if len(c.Watch.Extensions) == 0 {
		c.Watch.Extensions = append([]string(nil), DefaultWatchExtensions...)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// ApplyEnv fills empty API keys from the environment.
func (c *Config) ApplyEnv() {
	if c.Transcription.APIKey == "" {
		c.Transcription.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Translation.APIKey == "" {
		switch c.Translation.Provider {
		case ProviderAnthropic:
			c.Translation.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case ProviderQwen:
			c.Translation.APIKey = os.Getenv("DASHSCOPE_API_KEY")
		default:
			c.Translation.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Transcription.Provider {
	case ProviderOpenAIAudio, ProviderWhisper:
	default:
		errs = append(errs, fmt.Errorf("unknown transcription provider %q", c.Transcription.Provider))
	}
	switch c.Transcription.Timestamps {
	case TimestampsVAD, TimestampsModel:
	default:
		errs = append(errs, fmt.Errorf("unknown timestamps mode %q (want vad or model)", c.Transcription.Timestamps))
	}
	switch c.Translation.Provider {
	case "", ProviderOpenAI, ProviderAnthropic, ProviderQwen:
	default:
		errs = append(errs, fmt.Errorf("unknown translation provider %q", c.Translation.Provider))
	}
	switch c.Subtitle.Format {
	case FormatSRT, FormatVTT, FormatMarkdown:
	default:
		errs = append(errs, fmt.Errorf("unknown subtitle format %q", c.Subtitle.Format))
	}

	v := c.VAD
	if v.FrameWidth <= 0 {
		errs = append(errs, fmt.Errorf("vad.frame_width must be positive"))
	}
	if v.MinRegionSize < 0 || v.MaxRegionSize <= 0 || v.MinRegionSize > v.MaxRegionSize {
		errs = append(errs, fmt.Errorf("vad.min_region_size must be within [0, max_region_size]"))
	}
	if v.EnergyThresholdPercentile < 0 || v.EnergyThresholdPercentile > 1 {
		errs = append(errs, fmt.Errorf("vad.energy_threshold_percentile must be within [0, 1]"))
	}
	if v.MaxGroupDuration <= 0 || v.MaxGap < 0 {
		errs = append(errs, fmt.Errorf("vad.max_group_duration must be positive and vad.max_gap non-negative"))
	}
	if c.Subtitle.MaxCharsPerLine <= 0 || c.Subtitle.MaxLinesPerBlock <= 0 {
		errs = append(errs, fmt.Errorf("subtitle line limits must be positive"))
	}
	if c.Subtitle.Overlap < 0 {
		errs = append(errs, fmt.Errorf("subtitle.overlap must not be negative"))
	}
	if c.Audio.SampleRate <= 0 || c.Audio.Channels <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate and audio.channels must be positive"))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive"))
	}

	return errors.Join(errs...)
}

// Exists checks if config file exists
func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config from ~/.config/vsub/config.yml
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads and defaults the config at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.OutputDir = expandPath(cfg.OutputDir)
	cfg.Audio.TempDir = expandPath(cfg.Audio.TempDir)
	cfg.ApplyDefaults()

	return cfg, nil
}

// expandPath expands the tilde (~) in the path to the user's home directory.
// It handles both forward and backward slashes to ensure cross-platform compatibility
// for configuration files.
func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		// Only expand if it's explicitly "~", "~/", or "~\"
		if len(path) == 1 || path[1] == '/' || path[1] == '\\' {
			home, err := os.UserHomeDir()
			if err == nil {
				subPath := path[1:]
				if len(subPath) > 0 && (subPath[0] == '/' || subPath[0] == '\\') {
					subPath = subPath[1:]
				}
				return filepath.Join(home, subPath)
			}
		}
	}

	return path
}

// Save writes the config to ~/.config/vsub/config.yml
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveFile(configPath, cfg)
}

// SaveFile writes cfg to path with a header comment.
func SaveFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# vsub configuration file\n# Run 'vsub init' to regenerate with defaults\n\n"
	content := header + string(data)

	return os.WriteFile(path, []byte(content), 0600)
}

// SavePath returns the path where config will be saved
func SavePath() string {
	if path, err := ConfigPath(); err == nil {
		return path
	}
	return ConfigFileName
}

// Init creates a new config.yml with default values
func Init() error {
	if Exists() {
		path, _ := ConfigPath()
		return fmt.Errorf("%s already exists", path)
	}
	return Save(DefaultConfig())
}

// LoadOrDefault loads config if it exists, otherwise returns defaults
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
	}
	return cfg
}
