package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Empty path",
			input:    "",
			expected: "",
		},
		{
			name:     "Absolute path",
			input:    "/absolute/path",
			expected: "/absolute/path",
		},
		{
			name:     "Home directory only",
			input:    "~",
			expected: home,
		},
		{
			name:     "Home directory with forward slash",
			input:    "~/Subtitles",
			expected: filepath.Join(home, "Subtitles"),
		},
		{
			name:     "Home directory with backslash (simulated)",
			input:    `~\Subtitles`,
			expected: filepath.Join(home, "Subtitles"),
		},
		{
			name:     "Invalid tilde use (no separator)",
			input:    "~user",
			expected: "~user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.expected {
				t.Errorf("expandPath(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 4096, cfg.VAD.FrameWidth)
	require.Equal(t, 0.5, cfg.VAD.MinRegionSize)
	require.Equal(t, 6.0, cfg.VAD.MaxRegionSize)
	require.Equal(t, 0.2, cfg.VAD.EnergyThresholdPercentile)
	require.Equal(t, 30.0, cfg.VAD.MaxGroupDuration)
	require.Equal(t, 2.0, cfg.VAD.MaxGap)
	require.Equal(t, 40, cfg.Subtitle.MaxCharsPerLine)
	require.Equal(t, 2, cfg.Subtitle.MaxLinesPerBlock)
	require.Equal(t, 16000, cfg.Audio.SampleRate)
	require.Equal(t, 1, cfg.Audio.Channels)
	require.Equal(t, TimestampsVAD, cfg.Transcription.Timestamps)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VAD.MinRegionSize = 10
	cfg.VAD.EnergyThresholdPercentile = 1.5
	cfg.Transcription.Provider = "carrier-pigeon"
	cfg.Subtitle.Format = "ass"

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, "min_region_size")
	require.Contains(t, msg, "energy_threshold_percentile")
	require.Contains(t, msg, "carrier-pigeon")
	require.Contains(t, msg, `"ass"`)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)
	t.Setenv(EnvConfigPath, path)

	require.False(t, Exists())
	require.NoError(t, Init())
	require.True(t, Exists())
	require.Error(t, Init(), "init must not overwrite")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	require.NoError(t, cfg.Set("vad.max_gap", "1.25"))
	require.NoError(t, cfg.Set("subtitle.format", "vtt"))
	require.NoError(t, Save(cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "# vsub configuration file"))

	again, err := Load()
	require.NoError(t, err)
	require.Equal(t, 1.25, again.VAD.MaxGap)
	require.Equal(t, FormatVTT, again.Subtitle.Format)
}

func TestLoadPartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("vad:\n  frame_width: 2048\noutput_dir: ~/subs\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2048, cfg.VAD.FrameWidth)
	require.Equal(t, 6.0, cfg.VAD.MaxRegionSize)
	require.False(t, strings.HasPrefix(cfg.OutputDir, "~"))
}

func TestGetSet(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		key   string
		value string
		want  string
	}{
		{"concurrency", "8", "8"},
		{"vad.min_region_size", "0.75", "0.75"},
		{"audio.keep_temp", "true", "true"},
		{"transcription.model", "whisper-1", "whisper-1"},
		{"watch.extensions", "mp3, .WAV ,", ".mp3,.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			require.NoError(t, cfg.Set(tt.key, tt.value))
			got, err := cfg.Get(tt.key)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	require.Error(t, cfg.Set("concurrency", "many"))
	require.Error(t, cfg.Set("nope", "1"))
	_, err := cfg.Get("nope")
	require.Error(t, err)
	require.Contains(t, Keys(), "vad.frame_width")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg := DefaultConfig()
	cfg.Translation.Provider = ProviderAnthropic
	cfg.ApplyEnv()
	require.Equal(t, "sk-openai", cfg.Transcription.APIKey)
	require.Equal(t, "sk-ant", cfg.Translation.APIKey)

	cfg = DefaultConfig()
	cfg.Transcription.APIKey = "explicit"
	cfg.ApplyEnv()
	require.Equal(t, "explicit", cfg.Transcription.APIKey)
}

func TestMaskSecret(t *testing.T) {
	require.Equal(t, "", MaskSecret(""))
	require.Equal(t, "****", MaskSecret("short"))
	require.Equal(t, "sk-a…wxyz", MaskSecret("sk-abcdefghijklmnopqrstuvwxyz"))
}
