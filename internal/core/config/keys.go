package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func strField(p func(c *Config) *string) field {
	return field{
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error { *p(c) = v; return nil },
	}
}

func intField(p func(c *Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid number: %s", v)
			}
			*p(c) = n
			return nil
		},
	}
}

func floatField(p func(c *Config) *float64) field {
	return field{
		get: func(c *Config) string { return strconv.FormatFloat(*p(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid number: %s", v)
			}
			*p(c) = f
			return nil
		},
	}
}

func boolField(p func(c *Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean: %s", v)
			}
			*p(c) = b
			return nil
		},
	}
}

var fields = map[string]field{
	"output_dir":  strField(func(c *Config) *string { return &c.OutputDir }),
	"concurrency": intField(func(c *Config) *int { return &c.Concurrency }),

	"transcription.provider":          strField(func(c *Config) *string { return &c.Transcription.Provider }),
	"transcription.model":             strField(func(c *Config) *string { return &c.Transcription.Model }),
	"transcription.base_url":          strField(func(c *Config) *string { return &c.Transcription.BaseURL }),
	"transcription.api_key":           strField(func(c *Config) *string { return &c.Transcription.APIKey }),
	"transcription.language":          strField(func(c *Config) *string { return &c.Transcription.Language }),
	"transcription.temperature":       floatField(func(c *Config) *float64 { return &c.Transcription.Temperature }),
	"transcription.max_output_tokens": intField(func(c *Config) *int { return &c.Transcription.MaxOutputTokens }),
	"transcription.timestamps":        strField(func(c *Config) *string { return &c.Transcription.Timestamps }),

	"translation.provider": strField(func(c *Config) *string { return &c.Translation.Provider }),
	"translation.model":    strField(func(c *Config) *string { return &c.Translation.Model }),
	"translation.base_url": strField(func(c *Config) *string { return &c.Translation.BaseURL }),
	"translation.api_key":  strField(func(c *Config) *string { return &c.Translation.APIKey }),

	"vad.frame_width":                 intField(func(c *Config) *int { return &c.VAD.FrameWidth }),
	"vad.min_region_size":             floatField(func(c *Config) *float64 { return &c.VAD.MinRegionSize }),
	"vad.max_region_size":             floatField(func(c *Config) *float64 { return &c.VAD.MaxRegionSize }),
	"vad.energy_threshold_percentile": floatField(func(c *Config) *float64 { return &c.VAD.EnergyThresholdPercentile }),
	"vad.max_group_duration":          floatField(func(c *Config) *float64 { return &c.VAD.MaxGroupDuration }),
	"vad.max_gap":                     floatField(func(c *Config) *float64 { return &c.VAD.MaxGap }),

	"subtitle.max_chars_per_line":  intField(func(c *Config) *int { return &c.Subtitle.MaxCharsPerLine }),
	"subtitle.max_lines_per_block": intField(func(c *Config) *int { return &c.Subtitle.MaxLinesPerBlock }),
	"subtitle.overlap":             floatField(func(c *Config) *float64 { return &c.Subtitle.Overlap }),
	"subtitle.format":              strField(func(c *Config) *string { return &c.Subtitle.Format }),

	"audio.sample_rate": intField(func(c *Config) *int { return &c.Audio.SampleRate }),
	"audio.channels":    intField(func(c *Config) *int { return &c.Audio.Channels }),
	"audio.temp_dir":    strField(func(c *Config) *string { return &c.Audio.TempDir }),
	"audio.keep_temp":   boolField(func(c *Config) *bool { return &c.Audio.KeepTemp }),

	"watch.interval_seconds": intField(func(c *Config) *int { return &c.Watch.IntervalSeconds }),
	"watch.extensions": {
		get: func(c *Config) string { return strings.Join(c.Watch.Extensions, ",") },
		set: func(c *Config, v string) error {
			var exts []string
			for _, e := range strings.Split(v, ",") {
				e = strings.ToLower(strings.TrimSpace(e))
				if e == "" {
					continue
				}
				if !strings.HasPrefix(e, ".") {
					e = "." + e
				}
				exts = append(exts, e)
			}
			c.Watch.Extensions = exts
			return nil
		},
	},

	"log.level":  strField(func(c *Config) *string { return &c.Log.Level }),
	"log.format": strField(func(c *Config) *string { return &c.Log.Format }),
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a dotted config key.
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %s\nRun 'vsub config get --help' to see supported keys", key)
	}
	return f.get(c), nil
}

// Set parses value and assigns it to a dotted config key.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s\nRun 'vsub config set --help' to see supported keys", key)
	}
	return f.set(c, value)
}

// MaskSecret shortens an API key for display.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "…" + s[len(s)-4:]
}
