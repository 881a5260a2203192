package ai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/guiyumin/vsub/internal/core/audio"
	"github.com/guiyumin/vsub/internal/core/config"
	"github.com/guiyumin/vsub/internal/core/vad"
)

// Analysis is the speech layout of a file, without transcription.
type Analysis struct {
	Duration float64
	Regions  []vad.Region
	Groups   []vad.Group
}

// SpeechDuration sums the duration of all regions.
func (a *Analysis) SpeechDuration() float64 {
	var total float64
	for _, r := range a.Regions {
		total += r.Duration()
	}
	return total
}

// Analyze converts input and runs region detection and grouping on it.
func Analyze(ctx context.Context, cfg *config.Config, input string) (*Analysis, error) {
	work, err := os.MkdirTemp(cfg.Audio.TempDir, "vsub-vad-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(work)

	wavPath := filepath.Join(work, "audio.wav")
	if err := audio.Convert(ctx, input, wavPath, cfg.Audio.SampleRate, cfg.Audio.Channels); err != nil {
		return nil, fmt.Errorf("failed to convert audio: %w", err)
	}

	regions, duration, err := detect(wavPath, cfg.VAD)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		Duration: duration,
		Regions:  regions,
		Groups:   vad.GroupRegions(regions, GroupOptions(cfg.VAD)),
	}, nil
}
