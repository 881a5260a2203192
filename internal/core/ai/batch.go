package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/guiyumin/vsub/internal/core/audio"
	"github.com/guiyumin/vsub/internal/logging"
)

// BatchResult lists which inputs produced a subtitle file.
type BatchResult struct {
	Succeeded []string // output paths
	Failed    []string // input paths
}

// ExpandInputs resolves files and directories into a list of supported
// media files. Directory entries are taken one level deep, sorted by name.
func ExpandInputs(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("input not found: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		for _, e := range entries {
			if e.IsDir() || !audio.IsSupported(e.Name()) {
				continue
			}
			files = append(files, filepath.Join(p, e.Name()))
		}
	}
	return files, nil
}

// ProcessBatch processes inputs one after another. A failing file is
// recorded and the batch moves on; only cancellation stops it early.
func (p *Pipeline) ProcessBatch(ctx context.Context, inputs []string, outputDir string) (*BatchResult, error) {
	log := logging.WithComponent("pipeline")
	res := &BatchResult{}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		log.Info().Str("file", input).Msgf("[%d/%d] processing", i+1, len(inputs))

		output := ""
		if outputDir != "" {
			output = OutputPath(input, outputDir, p.config.Subtitle.Format)
		}
		r, err := p.ProcessFile(ctx, input, output)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return res, err
			}
			log.Error().Err(err).Str("file", input).Msg("failed")
			res.Failed = append(res.Failed, input)
			continue
		}
		res.Succeeded = append(res.Succeeded, r.Output)
	}
	return res, nil
}

// Watch polls dir every watch interval and processes each new media file
// once. Files present at start are processed too. It returns when ctx is
// cancelled.
func (p *Pipeline) Watch(ctx context.Context, dir, outputDir string) error {
	log := logging.WithComponent("watch")

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	interval := time.Duration(p.config.Watch.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	processed := make(map[string]bool)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		files, err := scanDir(dir, p.config.Watch.Extensions)
		if err != nil {
			return err
		}
		for _, f := range files {
			if processed[f] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil
			}
			log.Info().Str("file", filepath.Base(f)).Msg("new file detected")

			output := ""
			if outputDir != "" {
				output = OutputPath(f, outputDir, p.config.Subtitle.Format)
			}
			if _, err := p.ProcessFile(ctx, f, output); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error().Err(err).Str("file", f).Msg("failed")
			}
			processed[f] = true
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// scanDir lists regular files in dir whose extension is in exts, sorted.
func scanDir(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read watch directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if slices.ContainsFunc(exts, func(x string) bool { return strings.EqualFold(x, ext) }) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
