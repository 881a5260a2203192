// Package ai turns audio and video files into subtitle files: convert to
// PCM, find speech, transcribe each group of speech regions through an
// external service and render the assembled segments.
package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/guiyumin/vsub/internal/core/ai/transcriber"
	"github.com/guiyumin/vsub/internal/core/ai/translator"
	"github.com/guiyumin/vsub/internal/core/audio"
	"github.com/guiyumin/vsub/internal/core/config"
	"github.com/guiyumin/vsub/internal/core/progress"
	"github.com/guiyumin/vsub/internal/core/segment"
	"github.com/guiyumin/vsub/internal/core/subtitle"
	"github.com/guiyumin/vsub/internal/core/vad"
	"github.com/guiyumin/vsub/internal/logging"
)

// ErrNoSpeech is returned when the detector finds no speech in a file.
var ErrNoSpeech = errors.New("no speech detected")

// bilingualLineWidth keeps each language of a bilingual cue on one line.
const bilingualLineWidth = 2000

// Observer receives progress for one file. progress.Spinner implements it.
type Observer interface {
	Start()
	SetStage(stage string)
	SetProgress(done, total int)
	Stop(err error)
}

type nopObserver struct{}

func (nopObserver) Start()               {}
func (nopObserver) SetStage(string)      {}
func (nopObserver) SetProgress(int, int) {}
func (nopObserver) Stop(error)           {}

// Options configures the pipeline processing.
type Options struct {
	// TargetLang enables the translation pass when set.
	TargetLang string
	// Bilingual keeps the original text above the translation.
	Bilingual bool
	// Observe returns the observer for an input file. Nil disables
	// progress reporting.
	Observe func(input string) Observer
}

// Result contains the output of processing one file.
type Result struct {
	Input          string
	Output         string
	Regions        []vad.Region
	Groups         []vad.Group
	Segments       []segment.Segment
	FailedChunks   int
	SpeechDuration float64
}

// Pipeline processes audio/video files into subtitles.
type Pipeline struct {
	config      *config.Config
	opts        Options
	transcriber transcriber.Transcriber
	translator  translator.Translator
}

// NewPipeline creates a pipeline from configuration. A translator is only
// built when opts.TargetLang is set.
func NewPipeline(cfg *config.Config, opts Options) (*Pipeline, error) {
	t, err := transcriber.New(cfg.Transcription)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	var tl translator.Translator
	if opts.TargetLang != "" {
		tl, err = translator.New(cfg.Translation)
		if err != nil {
			return nil, fmt.Errorf("failed to create translator: %w", err)
		}
	}

	return newPipeline(cfg, opts, t, tl), nil
}

func newPipeline(cfg *config.Config, opts Options, t transcriber.Transcriber, tl translator.Translator) *Pipeline {
	return &Pipeline{
		config:      cfg,
		opts:        opts,
		transcriber: t,
		translator:  tl,
	}
}

// Transcriber returns the configured transcription service.
func (p *Pipeline) Transcriber() transcriber.Transcriber {
	return p.transcriber
}

func (p *Pipeline) observer(input string) Observer {
	if p.opts.Observe == nil {
		return nopObserver{}
	}
	if o := p.opts.Observe(input); o != nil {
		return o
	}
	return nopObserver{}
}

// DetectorOptions maps the vad config section onto detector settings.
func DetectorOptions(cfg config.VADConfig) vad.DetectorOptions {
	return vad.DetectorOptions{
		FrameWidth:                cfg.FrameWidth,
		MinRegionSize:             cfg.MinRegionSize,
		MaxRegionSize:             cfg.MaxRegionSize,
		EnergyThresholdPercentile: cfg.EnergyThresholdPercentile,
	}
}

// GroupOptions maps the vad config section onto grouping settings.
func GroupOptions(cfg config.VADConfig) vad.GroupOptions {
	return vad.GroupOptions{
		MaxGroupDuration: cfg.MaxGroupDuration,
		MaxGap:           cfg.MaxGap,
	}
}

// ProcessFile transcribes input and writes the subtitle file. An empty
// output derives the path from the input and the configured output dir.
func (p *Pipeline) ProcessFile(ctx context.Context, input, output string) (result *Result, err error) {
	log := logging.WithFile("pipeline", input)

	if _, err := os.Stat(input); err != nil {
		return nil, fmt.Errorf("input not found: %w", err)
	}
	if !audio.IsSupported(input) {
		return nil, fmt.Errorf("%s: %w", filepath.Ext(input), audio.ErrUnsupportedFormat)
	}
	if output == "" {
		output = OutputPath(input, p.config.OutputDir, p.config.Subtitle.Format)
	}

	obs := p.observer(input)
	obs.Start()
	defer func() { obs.Stop(err) }()

	work, err := os.MkdirTemp(p.config.Audio.TempDir, "vsub-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	if p.config.Audio.KeepTemp {
		log.Info().Str("dir", work).Msg("keeping intermediate files")
	} else {
		defer os.RemoveAll(work)
	}

	obs.SetStage(progress.StageConverting)
	wavPath := filepath.Join(work, "audio.wav")
	if err := audio.Convert(ctx, input, wavPath, p.config.Audio.SampleRate, p.config.Audio.Channels); err != nil {
		return nil, fmt.Errorf("failed to convert audio: %w", err)
	}

	obs.SetStage(progress.StageDetecting)
	regions, duration, err := detect(wavPath, p.config.VAD)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, ErrNoSpeech
	}
	groups := vad.GroupRegions(regions, GroupOptions(p.config.VAD))

	result = &Result{Input: input, Output: output, Regions: regions, Groups: groups}
	for _, r := range regions {
		result.SpeechDuration += r.Duration()
	}
	log.Info().
		Int("regions", len(regions)).
		Int("groups", len(groups)).
		Float64("speech_seconds", segment.Round3(result.SpeechDuration)).
		Msg("speech detected")

	chunker := NewChunker(work)
	manifest, err := chunker.Split(input, wavPath, duration, groups)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("run", manifest.RunID).Logger()
	log.Debug().Int("chunks", len(manifest.Chunks)).Msg("chunks extracted")

	obs.SetStage(progress.StageTranscribing)
	segs, err := p.transcribeGroups(ctx, manifest, groups, obs)
	if werr := chunker.WriteManifest(manifest); werr != nil {
		log.Debug().Err(werr).Msg("failed to update manifest")
	}
	if err != nil {
		return nil, err
	}
	result.FailedChunks = manifest.Count(ChunkFailed)
	if len(segs) == 0 {
		return nil, fmt.Errorf("no segments produced from %d chunks", len(manifest.Chunks))
	}

	if p.translator != nil {
		obs.SetStage(progress.StageTranslating)
		segs = p.translate(ctx, segs)
	}
	result.Segments = segs

	obs.SetStage(progress.StageWriting)
	if err := p.write(input, output, segs); err != nil {
		return nil, fmt.Errorf("failed to write subtitles: %w", err)
	}

	log.Info().Str("output", output).Int("segments", len(segs)).Msg("subtitles written")
	return result, nil
}

// detect runs the region detector over a converted WAV.
func detect(wavPath string, cfg config.VADConfig) ([]vad.Region, float64, error) {
	src, err := audio.OpenWAV(wavPath)
	if err != nil {
		return nil, 0, err
	}
	defer src.Close()

	regions, err := vad.Detect(src, DetectorOptions(cfg))
	if err != nil {
		return nil, 0, fmt.Errorf("speech detection failed: %w", err)
	}
	return regions, src.Info().Seconds(), nil
}

// transcribeGroups sends every chunk to the transcriber with bounded
// parallelism. Failed chunks are logged and skipped; only cancellation
// aborts the file.
func (p *Pipeline) transcribeGroups(ctx context.Context, m *Manifest, groups []vad.Group, obs Observer) ([]segment.Segment, error) {
	log := logging.WithFile("pipeline", m.Source)
	total := len(m.Chunks)
	results := make([][]segment.Segment, total)

	var done atomic.Int32
	obs.SetProgress(0, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.config.Concurrency, 1))

	for i := range m.Chunks {
		g.Go(func() error {
			chunk := &m.Chunks[i]
			segs, err := p.transcribeChunk(gctx, *chunk, groups[i], total)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				chunk.Status = ChunkFailed
				log.Warn().Err(err).Int("chunk", chunk.Index).Msg("chunk transcription failed, skipping")
			} else {
				chunk.Status = ChunkTranscribed
				results[i] = segs
			}
			obs.SetProgress(int(done.Add(1)), total)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []segment.Segment
	for _, segs := range results {
		all = append(all, segs...)
	}
	return all, nil
}

func (p *Pipeline) transcribeChunk(ctx context.Context, chunk ChunkInfo, group vad.Group, total int) ([]segment.Segment, error) {
	req := transcriber.Request{
		AudioPath: chunk.FilePath,
		Language:  p.config.Transcription.Language,
		Duration:  chunk.End - chunk.Start,
		Label:     fmt.Sprintf("chunk %d/%d", chunk.Index, total),
	}

	if p.config.Transcription.Timestamps == config.TimestampsModel {
		spans, err := p.transcriber.TranscribeSpans(ctx, req)
		if err != nil {
			return nil, err
		}
		segs := make([]segment.Segment, 0, len(spans))
		for _, s := range spans {
			segs = append(segs, segment.Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)})
		}
		return segment.Shift(segs, group.Start), nil
	}

	// Region times are already absolute.
	texts, err := p.transcriber.TranscribeTexts(ctx, req, len(group.Regions))
	if err != nil {
		return nil, err
	}
	return segment.Build(group.Regions, texts), nil
}

// translate replaces (or, in bilingual mode, augments) segment texts. On
// failure the original texts are kept.
func (p *Pipeline) translate(ctx context.Context, segs []segment.Segment) []segment.Segment {
	log := logging.WithComponent("pipeline")

	texts := make([]string, len(segs))
	for i, s := range segs {
		texts[i] = s.Text
	}

	translated, err := p.translator.Translate(ctx, texts, p.opts.TargetLang)
	if err != nil {
		log.Warn().Err(err).Str("provider", p.translator.Name()).Msg("translation failed, keeping original text")
		return segs
	}

	out := make([]segment.Segment, len(segs))
	for i, s := range segs {
		out[i] = s
		if p.opts.Bilingual {
			out[i].Text = translator.Bilingual(s.Text, translated[i])
		} else {
			out[i].Text = translated[i]
		}
	}
	return out
}

func (p *Pipeline) write(input, output string, segs []segment.Segment) error {
	maxChars := p.config.Subtitle.MaxCharsPerLine
	if p.translator != nil && p.opts.Bilingual {
		maxChars = bilingualLineWidth
	}
	f := subtitle.NewFormatter(maxChars, p.config.Subtitle.MaxLinesPerBlock)

	switch formatFor(output, p.config.Subtitle.Format) {
	case config.FormatVTT:
		return f.SaveVTT(output, segs)
	case config.FormatMarkdown:
		return subtitle.SaveMarkdown(output, input, segs)
	default:
		if p.config.Subtitle.Overlap > 0 {
			segs = subtitle.ApplyOverlap(segs, p.config.Subtitle.Overlap)
		}
		return f.Save(output, segs)
	}
}

// formatFor picks the output format from the file extension, falling back
// to the configured one.
func formatFor(output, configured string) string {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".srt":
		return config.FormatSRT
	case ".vtt":
		return config.FormatVTT
	case ".md":
		return config.FormatMarkdown
	}
	return configured
}

// OutputPath derives the subtitle path for input: same directory and base
// name unless outputDir is set, with the extension of format.
func OutputPath(input, outputDir, format string) string {
	if format == "" {
		format = config.FormatSRT
	}
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(filepath.Base(input), ext) + "." + format
	if outputDir != "" {
		return filepath.Join(outputDir, base)
	}
	return filepath.Join(filepath.Dir(input), base)
}
