package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/guiyumin/vsub/internal/core/ai"
	"github.com/guiyumin/vsub/internal/core/config"
	"github.com/guiyumin/vsub/internal/core/progress"
	"github.com/guiyumin/vsub/internal/core/version"
	"github.com/guiyumin/vsub/internal/logging"
)

// pipelineFlags are the flags shared by every command that transcribes.
type pipelineFlags struct {
	outputDir   string
	language    string
	translate   string
	bilingual   bool
	keepTemp    bool
	verbose     bool
	format      string
	overlap     float64
	concurrency int
	timestamps  string
}

var (
	output string
	flags  pipelineFlags
)

var rootCmd = &cobra.Command{
	Use:   "vsub [files or directories...]",
	Short: "Generate subtitles for audio and video files",
	Long: `Generate SRT subtitles for audio and video files.

Speech is located with an energy based detector, grouped into chunks and
sent to a transcription service. Directories are expanded to the supported
media files they contain.

Examples:
  vsub talk.mp3
  vsub talk.mp3 -o subs/talk.srt
  vsub lecture.mp4 -l en -t zh --bilingual
  vsub ./recordings --output-dir ./subs -j 8
  vsub interview.wav --format vtt --timestamps model`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runTranscribe(cmd, args)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "output file (single input only)")
	bindPipelineFlags(rootCmd)
}

// bindPipelineFlags registers the shared flags as persistent flags on cmd.
func bindPipelineFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&flags.outputDir, "output-dir", "", "directory for subtitle files (default: next to the input)")
	f.StringVarP(&flags.language, "language", "l", "", "source language code, or auto")
	f.StringVarP(&flags.translate, "translate", "t", "", "translate subtitles to this language")
	f.BoolVarP(&flags.bilingual, "bilingual", "b", false, "keep the original text above the translation")
	f.BoolVar(&flags.keepTemp, "keep-temp", false, "keep converted audio, chunks and manifest")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")
	f.StringVar(&flags.format, "format", "", "output format: srt, vtt or md")
	f.Float64Var(&flags.overlap, "overlap", 0, "trim each cue to end this many seconds before the next")
	f.IntVarP(&flags.concurrency, "concurrency", "j", 0, "chunks transcribed in parallel")
	f.StringVar(&flags.timestamps, "timestamps", "", "timestamp source: vad or model")
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

// loadConfig loads the config file, applies environment and flag
// overrides, validates the result and sets up logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		if config.Exists() {
			return nil, err
		}
		printWarn("config file not found, using defaults. Run 'vsub init' to create one.")
		cfg = config.DefaultConfig()
	}
	cfg.ApplyEnv()
	applyFlags(cmd, cfg)

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logging.Init(logCfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// applyFlags copies every flag the user set onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed

	if set("output-dir") {
		cfg.OutputDir = flags.outputDir
	}
	if set("language") {
		cfg.Transcription.Language = flags.language
	}
	if set("keep-temp") {
		cfg.Audio.KeepTemp = flags.keepTemp
	}
	if set("format") {
		cfg.Subtitle.Format = flags.format
	}
	if set("overlap") {
		cfg.Subtitle.Overlap = flags.overlap
	}
	if set("concurrency") {
		cfg.Concurrency = flags.concurrency
	}
	if set("timestamps") {
		cfg.Transcription.Timestamps = flags.timestamps
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newPipeline(cfg *config.Config) (*ai.Pipeline, error) {
	if flags.bilingual && flags.translate == "" {
		return nil, errors.New("--bilingual requires --translate")
	}

	opts := ai.Options{
		TargetLang: flags.translate,
		Bilingual:  flags.bilingual,
	}
	if !flags.verbose {
		model := cfg.Transcription.Model
		opts.Observe = func(input string) ai.Observer {
			return progress.New(filepath.Base(input), model)
		}
	}
	return ai.NewPipeline(cfg, opts)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	inputs, err := ai.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("no supported media files found")
	}
	if output != "" && len(inputs) > 1 {
		return errors.New("--output can only be used with a single input file")
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	printBanner(cfg, p.Transcriber().Name())

	ctx, stop := signalContext()
	defer stop()

	if len(inputs) == 1 {
		res, err := p.ProcessFile(ctx, inputs[0], output)
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	}

	batch, err := p.ProcessBatch(ctx, inputs, cfg.OutputDir)
	if batch != nil {
		printSummary(batch)
	}
	if err != nil {
		return err
	}
	if len(batch.Succeeded) == 0 {
		return fmt.Errorf("all %d files failed", len(batch.Failed))
	}
	return nil
}
