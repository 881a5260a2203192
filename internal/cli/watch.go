package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a folder and transcribe new media files",
	Long: `Poll a folder and generate subtitles for every media file that
appears in it. Files already present when watching starts are processed
too. Press Ctrl+C to stop.

The poll interval and the watched extensions come from the watch section
of the config file.

Examples:
  vsub watch ~/Recordings
  vsub watch ./inbox --output-dir ./subs -t en`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("not a directory: %s", dir)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		printBanner(cfg, p.Transcriber().Name())

		out := cfg.OutputDir
		if out == "" {
			out = "same as input"
		}
		cyan := color.New(color.FgCyan)
		cyan.Fprintf(os.Stderr, "Watching %s\n", dir)
		fmt.Fprintf(os.Stderr, "  Output:     %s\n", out)
		fmt.Fprintf(os.Stderr, "  Extensions: %s\n", strings.Join(cfg.Watch.Extensions, ","))
		fmt.Fprintf(os.Stderr, "  Interval:   %ds\n\n", cfg.Watch.IntervalSeconds)
		fmt.Fprintln(os.Stderr, "Waiting for media files... (Press Ctrl+C to stop)")

		ctx, stop := signalContext()
		defer stop()

		if err := p.Watch(ctx, dir, cfg.OutputDir); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "\nStopped watching.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
