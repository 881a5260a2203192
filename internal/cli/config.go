package cli

import (
	"fmt"
	"strings"

	"github.com/guiyumin/vsub/internal/core/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage vsub configuration",
	Long:  "View and modify vsub settings stored in config.yml",
}

// vsub config show - show current config
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadOrDefault()
		cfg.ApplyEnv()

		fmt.Println("Current configuration:")
		fmt.Printf("  Config:      %s\n", config.SavePath())
		fmt.Printf("  OutputDir:   %s\n", cfg.OutputDir)
		fmt.Printf("  Concurrency: %d\n", cfg.Concurrency)

		fmt.Println("\nTranscription:")
		fmt.Printf("  provider:   %s\n", cfg.Transcription.Provider)
		fmt.Printf("  model:      %s\n", cfg.Transcription.Model)
		fmt.Printf("  language:   %s\n", cfg.Transcription.Language)
		fmt.Printf("  timestamps: %s\n", cfg.Transcription.Timestamps)
		fmt.Printf("  api_key:    %s\n", config.MaskSecret(cfg.Transcription.APIKey))

		fmt.Println("\nTranslation:")
		fmt.Printf("  provider: %s\n", cfg.Translation.Provider)
		fmt.Printf("  model:    %s\n", cfg.Translation.Model)
		fmt.Printf("  api_key:  %s\n", config.MaskSecret(cfg.Translation.APIKey))

		v := cfg.VAD
		fmt.Println("\nVAD:")
		fmt.Printf("  frame_width: %d, min_region_size: %g, max_region_size: %g\n", v.FrameWidth, v.MinRegionSize, v.MaxRegionSize)
		fmt.Printf("  energy_threshold_percentile: %g\n", v.EnergyThresholdPercentile)
		fmt.Printf("  max_group_duration: %g, max_gap: %g\n", v.MaxGroupDuration, v.MaxGap)

		s := cfg.Subtitle
		fmt.Println("\nSubtitle:")
		fmt.Printf("  format: %s, max_chars_per_line: %d, max_lines_per_block: %d, overlap: %g\n",
			s.Format, s.MaxCharsPerLine, s.MaxLinesPerBlock, s.Overlap)
	},
}

// vsub config path - show config file path
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.SavePath())
	},
}

// vsub config set KEY VALUE - set a config value
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in config.yml.

Supported keys:
` + keyList() + `
Examples:
  vsub config set transcription.language en
  vsub config set vad.max_gap 1.5
  vsub config set translation.provider anthropic`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		cfg := config.LoadOrDefault()
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid value for %s:\n%w", key, err)
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

// vsub config get KEY - get a config value
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value from config.yml.

Supported keys:
` + keyList() + `
Examples:
  vsub config get transcription.model
  vsub config get subtitle.format`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.LoadOrDefault().Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

func keyList() string {
	var b strings.Builder
	for _, k := range config.Keys() {
		fmt.Fprintf(&b, "  %s\n", k)
	}
	return b.String()
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)

}
