package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/guiyumin/vsub/internal/core/ai"
	"github.com/guiyumin/vsub/internal/core/subtitle"
)

// regionPreview caps how many regions `vsub vad` prints.
const regionPreview = 20

var vadCmd = &cobra.Command{
	Use:   "vad <file>",
	Short: "Show detected speech regions and groups",
	Long: `Run speech detection only and print the regions and the chunks they
would be grouped into. Useful for tuning the vad section of the config.

Examples:
  vsub vad talk.mp3
  vsub vad talk.mp3 -v`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		a, err := ai.Analyze(ctx, cfg, args[0])
		if err != nil {
			return err
		}
		printAnalysis(args[0], a)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vadCmd)
}

func printAnalysis(input string, a *ai.Analysis) {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	fmt.Println(headerStyle.Render(input))
	fmt.Printf("  Duration: %s, speech: %s\n\n",
		subtitle.FormatDuration(a.Duration), subtitle.FormatDuration(a.SpeechDuration()))

	fmt.Println(headerStyle.Render(fmt.Sprintf("Regions (%d)", len(a.Regions))))
	for i, r := range a.Regions {
		if i == regionPreview {
			fmt.Println(dimStyle.Render(fmt.Sprintf("  ... and %d more", len(a.Regions)-regionPreview)))
			break
		}
		fmt.Printf("  %3d. %s %s\n", i+1,
			timeStyle.Render(fmt.Sprintf("%8.2fs - %8.2fs", r.Start, r.End)),
			dimStyle.Render(fmt.Sprintf("(%.2fs)", r.Duration())))
	}

	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("Groups (%d)", len(a.Groups))))
	for i, g := range a.Groups {
		fmt.Printf("  %3d. %s %s\n", i+1,
			timeStyle.Render(fmt.Sprintf("%8.2fs - %8.2fs", g.Start, g.End)),
			dimStyle.Render(fmt.Sprintf("(%.2fs, %d regions)", g.Duration(), len(g.Regions))))
	}
}
