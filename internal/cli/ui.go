package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/guiyumin/vsub/internal/core/ai"
	"github.com/guiyumin/vsub/internal/core/config"
	"github.com/guiyumin/vsub/internal/core/subtitle"
	"github.com/guiyumin/vsub/internal/core/ai/transcriber"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))  // cyan
	summaryOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))             // green
	summaryFailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))            // red
	summaryDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))            // gray
	summaryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func printError(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
}

func printWarn(msg string) {
	fmt.Fprintln(os.Stderr, color.YellowString("Warning: %s", msg))
}

func printBanner(cfg *config.Config, provider string) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	bold.Fprintln(os.Stderr, "vsub")
	line := func(label, value string) {
		fmt.Fprintf(os.Stderr, "  %-12s ", label+":")
		cyan.Fprintln(os.Stderr, value)
	}
	line("Provider", provider)
	line("Model", cfg.Transcription.Model)
	line("Language", transcriber.LanguageName(cfg.Transcription.Language))
	line("Timestamps", cfg.Transcription.Timestamps)
	line("Format", cfg.Subtitle.Format)
	if flags.translate != "" {
		mode := "translate"
		if flags.bilingual {
			mode = "bilingual"
		}
		line("Translation", fmt.Sprintf("%s (%s, %s)", transcriber.LanguageName(flags.translate), mode, cfg.Translation.Provider))
	}
	fmt.Fprintln(os.Stderr)
}

func printResult(res *ai.Result) {
	green := color.New(color.FgGreen)
	green.Printf("✓ %s\n", res.Output)
	fmt.Printf("  %d segments from %d regions in %d chunks, %s of speech\n",
		len(res.Segments), len(res.Regions), len(res.Groups), subtitle.FormatDuration(res.SpeechDuration))
	if res.FailedChunks > 0 {
		color.Yellow("  %d chunk(s) failed and were skipped", res.FailedChunks)
	}
}

func printSummary(b *ai.BatchResult) {
	var lines []string
	lines = append(lines, summaryTitleStyle.Render("Batch summary"))
	lines = append(lines, fmt.Sprintf("%s  %s",
		summaryOKStyle.Render(fmt.Sprintf("%d succeeded", len(b.Succeeded))),
		summaryFailStyle.Render(fmt.Sprintf("%d failed", len(b.Failed)))))

	if len(b.Succeeded) > 0 {
		lines = append(lines, "", summaryDimStyle.Render("Generated:"))
		for _, s := range b.Succeeded {
			lines = append(lines, "  "+summaryOKStyle.Render("✓")+" "+s)
		}
	}
	if len(b.Failed) > 0 {
		lines = append(lines, "", summaryDimStyle.Render("Failed:"))
		for _, f := range b.Failed {
			lines = append(lines, "  "+summaryFailStyle.Render("✗")+" "+f)
		}
	}

	fmt.Println(summaryBoxStyle.Render(strings.Join(lines, "\n")))
}
