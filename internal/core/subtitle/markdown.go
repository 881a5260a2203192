package subtitle

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/guiyumin/vsub/internal/core/segment"
)

// GenerateMarkdown renders segs as a readable transcript with one
// timestamped paragraph per segment.
func GenerateMarkdown(source string, segs []segment.Segment, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Transcript: %s\n\n", filepath.Base(source))
	if n := len(segs); n > 0 {
		fmt.Fprintf(&b, "**Duration:** %s\n", FormatDuration(segs[n-1].End))
	}
	fmt.Fprintf(&b, "**Transcribed:** %s\n", now.Format("2006-01-02 15:04:05"))
	b.WriteString("\n---\n\n")

	for _, seg := range segs {
		text := strings.Join(strings.Fields(seg.Text), " ")
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "[%s] %s\n\n", formatClock(seg.Start), text)
	}
	return b.String()
}

// SaveMarkdown writes the markdown transcript for segs to path.
func SaveMarkdown(path, source string, segs []segment.Segment) error {
	return writeFile(path, GenerateMarkdown(source, segs, time.Now()))
}

// formatClock renders seconds as MM:SS, or HH:MM:SS past the first hour.
func formatClock(seconds float64) string {
	h, m, s, _ := splitTime(seconds)
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatDuration renders seconds in a short human form such as "1h 2m 3s".
func FormatDuration(seconds float64) string {
	h, m, s, _ := splitTime(seconds)
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
