package subtitle

import (
	"fmt"
	"strings"

	"github.com/guiyumin/vsub/internal/core/segment"
)

// FormatVTTTimestamp renders seconds as HH:MM:SS.mmm.
func FormatVTTTimestamp(seconds float64) string {
	h, m, s, ms := splitTime(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// GenerateVTT renders segs as a WebVTT document using the same line
// wrapping as the SRT output.
func (f Formatter) GenerateVTT(segs []segment.Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n")
	for _, seg := range segs {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s --> %s\n", FormatVTTTimestamp(seg.Start), FormatVTTTimestamp(seg.End))
		for _, line := range f.Wrap(seg.Text) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// SaveVTT writes the WebVTT document for segs to path.
func (f Formatter) SaveVTT(path string, segs []segment.Segment) error {
	return writeFile(path, f.GenerateVTT(segs))
}
