// Package subtitle renders timed segments as SRT or WebVTT documents.
package subtitle

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/guiyumin/vsub/internal/core/segment"
)

// Formatter lays out SRT blocks.
type Formatter struct {
	MaxCharsPerLine  int
	MaxLinesPerBlock int
}

// NewFormatter returns a Formatter, substituting defaults for non-positive
// limits.
func NewFormatter(maxChars, maxLines int) Formatter {
	if maxChars <= 0 {
		maxChars = 40
	}
	if maxLines <= 0 {
		maxLines = 2
	}
	return Formatter{MaxCharsPerLine: maxChars, MaxLinesPerBlock: maxLines}
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Milliseconds are
// truncated, not rounded. Hours are not capped at 99; negative input is
// clamped to zero.
func FormatTimestamp(seconds float64) string {
	h, m, s, ms := splitTime(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func splitTime(seconds float64) (h, m, s, ms int) {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	h = int(seconds / 3600)
	m = int(math.Mod(seconds, 3600) / 60)
	s = int(math.Mod(seconds, 60))
	ms = int(math.Mod(seconds, 1) * 1000)
	return h, m, s, ms
}

var timestampRe = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2}),(\d{3})`)

// ParseTimestamp is the inverse of FormatTimestamp. Malformed input yields 0.
func ParseTimestamp(ts string) float64 {
	match := timestampRe.FindStringSubmatch(strings.TrimSpace(ts))
	if match == nil {
		return 0
	}
	h, _ := strconv.Atoi(match[1])
	m, _ := strconv.Atoi(match[2])
	s, _ := strconv.Atoi(match[3])
	ms, _ := strconv.Atoi(match[4])
	return float64(h*3600+m*60+s) + float64(ms)/1000
}

// Wrap breaks text into lines of at most MaxCharsPerLine characters.
// Explicit newlines start a new paragraph, runs of whitespace collapse to a
// single space and empty paragraphs vanish. A word longer than the limit is
// kept whole on its own line.
func (f Formatter) Wrap(text string) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}

		var cur strings.Builder
		curLen := 0
		for _, w := range words {
			wl := utf8.RuneCountInString(w)
			if curLen == 0 {
				cur.WriteString(w)
				curLen = wl
				continue
			}
			if curLen+1+wl <= f.MaxCharsPerLine {
				cur.WriteByte(' ')
				cur.WriteString(w)
				curLen += 1 + wl
				continue
			}
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(w)
			curLen = wl
		}
		lines = append(lines, cur.String())
	}
	return lines
}

// SplitBlocks chunks lines into groups of at most MaxLinesPerBlock.
func (f Formatter) SplitBlocks(lines []string) [][]string {
	size := max(1, f.MaxLinesPerBlock)
	var blocks [][]string
	for i := 0; i < len(lines); i += size {
		blocks = append(blocks, lines[i:min(i+size, len(lines))])
	}
	return blocks
}

// Block renders a single SRT entry, terminated by a newline.
func (f Formatter) Block(index int, seg segment.Segment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n%s --> %s\n", index, FormatTimestamp(seg.Start), FormatTimestamp(seg.End))
	for _, line := range f.Wrap(seg.Text) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Generate renders segs as an SRT document. Segments with blank text are
// skipped and the remaining blocks are numbered 1..n without gaps. Blocks are
// separated by one blank line.
func (f Formatter) Generate(segs []segment.Segment) string {
	var blocks []string
	idx := 0
	for _, seg := range segs {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		idx++
		blocks = append(blocks, f.Block(idx, seg))
	}
	return strings.Join(blocks, "\n")
}

// GenerateWithOverlap is Generate after pulling each segment's end back so
// it finishes at least overlap seconds before the next one starts.
func (f Formatter) GenerateWithOverlap(segs []segment.Segment, overlap float64) string {
	return f.Generate(ApplyOverlap(segs, overlap))
}

// ApplyOverlap returns a copy of segs where every segment but the last ends
// no later than the next start minus overlap.
func ApplyOverlap(segs []segment.Segment, overlap float64) []segment.Segment {
	out := make([]segment.Segment, len(segs))
	copy(out, segs)
	for i := 0; i < len(out)-1; i++ {
		out[i].End = min(out[i].End, out[i+1].Start-overlap)
	}
	return out
}

// Save writes the SRT document for segs to path as UTF-8, creating parent
// directories as needed.
func (f Formatter) Save(path string, segs []segment.Segment) error {
	return writeFile(path, f.Generate(segs))
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
