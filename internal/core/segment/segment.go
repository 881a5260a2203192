// Package segment pairs detected speech regions with transcribed text.
package segment

import (
	"math"
	"strconv"
	"strings"

	"github.com/guiyumin/vsub/internal/core/vad"
)

// Segment is one timed piece of subtitle text, in seconds.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Duration returns End - Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Round3 rounds x to millisecond precision. Exact ties go to the even
// digit, so 0.0625 becomes 0.062.
func Round3(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 3, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// Assemble pairs regions with texts positionally. Blank texts are skipped,
// so no output segment ever carries empty text. Extra entries on either side
// are ignored.
func Assemble(regions []vad.Region, texts []string) []Segment {
	n := min(len(regions), len(texts))
	segments := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		text := strings.TrimSpace(texts[i])
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Start: Round3(regions[i].Start),
			End:   Round3(regions[i].End),
			Text:  text,
		})
	}
	return segments
}

// Distribute is the fallback for when the number of texts does not match
// the number of regions. All words are pooled and handed out to regions in
// proportion to each region's share of the total speech duration. Every
// region receives at least one word while words remain; leftovers land on
// the last segment.
func Distribute(regions []vad.Region, texts []string) []Segment {
	if len(regions) == 0 || len(texts) == 0 {
		return nil
	}

	var nonEmpty []string
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	words := strings.Fields(strings.Join(nonEmpty, " "))

	var total float64
	for _, r := range regions {
		total += r.Duration()
	}
	if total <= 0 || len(words) == 0 {
		return nil
	}

	var segments []Segment
	idx := 0
	for _, r := range regions {
		share := r.Duration() / total
		count := max(1, int(math.RoundToEven(float64(len(words))*share)))

		lo := min(idx, len(words))
		hi := min(idx+count, len(words))
		if lo < hi {
			segments = append(segments, Segment{
				Start: Round3(r.Start),
				End:   Round3(r.End),
				Text:  strings.Join(words[lo:hi], " "),
			})
		}
		idx += count
	}

	if idx < len(words) && len(segments) > 0 {
		last := &segments[len(segments)-1]
		last.Text += " " + strings.Join(words[idx:], " ")
	}
	return segments
}

// Build assembles texts onto regions, falling back to Distribute when the
// counts differ.
func Build(regions []vad.Region, texts []string) []Segment {
	if len(texts) == len(regions) {
		return Assemble(regions, texts)
	}
	return Distribute(regions, texts)
}

// Shift returns a copy of segs moved by offset seconds.
func Shift(segs []Segment, offset float64) []Segment {
	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i] = Segment{
			Start: s.Start + offset,
			End:   s.End + offset,
			Text:  s.Text,
		}
	}
	return out
}
