package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guiyumin/vsub/internal/core/segment"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00,000"},
		{2.5, "00:00:02,500"},
		{61.25, "00:01:01,250"},
		{3661.5, "01:01:01,500"},
		{0.9999, "00:00:00,999"},
		{360000, "100:00:00,000"},
		{-3, "00:00:00,000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, FormatTimestamp(tt.in))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	require.Equal(t, 3661.5, ParseTimestamp("01:01:01,500"))
	require.Equal(t, 360000.25, ParseTimestamp("100:00:00,250"))
	require.Equal(t, 0.0, ParseTimestamp("garbage"))
	require.Equal(t, 0.0, ParseTimestamp("1:02:03,004"))
	require.Equal(t, 0.0, ParseTimestamp(""))
}

// Milliseconds are truncated, so a value just below a millisecond boundary
// in binary (4.21 is 4.20999...) formats one millisecond low. The round trip
// therefore holds to within one millisecond inclusive, not strictly below it.
func TestTimestampRoundTripTruncatesMilliseconds(t *testing.T) {
	require.Equal(t, "00:00:04,209", FormatTimestamp(4.21))
	require.InDelta(t, 0.001, 4.21-ParseTimestamp(FormatTimestamp(4.21)), 1e-9)

	values := []float64{0, 0.001, 0.5, 1.999, 59.9995, 60, 3599.999, 3600, 86399.123, 359999.999}
	for i := 0; i < 500; i++ {
		values = append(values, float64(i)*719.7331)
	}

	for _, v := range values {
		back := ParseTimestamp(FormatTimestamp(v))
		require.InDelta(t, v, back, 0.001+1e-9, "value %v", v)
	}
}

func TestWrap(t *testing.T) {
	f := Formatter{MaxCharsPerLine: 10, MaxLinesPerBlock: 2}

	require.Equal(t, []string{"one two", "three four", "five"}, f.Wrap("one two three four five"))
	require.Equal(t, []string{"a", "b c"}, f.Wrap("a\n\n  b   c  "))
	require.Equal(t, []string{"supercalifragilistic", "x"}, f.Wrap("supercalifragilistic x"))
	require.Empty(t, f.Wrap("  \n \t "))

	// width is counted in characters, not bytes
	require.Equal(t, []string{"ééééé ééé"}, f.Wrap("ééééé ééé"))
}

func TestSplitBlocks(t *testing.T) {
	f := Formatter{MaxCharsPerLine: 10, MaxLinesPerBlock: 2}
	require.Equal(t, [][]string{{"a", "b"}, {"c"}}, f.SplitBlocks([]string{"a", "b", "c"}))
	require.Empty(t, f.SplitBlocks(nil))
}

func TestNewFormatterDefaults(t *testing.T) {
	f := NewFormatter(0, 0)
	require.Equal(t, 40, f.MaxCharsPerLine)
	require.Equal(t, 2, f.MaxLinesPerBlock)

	// 41 characters no longer fit on one line
	text := strings.Repeat("a", 20) + " " + strings.Repeat("b", 20)
	require.Equal(t, []string{strings.Repeat("a", 20), strings.Repeat("b", 20)}, f.Wrap(text))
	require.Equal(t, []string{text}, NewFormatter(41, 2).Wrap(text))
}

func TestGenerate(t *testing.T) {
	f := NewFormatter(0, 0)

	t.Run("single segment", func(t *testing.T) {
		doc := f.Generate([]segment.Segment{{Start: 0, End: 2.5, Text: "Hello there"}})
		require.True(t, strings.HasPrefix(doc, "1\n00:00:00,000 --> 00:00:02,500\nHello there\n"))
	})

	t.Run("blank segments are skipped and numbering is dense", func(t *testing.T) {
		doc := f.Generate([]segment.Segment{
			{Start: 0, End: 1, Text: "first"},
			{Start: 1, End: 2, Text: "   "},
			{Start: 2, End: 3, Text: "third"},
		})
		require.Equal(t,
			"1\n00:00:00,000 --> 00:00:01,000\nfirst\n"+
				"\n"+
				"2\n00:00:02,000 --> 00:00:03,000\nthird\n",
			doc)
	})

	t.Run("empty input", func(t *testing.T) {
		require.Equal(t, "", f.Generate(nil))
	})
}

func TestGenerateWithOverlap(t *testing.T) {
	f := NewFormatter(40, 2)
	segs := []segment.Segment{
		{Start: 0, End: 2.0, Text: "a"},
		{Start: 1.5, End: 3.0, Text: "b"},
	}

	doc := f.GenerateWithOverlap(segs, 0.25)
	require.Contains(t, doc, "00:00:00,000 --> 00:00:01,250")
	require.Contains(t, doc, "00:00:01,500 --> 00:00:03,000")
	require.Equal(t, 2.0, segs[0].End, "input must be untouched")
}

func TestSave(t *testing.T) {
	f := NewFormatter(40, 2)
	path := filepath.Join(t.TempDir(), "nested", "out.srt")

	segs := []segment.Segment{{Start: 0, End: 1, Text: "héllo"}}
	require.NoError(t, f.Save(path, segs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, f.Generate(segs), string(data))
}

func TestGenerateVTT(t *testing.T) {
	f := NewFormatter(40, 2)
	doc := f.GenerateVTT([]segment.Segment{
		{Start: 0, End: 1.25, Text: "hi"},
		{Start: 2, End: 3, Text: ""},
	})
	require.Equal(t, "WEBVTT\n\n00:00:00.000 --> 00:00:01.250\nhi\n", doc)
}
