package subtitle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guiyumin/vsub/internal/core/segment"
)

func TestGenerateMarkdown(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	doc := GenerateMarkdown("/media/talk.mp3", []segment.Segment{
		{Start: 1.2, End: 3, Text: "Hello\nthere"},
		{Start: 3, End: 4, Text: " "},
		{Start: 3725, End: 3730.5, Text: "Later on"},
	}, now)

	require.Equal(t, "# Transcript: talk.mp3\n\n"+
		"**Duration:** 1h 2m 10s\n"+
		"**Transcribed:** 2024-05-01 12:30:00\n"+
		"\n---\n\n"+
		"[00:01] Hello there\n\n"+
		"[01:02:05] Later on\n\n", doc)
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "0s", FormatDuration(0))
	require.Equal(t, "59s", FormatDuration(59.9))
	require.Equal(t, "2m 5s", FormatDuration(125))
	require.Equal(t, "1h 0m 1s", FormatDuration(3601))
}
