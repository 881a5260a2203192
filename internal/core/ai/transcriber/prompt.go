package transcriber

import (
	"fmt"
	"strings"
)

// LanguageNames maps the ISO 639-1 codes offered to users to English names.
var LanguageNames = map[string]string{
	"id": "Indonesian",
	"en": "English",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"ar": "Arabic",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"hi": "Hindi",
	"th": "Thai",
	"vi": "Vietnamese",
	"ms": "Malay",
	"nl": "Dutch",
	"pl": "Polish",
	"sv": "Swedish",
	"tr": "Turkish",
}

// LanguageName returns the English name for code, or code itself when it is
// not in the table.
func LanguageName(code string) string {
	if name, ok := LanguageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

func languageInstruction(lang string) string {
	if lang == "" || lang == "auto" {
		return "Detect the language automatically."
	}
	return fmt.Sprintf("Transcribe in %s.", LanguageName(lang))
}

// TextsPrompt asks for exactly n transcripts, one per speech region.
func TextsPrompt(lang string, n int) string {
	return fmt.Sprintf(`%s

Transcribe the following audio. The audio contains %d speech segments separated by silence.
Return the result as a JSON array of strings, where each element is the transcription of one speech segment, in order.

Example for 3 segments:
["First segment text here", "Second segment text here", "Third segment text here"]

Requirements:
- Return exactly %d strings in the array
- Each string corresponds to one speech segment in chronological order
- If a segment is unclear, transcribe your best guess
- Return ONLY valid JSON array, no other text
`, languageInstruction(lang), n, n)
}

// SpansPrompt asks for timed segments relative to the start of the chunk.
func SpansPrompt(lang string, duration float64) string {
	var b strings.Builder
	if lang != "" && lang != "auto" {
		fmt.Fprintf(&b, "The audio is in %s.\n", LanguageName(lang))
	}
	if duration > 0 {
		fmt.Fprintf(&b, "This audio is approximately %.0f seconds long. Timestamps must start near 0.0 and end near %.0f.\n", duration, duration)
	}
	b.WriteString(`Transcribe the audio perfectly. Return a JSON array of objects with keys: 'start' (float seconds), 'end' (float seconds), and 'text' (string).

Use this JSON format for the response:
[{"start": 0.0, "end": 2.5, "text": "Segment text"}]

Strictly follow this format. Do not include markdown code blocks.
Ensure timestamps are accurate.
`)
	return b.String()
}
