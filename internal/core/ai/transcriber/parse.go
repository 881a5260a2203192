package transcriber

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexAny(s, "\n[{\""); i >= 0 {
		s = s[i:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeLoose unmarshals the reply as JSON, falling back to the outermost
// [...] substring when the model wrapped the array in prose.
func decodeLoose(raw string) (any, error) {
	text := stripFences(raw)

	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v, nil
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &v); err == nil {
			return v, nil
		}
	}

	snippet := text
	if len(snippet) > 200 {
		snippet = snippet[:200] + "..."
	}
	return nil, fmt.Errorf("%w: %s", ErrUnparseableResponse, snippet)
}

// ParseSpans extracts timed spans from a model reply. Elements missing a
// numeric start, a numeric end or a string text are skipped.
func ParseSpans(raw string) ([]Span, error) {
	v, err := decodeLoose(raw)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an array", ErrUnparseableResponse)
	}

	var spans []Span
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		start, ok1 := number(obj["start"])
		end, ok2 := number(obj["end"])
		text, ok3 := obj["text"].(string)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		spans = append(spans, Span{Start: start, End: end, Text: text})
	}
	return spans, nil
}

// ParseTexts extracts a list of transcripts from a model reply. A JSON
// value that is not an array becomes a single text; non-string elements are
// rendered as JSON.
func ParseTexts(raw string) ([]string, error) {
	v, err := decodeLoose(raw)
	if err != nil {
		return nil, err
	}

	items, ok := v.([]any)
	if !ok {
		return []string{stringify(v)}, nil
	}
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = stringify(item)
	}
	return texts, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
