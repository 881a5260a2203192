// Package transcriber adapts speech-to-text services to the two calls the
// subtitle pipeline needs: timed spans for a chunk, or one text per known
// speech region.
package transcriber

import (
	"context"
	"errors"
	"fmt"

	"github.com/guiyumin/vsub/internal/core/config"
)

var (
	// ErrNoAPIKey is returned when a provider is built without credentials.
	ErrNoAPIKey = errors.New("API key not provided")

	// ErrUnparseableResponse is returned when a model reply holds no JSON
	// array.
	ErrUnparseableResponse = errors.New("could not parse JSON response")
)

// Span is a piece of transcript timed relative to the start of its chunk.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Request describes one chunk of audio to transcribe.
type Request struct {
	AudioPath string
	Language  string  // ISO 639-1 or "auto"
	Duration  float64 // seconds, used as a prompt hint
	Label     string  // e.g. "chunk 3/16", for logs
}

// Transcriber converts audio chunks to text.
type Transcriber interface {
	// TranscribeSpans returns timed spans for the whole chunk.
	TranscribeSpans(ctx context.Context, req Request) ([]Span, error)

	// TranscribeTexts returns the text of each of the n speech regions in
	// the chunk, in order. Implementations may return a different count;
	// callers must cope with that.
	TranscribeTexts(ctx context.Context, req Request, n int) ([]string, error)

	// Name returns the provider name.
	Name() string
}

// New creates a new Transcriber based on configuration.
func New(cfg config.TranscriptionConfig) (Transcriber, error) {
	switch cfg.Provider {
	case config.ProviderWhisper:
		return NewWhisper(cfg)
	case config.ProviderOpenAIAudio, "":
		return NewOpenAIAudio(cfg)
	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", cfg.Provider)
	}
}
