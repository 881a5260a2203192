package transcriber

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/guiyumin/vsub/internal/core/config"
	"github.com/guiyumin/vsub/internal/logging"
)

// Whisper implements Transcriber using the OpenAI Whisper API.
type Whisper struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewWhisper creates a new Whisper transcriber.
func NewWhisper(cfg config.TranscriptionConfig) (*Whisper, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("whisper: %w", ErrNoAPIKey)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	return &Whisper{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		temperature: float32(cfg.Temperature),
	}, nil
}

// Name returns the provider name.
func (w *Whisper) Name() string {
	return config.ProviderWhisper
}

func (w *Whisper) transcribe(ctx context.Context, req Request) (openai.AudioResponse, error) {
	areq := openai.AudioRequest{
		Model:       w.model,
		FilePath:    req.AudioPath,
		Temperature: w.temperature,
		Format:      openai.AudioResponseFormatVerboseJSON,
	}
	if req.Language != "" && req.Language != "auto" {
		areq.Language = req.Language
	}

	resp, err := w.client.CreateTranscription(ctx, areq)
	if err != nil {
		return resp, fmt.Errorf("transcription API error: %w", err)
	}
	return resp, nil
}

// TranscribeSpans converts a chunk to timed spans using the response
// segments.
func (w *Whisper) TranscribeSpans(ctx context.Context, req Request) ([]Span, error) {
	resp, err := w.transcribe(ctx, req)
	if err != nil {
		return nil, err
	}

	spans := make([]Span, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		spans = append(spans, Span{Start: seg.Start, End: seg.End, Text: text})
	}
	if len(spans) == 0 && strings.TrimSpace(resp.Text) != "" {
		spans = append(spans, Span{Start: 0, End: resp.Duration, Text: strings.TrimSpace(resp.Text)})
	}

	log := logging.WithComponent("transcriber")
	log.Debug().Str("chunk", req.Label).Str("language", resp.Language).Int("spans", len(spans)).Msg("whisper response")
	return spans, nil
}

// TranscribeTexts returns one text per response segment. Whisper segments
// its output on its own, so the count rarely equals n.
func (w *Whisper) TranscribeTexts(ctx context.Context, req Request, n int) ([]string, error) {
	spans, err := w.TranscribeSpans(ctx, req)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(spans))
	for i, s := range spans {
		texts[i] = s.Text
	}
	return texts, nil
}
