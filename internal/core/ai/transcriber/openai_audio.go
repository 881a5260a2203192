package transcriber

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/guiyumin/vsub/internal/core/config"
	"github.com/guiyumin/vsub/internal/logging"
)

// OpenAIAudio implements Transcriber with an audio-capable chat model. The
// chunk is sent inline as base64 WAV together with a JSON instruction.
type OpenAIAudio struct {
	client      openai.Client
	model       openai.ChatModel
	temperature float64
	maxTokens   int64
}

// NewOpenAIAudio creates a new chat-based transcriber.
func NewOpenAIAudio(cfg config.TranscriptionConfig) (*OpenAIAudio, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai-audio: %w", ErrNoAPIKey)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := openai.ChatModel(cfg.Model)
	if cfg.Model == "" {
		model = openai.ChatModelGPT4oAudioPreview
	}

	maxTokens := int64(cfg.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	return &OpenAIAudio{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Name returns the provider name.
func (o *OpenAIAudio) Name() string {
	return config.ProviderOpenAIAudio
}

func (o *OpenAIAudio) complete(ctx context.Context, req Request, prompt string) (string, error) {
	data, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return "", fmt.Errorf("failed to read chunk: %w", err)
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.InputAudioContentPart(openai.ChatCompletionContentPartInputAudioInputAudioParam{
					Data:   base64.StdEncoding.EncodeToString(data),
					Format: "wav",
				}),
			}),
		},
		MaxTokens:   openai.Int(o.maxTokens),
		Temperature: openai.Float(o.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("transcription API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	log := logging.WithComponent("transcriber")
	log.Debug().
		Str("chunk", req.Label).
		Int("bytes", len(data)).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("transcription received")

	return resp.Choices[0].Message.Content, nil
}

// TranscribeSpans asks the model for timed segments.
func (o *OpenAIAudio) TranscribeSpans(ctx context.Context, req Request) ([]Span, error) {
	content, err := o.complete(ctx, req, SpansPrompt(req.Language, req.Duration))
	if err != nil {
		return nil, err
	}
	return ParseSpans(content)
}

// TranscribeTexts asks the model for exactly n transcripts.
func (o *OpenAIAudio) TranscribeTexts(ctx context.Context, req Request, n int) ([]string, error) {
	content, err := o.complete(ctx, req, TextsPrompt(req.Language, n))
	if err != nil {
		return nil, err
	}
	return ParseTexts(content)
}
