// Package translator translates subtitle texts with a chat model.
package translator

import (
	"context"
	"errors"
	"fmt"

	"github.com/guiyumin/vsub/internal/core/ai/transcriber"
	"github.com/guiyumin/vsub/internal/core/config"
)

// ErrCountMismatch is returned when the model answers with a different
// number of texts than it was given.
var ErrCountMismatch = errors.New("translation count mismatch")

// batchSize bounds the number of texts sent in one request.
const batchSize = 40

// Translator translates texts into a target language.
type Translator interface {
	// Translate returns one translation per input text, in order.
	Translate(ctx context.Context, texts []string, targetLang string) ([]string, error)

	// Name returns the provider name.
	Name() string
}

// New creates a new Translator based on configuration.
func New(cfg config.TranslationConfig) (Translator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAI(cfg)
	case config.ProviderAnthropic:
		return NewAnthropic(cfg)
	case config.ProviderQwen:
		return NewQwen(cfg)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", cfg.Provider)
	}
}

// Bilingual renders the original text dimmed above its translation.
func Bilingual(original, translation string) string {
	return fmt.Sprintf("<font color=\"#808080\">%s</font>\n%s", original, translation)
}

// completeFunc sends one prompt and returns the raw reply.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// translateBatched splits texts into batches, sends each through complete
// and checks that every batch comes back with the same length.
func translateBatched(ctx context.Context, texts []string, targetLang string, complete completeFunc) ([]string, error) {
	out := make([]string, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		batch := texts[start:min(start+batchSize, len(texts))]

		prompt, err := Prompt(batch, targetLang)
		if err != nil {
			return nil, err
		}
		reply, err := complete(ctx, prompt)
		if err != nil {
			return nil, err
		}
		translated, err := transcriber.ParseTexts(reply)
		if err != nil {
			return nil, err
		}
		if len(translated) != len(batch) {
			return nil, fmt.Errorf("%w: sent %d, got %d", ErrCountMismatch, len(batch), len(translated))
		}
		out = append(out, translated...)
	}
	return out, nil
}
