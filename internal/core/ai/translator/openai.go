package translator

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/guiyumin/vsub/internal/core/config"
)

// QwenDefaultBaseURL is the OpenAI-compatible endpoint for Qwen.
const QwenDefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// OpenAI implements Translator with an OpenAI-compatible chat API.
type OpenAI struct {
	client openai.Client
	model  openai.ChatModel
	name   string
}

// NewOpenAI creates a new OpenAI translator.
func NewOpenAI(cfg config.TranslationConfig) (*OpenAI, error) {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return newChat(config.ProviderOpenAI, cfg.APIKey, cfg.BaseURL, model)
}

// NewQwen creates a translator backed by Alibaba Qwen through its
// OpenAI-compatible endpoint.
func NewQwen(cfg config.TranslationConfig) (*OpenAI, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = QwenDefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "qwen-plus"
	}
	return newChat(config.ProviderQwen, cfg.APIKey, baseURL, model)
}

func newChat(name, apiKey, baseURL, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key not provided", name)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  openai.ChatModel(model),
		name:   name,
	}, nil
}

// Name returns the provider name.
func (o *OpenAI) Name() string {
	return o.name
}

// Translate translates texts into targetLang.
func (o *OpenAI) Translate(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	return translateBatched(ctx, texts, targetLang, o.complete)
}

func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a professional subtitle translator."),
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(8000),
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return "", fmt.Errorf("translation API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}
	return resp.Choices[0].Message.Content, nil
}
