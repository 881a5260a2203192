package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guiyumin/vsub/internal/core/config"
)

func TestBilingual(t *testing.T) {
	require.Equal(t, "<font color=\"#808080\">Hola</font>\nHello", Bilingual("Hola", "Hello"))
}

func TestPrompt(t *testing.T) {
	p, err := Prompt([]string{"a \"quoted\" line", "b"}, "ja")
	require.NoError(t, err)
	require.Contains(t, p, "into Japanese")
	require.Contains(t, p, "exactly 2 strings")
	require.Contains(t, p, `["a \"quoted\" line","b"]`)
}

func TestTranslateBatched(t *testing.T) {
	texts := make([]string, batchSize+5)
	for i := range texts {
		texts[i] = fmt.Sprintf("line %d", i)
	}

	calls := 0
	echo := func(ctx context.Context, prompt string) (string, error) {
		calls++
		start := strings.Index(prompt, "[\"")
		end := strings.LastIndex(prompt, "]")
		var in []string
		require.NoError(t, json.Unmarshal([]byte(prompt[start:end+1]), &in))
		for i := range in {
			in[i] = strings.ToUpper(in[i])
		}
		b, _ := json.Marshal(in)
		return "```json\n" + string(b) + "\n```", nil
	}

	out, err := translateBatched(context.Background(), texts, "en", echo)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Len(t, out, len(texts))
	require.Equal(t, "LINE 0", out[0])
	require.Equal(t, fmt.Sprintf("LINE %d", batchSize+4), out[len(out)-1])

	short := func(ctx context.Context, prompt string) (string, error) {
		return `["only one"]`, nil
	}
	_, err = translateBatched(context.Background(), []string{"a", "b"}, "en", short)
	require.True(t, errors.Is(err, ErrCountMismatch))
}

func TestNew(t *testing.T) {
	_, err := New(config.TranslationConfig{Provider: config.ProviderOpenAI})
	require.Error(t, err)

	tr, err := New(config.TranslationConfig{Provider: config.ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	require.Equal(t, config.ProviderAnthropic, tr.Name())

	tr, err = New(config.TranslationConfig{Provider: config.ProviderQwen, APIKey: "k"})
	require.NoError(t, err)
	require.Equal(t, config.ProviderQwen, tr.Name())

	_, err = New(config.TranslationConfig{Provider: "babelfish", APIKey: "k"})
	require.Error(t, err)
}

func TestOpenAITranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "[\"Hello\", \"World\"]"}}]
		}`)
	}))
	defer srv.Close()

	tr, err := NewOpenAI(config.TranslationConfig{APIKey: "test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	out, err := tr.Translate(context.Background(), []string{"Hola", "Mundo"}, "en")
	require.NoError(t, err)
	require.Equal(t, []string{"Hello", "World"}, out)
}

func TestAnthropicTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "[\"Bonjour\"]"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 3, "output_tokens": 2}
		}`)
	}))
	defer srv.Close()

	tr, err := NewAnthropic(config.TranslationConfig{APIKey: "test", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := tr.Translate(context.Background(), []string{"Hello"}, "fr")
	require.NoError(t, err)
	require.Equal(t, []string{"Bonjour"}, out)
}
