package translator

import (
	"encoding/json"
	"fmt"

	"github.com/guiyumin/vsub/internal/core/ai/transcriber"
)

// Prompt builds the instruction for translating texts into targetLang.
func Prompt(texts []string, targetLang string) (string, error) {
	payload, err := json.Marshal(texts)
	if err != nil {
		return "", fmt.Errorf("failed to encode texts: %w", err)
	}

	return fmt.Sprintf(`Translate each subtitle line in the JSON array below into %s.

Requirements:
- Return exactly %d strings in a JSON array
- Keep the order; element i is the translation of input element i
- Keep each translation about as short as the original so it fits on screen
- Return ONLY the JSON array, no other text

%s
`, transcriber.LanguageName(targetLang), len(texts), payload), nil
}
