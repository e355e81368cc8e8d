package report

import (
	"strings"
	"unicode"

	"brandpulse/sentiment"
)

// TokenFrequencies builds the raw word-frequency table the word-cloud
// renderer consumes. Texts are normalized first, then split on
// whitespace/punctuation boundaries and lower-cased so variants merge.
// Stop-word filtering is left to the rendering side. No tokens means an
// empty map, which callers treat as "insufficient data", not an error.
func TokenFrequencies(texts []string) map[string]int {
	freqs := make(map[string]int)

	for _, text := range texts {
		cleaned := sentiment.Normalize(text)
		if cleaned == "" {
			continue
		}

		tokens := strings.FieldsFunc(strings.ToLower(cleaned), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		for _, token := range tokens {
			freqs[token]++
		}
	}

	return freqs
}
