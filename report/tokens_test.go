package report_test

import (
	"testing"

	"brandpulse/report"

	"github.com/stretchr/testify/assert"
)

func TestTokenFrequencies(t *testing.T) {
	texts := []string{
		"The phone is great, really great",
		"the screen https://example.com is fine",
	}

	freqs := report.TokenFrequencies(texts)

	assert.Equal(t, 2, freqs["great"])
	assert.Equal(t, 2, freqs["the"])
	assert.Equal(t, 1, freqs["screen"])
	// URL content must not leak into the table
	assert.NotContains(t, freqs, "example")
	assert.NotContains(t, freqs, "https")
}

func TestTokenFrequenciesEmpty(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
	}{
		{"no texts", nil},
		{"whitespace only", []string{"   ", "\t"}},
		{"only noise", []string{"RT @user https://example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freqs := report.TokenFrequencies(tt.texts)
			assert.Empty(t, freqs)
		})
	}
}
