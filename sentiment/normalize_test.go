package sentiment_test

import (
	"testing"

	"brandpulse/sentiment"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "empty string",
			text:     "",
			expected: "",
		},
		{
			name:     "whitespace only",
			text:     "   \t\n  ",
			expected: "",
		},
		{
			name:     "plain text untouched",
			text:     "the new phone is great",
			expected: "the new phone is great",
		},
		{
			name:     "strips http url",
			text:     "check this http://example.com/x?y=1 out",
			expected: "check this out",
		},
		{
			name:     "strips https url",
			text:     "read https://example.com now",
			expected: "read now",
		},
		{
			name:     "strips www url",
			text:     "go to www.example.com today",
			expected: "go to today",
		},
		{
			name:     "strips mentions",
			text:     "hey @someone and @someone_else hello",
			expected: "hey and hello",
		},
		{
			name:     "strips leading retweet marker",
			text:     "RT this product is amazing",
			expected: "this product is amazing",
		},
		{
			name:     "keeps RT inside words",
			text:     "SMART TVs are fine",
			expected: "SMART TVs are fine",
		},
		{
			name:     "only url mention and marker",
			text:     "RT @user https://t.co/abc123",
			expected: "",
		},
		{
			name:     "collapses whitespace",
			text:     "too   many\t\tspaces  here",
			expected: "too many spaces here",
		},
		{
			name:     "keeps hashtags",
			text:     "loving the #NewPhone launch",
			expected: "loving the #NewPhone launch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sentiment.Normalize(tt.text))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	texts := []string{
		"",
		"   ",
		"RT @user check https://example.com #wow   great stuff",
		"plain text with no noise",
		"@a @b @c www.example.org",
	}

	for _, text := range texts {
		once := sentiment.Normalize(text)
		assert.Equal(t, once, sentiment.Normalize(once))
	}
}
