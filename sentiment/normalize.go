package sentiment

import (
	"regexp"
	"strings"
)

var (
	urlPattern     = regexp.MustCompile(`http\S+|www\S+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
	rtPattern      = regexp.MustCompile(`\bRT\s+`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// Normalize strips URLs, @mentions and RT markers from a raw post text and
// collapses the remaining whitespace. Removal has to happen before the
// whitespace collapse so stripped tokens don't leave double spaces behind.
// Normalize is idempotent and maps whitespace-only input to "".
func Normalize(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = rtPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
