package report

import (
	"regexp"
	"sort"
	"strings"

	"brandpulse/models"
)

// DefaultTrendingLimit caps the trending list the dashboard shows.
const DefaultTrendingLimit = 10

var hashtagPattern = regexp.MustCompile(`#\w+`)

// TrendingHashtags counts #tags across the raw (pre-normalization) texts and
// ranks them descending by count, ties broken by first-seen order. Tags are
// lower-cased for counting and display so #Tesla and #tesla merge. No
// hashtags yields an empty slice, not an error.
func TrendingHashtags(texts []string, limit int) []models.HashtagCount {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for _, text := range texts {
		for _, tag := range hashtagPattern.FindAllString(text, -1) {
			tag = strings.ToLower(tag)
			if _, seen := counts[tag]; !seen {
				firstSeen[tag] = len(firstSeen)
			}
			counts[tag]++
		}
	}

	trending := make([]models.HashtagCount, 0, len(counts))
	for tag, count := range counts {
		trending = append(trending, models.HashtagCount{Tag: tag, Count: count})
	}

	sort.SliceStable(trending, func(i, j int) bool {
		if trending[i].Count != trending[j].Count {
			return trending[i].Count > trending[j].Count
		}
		return firstSeen[trending[i].Tag] < firstSeen[trending[j].Tag]
	})

	if len(trending) > limit {
		trending = trending[:limit]
	}
	return trending
}
