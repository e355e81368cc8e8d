package acquire

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"brandpulse/models"
)

// SyntheticSource generates plausible posts about a query without touching
// the network. The output is a pseudo-random function of (seed, query) so
// demo runs are reproducible.
type SyntheticSource struct {
	seed int64
	now  func() time.Time
}

func NewSyntheticSource(seed int64) *SyntheticSource {
	return &SyntheticSource{
		seed: seed,
		now:  time.Now,
	}
}

var positiveTemplates = []string{
	"Honestly the new %s update is amazing, best thing they shipped in years",
	"Just tried %s and I love it!!! 😍",
	"%s support was incredibly helpful today, really impressed",
	"Can't stop recommending %s to everyone, it just works",
	"The %s launch event was fantastic, so excited for what's next",
}

var negativeTemplates = []string{
	"%s keeps crashing for me, utterly useless today",
	"Really disappointed with %s, the quality has gone downhill",
	"Waited two weeks for %s support to answer. Terrible experience",
	"The new %s pricing is a scam, total waste of money",
	"%s broke again?? This is getting ridiculous",
}

var neutralTemplates = []string{
	"Saw another %s billboard on the way to work",
	"Apparently %s announced something today",
	"Does anyone here use %s daily?",
	"%s opened a new office downtown",
	"Reading the %s quarterly report over coffee",
}

var syntheticAuthors = []string{
	"daily_observer", "techtalk", "casual_user", "brand_skeptic",
	"early_adopter", "news_reposter", "weekend_reviewer", "market_watcher",
}

var nonWordPattern = regexp.MustCompile(`\W+`)

// Fetch synthesizes limit posts spread over the last seven days. Roughly
// 45% positive, 30% negative, 25% neutral so the dashboard has something to
// chart; a share of posts carry hashtags, mentions and URLs to exercise the
// normalizer and trending extraction.
func (s *SyntheticSource) Fetch(ctx context.Context, query string, limit int) ([]models.RawPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrNoPosts
	}
	if limit <= 0 {
		limit = DefaultFetchLimit
	}

	hash := fnv.New64a()
	hash.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	rng := rand.New(rand.NewSource(s.seed ^ int64(hash.Sum64())))

	tag := "#" + strings.ToLower(nonWordPattern.ReplaceAllString(query, ""))
	base := s.now().UTC()

	posts := make([]models.RawPost, 0, limit)
	for i := 0; i < limit; i++ {
		var template string
		switch draw := rng.Float64(); {
		case draw < 0.45:
			template = positiveTemplates[rng.Intn(len(positiveTemplates))]
		case draw < 0.75:
			template = negativeTemplates[rng.Intn(len(negativeTemplates))]
		default:
			template = neutralTemplates[rng.Intn(len(neutralTemplates))]
		}

		text := fmt.Sprintf(template, query)
		if tag != "#" && rng.Float64() < 0.4 {
			text += " " + tag
		}
		if rng.Float64() < 0.15 {
			text += " via @newsbot"
		}
		if rng.Float64() < 0.15 {
			text += " https://example.com/story"
		}

		posts = append(posts, models.RawPost{
			Text:      text,
			CreatedAt: base.Add(-time.Duration(rng.Intn(7*24)) * time.Hour),
			Author:    fmt.Sprintf("%s%d", syntheticAuthors[rng.Intn(len(syntheticAuthors))], rng.Intn(1000)),
			Likes:     rng.Intn(500),
			Reposts:   rng.Intn(120),
		})
	}

	return posts, nil
}
