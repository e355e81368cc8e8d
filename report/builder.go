package report

import (
	"errors"
	"math"
	"sort"
	"time"

	"brandpulse/models"
	"brandpulse/sentiment"

	"github.com/samber/lo"
)

// ErrEmptyInput is returned when aggregation is invoked with zero scored
// posts. Callers surface it as "no results"; it is fatal to that analysis
// run but never to the process.
var ErrEmptyInput = errors.New("no scored posts to aggregate")

// Number of top positive/negative sample posts included in a report.
const topPostsLimit = 3

// Build aggregates a batch of scored posts into a SentimentReport. Pure
// in-memory aggregation, no I/O. The overall label comes from the mean
// score under the same thresholds as per-post labeling, not from a majority
// vote; in bimodal distributions the two can diverge and the mean is what
// the dashboard shows.
func Build(posts []models.ScoredPost) (*models.SentimentReport, error) {
	if len(posts) == 0 {
		return nil, ErrEmptyInput
	}

	total := len(posts)
	positive := lo.CountBy(posts, func(p models.ScoredPost) bool { return p.Label == models.Positive })
	negative := lo.CountBy(posts, func(p models.ScoredPost) bool { return p.Label == models.Negative })
	neutral := total - positive - negative

	mean := lo.SumBy(posts, func(p models.ScoredPost) float64 { return p.Score }) / float64(total)

	texts := lo.Map(posts, func(p models.ScoredPost, _ int) string { return p.Text })

	return &models.SentimentReport{
		TotalCount:    total,
		OverallLabel:  sentiment.LabelFor(mean),
		MeanScore:     roundTo(mean, 3),
		PositiveCount: positive,
		NeutralCount:  neutral,
		NegativeCount: negative,
		PositivePct:   roundTo(float64(positive)/float64(total)*100, 1),
		NeutralPct:    roundTo(float64(neutral)/float64(total)*100, 1),
		NegativePct:   roundTo(float64(negative)/float64(total)*100, 1),
		TopPositive:   topByScore(posts, true),
		TopNegative:   topByScore(posts, false),
		TrendingTags:  TrendingHashtags(texts, DefaultTrendingLimit),
		Timeline:      buildTimeline(posts),
	}, nil
}

// topByScore returns up to topPostsLimit posts, highest first when
// descending, lowest (most negative) first otherwise. The sort is stable so
// equal scores keep their input order.
func topByScore(posts []models.ScoredPost, descending bool) []models.ScoredPost {
	sorted := make([]models.ScoredPost, len(posts))
	copy(sorted, posts)

	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Score < sorted[j].Score
	})

	if len(sorted) > topPostsLimit {
		sorted = sorted[:topPostsLimit]
	}
	return sorted
}

// buildTimeline groups posts by calendar day (UTC) and counts labels per
// bucket, chronologically ascending.
func buildTimeline(posts []models.ScoredPost) []models.TimelineBucket {
	buckets := make(map[time.Time]*models.TimelineBucket)

	for _, post := range posts {
		day := truncateToDay(post.CreatedAt)
		bucket, ok := buckets[day]
		if !ok {
			bucket = &models.TimelineBucket{Date: day}
			buckets[day] = bucket
		}

		switch post.Label {
		case models.Positive:
			bucket.Positive++
		case models.Negative:
			bucket.Negative++
		default:
			bucket.Neutral++
		}
	}

	timeline := make([]models.TimelineBucket, 0, len(buckets))
	for _, bucket := range buckets {
		timeline = append(timeline, *bucket)
	}
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Date.Before(timeline[j].Date)
	})

	return timeline
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
