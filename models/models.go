package models

import "time"

// Label is the three-way sentiment classification of a post or report.
type Label string

const (
	Positive Label = "Positive"
	Neutral  Label = "Neutral"
	Negative Label = "Negative"
)

// RawPost is a post as delivered by an acquisition source. Fields are
// resolved at construction time; a RawPost is never mutated afterwards.
type RawPost struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Author    string    `json:"author"`
	Likes     int       `json:"likes"`
	Reposts   int       `json:"reposts"`
}

// ScoredPost is a RawPost plus the fused sentiment score and its label.
// Created once by the scorer from exactly one RawPost.
type ScoredPost struct {
	RawPost
	Score float64 `json:"score"`
	Label Label   `json:"label"`
}

// HashtagCount holds a lower-cased hashtag (leading '#' included) and how
// many times it occurred across the analyzed posts.
type HashtagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TimelineBucket aggregates per-label counts for one calendar day.
type TimelineBucket struct {
	Date     time.Time `json:"date"`
	Positive int       `json:"positive"`
	Neutral  int       `json:"neutral"`
	Negative int       `json:"negative"`
}

// SentimentReport is the aggregate view over one analysis run. Built fresh
// per run, no lifecycle beyond it.
type SentimentReport struct {
	TotalCount    int              `json:"totalCount"`
	OverallLabel  Label            `json:"overallLabel"`
	MeanScore     float64          `json:"meanScore"`
	PositiveCount int              `json:"positiveCount"`
	NeutralCount  int              `json:"neutralCount"`
	NegativeCount int              `json:"negativeCount"`
	PositivePct   float64          `json:"positivePct"`
	NeutralPct    float64          `json:"neutralPct"`
	NegativePct   float64          `json:"negativePct"`
	TopPositive   []ScoredPost     `json:"topPositive"`
	TopNegative   []ScoredPost     `json:"topNegative"`
	TrendingTags  []HashtagCount   `json:"trendingTags"`
	Timeline      []TimelineBucket `json:"timeline"`
}

// ScoredPostEvent fired when the collector scores a new post
type ScoredPostEvent struct {
	Brand string     `json:"brand"`
	Post  ScoredPost `json:"post"`
}

// ReportEvent fired when a fresh report is built for a brand
type ReportEvent struct {
	Brand  string           `json:"brand"`
	Report *SentimentReport `json:"report"`
}

// SentimentPerTime is one stored-post aggregation bucket as read back from
// the database for dashboard charts.
type SentimentPerTime struct {
	Time     time.Time `json:"time"`
	Positive int64     `json:"positive"`
	Neutral  int64     `json:"neutral"`
	Negative int64     `json:"negative"`
}
