package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/bluesky-social/indigo/api/bsky"
	jetstream_models "github.com/bluesky-social/jetstream/pkg/models"
	"github.com/klauspost/compress/zstd"
	lingua "github.com/pemistahl/lingua-go"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"brandpulse/brands"
	"brandpulse/models"
	"brandpulse/sentiment"
)

// englishConfidenceThreshold gates untagged posts through the language
// detector before they are scored. The lexicons only understand English.
const englishConfidenceThreshold = 0.6

type PostProcessor struct {
	postChan         chan interface{}
	context          context.Context
	brands           []*brands.Brand
	scorer           *sentiment.Scorer
	decoder          *zstd.Decoder
	languageDetector lingua.LanguageDetector
}

func NewPostProcessor(ctx context.Context, config Config, postChan chan interface{}) *PostProcessor {
	pp := &PostProcessor{
		context:          ctx,
		postChan:         postChan,
		brands:           config.Brands,
		scorer:           sentiment.DefaultScorer(),
		languageDetector: newLanguageDetector(),
	}

	if config.Compress {
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderDicts(jetstream_models.ZSTDDictionary))
		if err != nil {
			log.Fatalf("Failed to create zstd decoder: %v", err)
		}
		pp.decoder = decoder
	}

	return pp
}

func newLanguageDetector() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.AllLanguages()...).
		WithMinimumRelativeDistance(0.25).
		Build()
}

// processMessage turns one firehose message into zero or more scored post
// events. Malformed messages are counted and reported; the stream carries on.
func (p *PostProcessor) processMessage(msg *RawMessage) error {
	var data []byte
	var err error

	// If message is compressed (binary), decompress it first
	if p.decoder != nil {
		data, err = p.decoder.DecodeAll(msg.Data, nil)
		if err != nil {
			eventsDropped.Inc()
			return fmt.Errorf("failed to decompress message: %w", err)
		}
	} else {
		data = msg.Data
	}

	var event jetstream_models.Event
	if err := json.Unmarshal(data, &event); err != nil {
		eventsDropped.Inc()
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	// Only new posts are of interest
	if event.Commit == nil ||
		event.Commit.Operation != jetstream_models.CommitOperationCreate ||
		event.Commit.Collection != "app.bsky.feed.post" {
		return nil
	}

	var record bsky.FeedPost
	if err := json.Unmarshal(event.Commit.Record, &record); err != nil {
		eventsDropped.Inc()
		return fmt.Errorf("failed to unmarshal post: %w", err)
	}

	if len(strings.Fields(record.Text)) < 4 {
		return nil
	}

	if !HasEnoughLetters(record.Text) {
		return nil
	}

	if ContainsSpamContent(record.Text) {
		return nil
	}

	if !p.isEnglish(record.Text, record.Langs) {
		return nil
	}

	matched := matchingBrands(p.brands, record.Text)
	if len(matched) == 0 {
		return nil
	}

	createdAt, err := time.Parse(time.RFC3339, record.CreatedAt)
	if err != nil {
		// Fall back to the event receive time; client clocks are unreliable
		createdAt = time.UnixMicro(event.TimeUS).UTC()
	}

	raw := models.RawPost{
		Text:      record.Text,
		CreatedAt: createdAt.UTC(),
		Author:    event.Did,
	}
	scored := p.scorer.ScorePost(raw)

	for _, brand := range matched {
		postsScored.WithLabelValues(brand.Id, string(scored.Label)).Inc()

		log.WithFields(log.Fields{
			"brand": brand.Id,
			"label": scored.Label,
			"score": scored.Score,
		}).Debug("Scored post")

		select {
		case <-p.context.Done():
			return nil
		case p.postChan <- models.ScoredPostEvent{Brand: brand.Id, Post: scored}:
		}
	}

	return nil
}

// isEnglish accepts posts tagged "en" as-is and runs untagged posts through
// the language detector.
func (p *PostProcessor) isEnglish(text string, langs []string) bool {
	if len(langs) > 0 {
		return lo.Contains(langs, "en")
	}
	return p.languageDetector.ComputeLanguageConfidence(text, lingua.English) >= englishConfidenceThreshold
}

func matchingBrands(all []*brands.Brand, text string) []*brands.Brand {
	var matched []*brands.Brand
	for _, brand := range all {
		if brand.Matches(text) {
			matched = append(matched, brand)
		}
	}
	return matched
}

// HasEnoughLetters rejects posts that are mostly punctuation, digits or
// emoji. If less than 30% of the text is letters, skip it.
func HasEnoughLetters(text string) bool {
	if len(text) == 0 {
		return false
	}

	letterCount := 0
	total := 0
	for _, char := range text {
		total++
		if unicode.IsLetter(char) {
			letterCount++
		}
	}

	ratio := float64(letterCount) / float64(total)
	return ratio > 0.30
}

// ContainsSpamContent filters out promotional and adult spam so the
// sentiment counts reflect real brand conversation.
func ContainsSpamContent(text string) bool {
	lowerText := strings.ToLower(text)

	spamPatterns := []string{
		"onlyfans.com",
		"join my vip",
		"subscribe to my",
		"check my profile",
		"check my bio",
		"link in bio",
		"link in profile",
		"follow me",
		"follow back",
		"follow for follow",
		"f4f",
	}

	nsfwTerms := []string{
		"porn",
		"xxx",
		"nsfw",
		"18+",
	}

	for _, pattern := range spamPatterns {
		if strings.Contains(lowerText, pattern) {
			return true
		}
	}

	for _, term := range nsfwTerms {
		if strings.Contains(lowerText, term) {
			return true
		}
	}

	// Excessive emoji is a common spam marker
	emojiCount := 0
	for _, r := range text {
		if r >= 0x1F300 {
			emojiCount++
			if emojiCount > 8 {
				return true
			}
		}
	}

	hashtagCount := strings.Count(text, "#")
	mentionCount := strings.Count(text, "@")

	if hashtagCount > 5 || mentionCount > 5 {
		return true
	}

	if strings.Count(text, "##") > 0 || strings.Count(text, "@@") > 0 {
		return true
	}

	words := strings.Fields(text)
	if len(words) > 0 {
		symbolRatio := float64(hashtagCount+mentionCount) / float64(len(words))
		if symbolRatio > 0.5 {
			return true
		}
	}

	return false
}
