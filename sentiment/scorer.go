package sentiment

import (
	"brandpulse/models"

	log "github.com/sirupsen/logrus"
)

// SubModel scores already-normalized text in [-1, 1]. Implementations must
// be stateless so a Scorer can be shared across batch runs.
type SubModel interface {
	Score(text string) float64
}

// Fusion weights and labeling thresholds. The compound model carries more
// weight as it is calibrated for short informal text. Fixed on purpose, not
// configuration.
const (
	polarityWeight = 0.3
	compoundWeight = 0.7

	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// ScoreResult is the fused score and its label for one text.
type ScoreResult struct {
	Score float64
	Label models.Label
}

// Scorer fuses a general-purpose polarity model with a social-media-tuned
// compound model. Sub-models are injected so tests can install fakes.
type Scorer struct {
	polarity SubModel
	compound SubModel
}

func NewScorer(polarity SubModel, compound SubModel) *Scorer {
	return &Scorer{
		polarity: polarity,
		compound: compound,
	}
}

// DefaultScorer wires the in-package lexicon polarity model with the VADER
// compound analyzer.
func DefaultScorer() *Scorer {
	return NewScorer(NewPolarityModel(), NewVaderModel())
}

// Score normalizes the text and fuses both sub-model scores. Empty
// normalized text short-circuits to (0, Neutral) without invoking either
// model.
func (s *Scorer) Score(text string) ScoreResult {
	cleaned := Normalize(text)
	if cleaned == "" {
		return ScoreResult{Score: 0.0, Label: models.Neutral}
	}

	polarity := safeScore(s.polarity, cleaned)
	compound := safeScore(s.compound, cleaned)

	score := polarityWeight*polarity + compoundWeight*compound
	return ScoreResult{Score: score, Label: LabelFor(score)}
}

// ScorePost attaches a score and label to a raw post.
func (s *Scorer) ScorePost(post models.RawPost) models.ScoredPost {
	result := s.Score(post.Text)
	return models.ScoredPost{
		RawPost: post,
		Score:   result.Score,
		Label:   result.Label,
	}
}

// ScorePosts scores a batch. A failing sub-model never aborts the batch, so
// the output always has one entry per input.
func (s *Scorer) ScorePosts(posts []models.RawPost) []models.ScoredPost {
	scored := make([]models.ScoredPost, len(posts))
	for i, post := range posts {
		scored[i] = s.ScorePost(post)
	}
	return scored
}

// LabelFor maps a fused score to its label under the fixed thresholds.
func LabelFor(score float64) models.Label {
	switch {
	case score > positiveThreshold:
		return models.Positive
	case score < negativeThreshold:
		return models.Negative
	default:
		return models.Neutral
	}
}

// safeScore clamps the sub-model output to [-1, 1] and recovers a panicking
// sub-model to a neutral contribution so fusion stays well-defined.
func safeScore(model SubModel, text string) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"recovered": r,
			}).Warn("Sentiment sub-model failed, treating contribution as neutral")
			score = 0.0
		}
	}()

	score = model.Score(text)
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score
}
