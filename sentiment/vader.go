package sentiment

import "github.com/jonreiter/govader"

// VaderModel is the social-media-tuned compound sub-model. VADER handles
// negation, intensifiers, punctuation emphasis and emoji, which the plain
// lexicon model does not.
type VaderModel struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderModel() *VaderModel {
	return &VaderModel{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Score returns the VADER compound score, already normalized to [-1, 1].
func (m *VaderModel) Score(text string) float64 {
	return m.analyzer.PolarityScores(text).Compound
}
