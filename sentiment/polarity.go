package sentiment

import (
	"strings"
	"unicode"
)

// PolarityModel is the general-purpose lexicon sub-model. It averages the
// polarity of known words, with a small look-behind window for negations and
// intensity modifiers. No social-media-specific tuning; the VADER sub-model
// covers that side.
type PolarityModel struct {
	lexicon      map[string]float64
	intensifiers map[string]float64
	negations    map[string]struct{}
}

func NewPolarityModel() *PolarityModel {
	return &PolarityModel{
		lexicon:      polarityLexicon,
		intensifiers: intensityModifiers,
		negations:    negationWords,
	}
}

// Score tokenizes on non-letter boundaries and averages lexicon polarities.
// A negation within the two preceding tokens flips a word's polarity at half
// strength; an intensifier scales it. Texts with no lexicon hits score 0.
func (m *PolarityModel) Score(text string) float64 {
	tokens := tokenizeWords(text)
	if len(tokens) == 0 {
		return 0.0
	}

	var sum float64
	var hits int

	for i, token := range tokens {
		polarity, ok := m.lexicon[token]
		if !ok {
			continue
		}

		modifier := 1.0
		negated := false
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			if _, ok := m.negations[tokens[j]]; ok {
				negated = true
			}
			if factor, ok := m.intensifiers[tokens[j]]; ok {
				modifier *= factor
			}
		}

		if negated {
			polarity *= -0.5
		}
		polarity *= modifier

		sum += polarity
		hits++
	}

	if hits == 0 {
		return 0.0
	}

	score := sum / float64(hits)
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score
}

func tokenizeWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// Word polarities in [-1, 1], loosely following the weighting conventions of
// classic pattern-style sentiment lexicons.
var polarityLexicon = map[string]float64{
	// positive
	"amazing":     0.8,
	"awesome":     0.9,
	"beautiful":   0.8,
	"best":        1.0,
	"better":      0.5,
	"brilliant":   0.9,
	"charming":    0.6,
	"clean":       0.4,
	"comfortable": 0.5,
	"convenient":  0.4,
	"cool":        0.4,
	"delicious":   0.8,
	"delightful":  0.8,
	"easy":        0.4,
	"effective":   0.5,
	"elegant":     0.6,
	"enjoy":       0.5,
	"enjoyable":   0.6,
	"excellent":   1.0,
	"excited":     0.6,
	"exciting":    0.6,
	"fabulous":    0.8,
	"fantastic":   0.9,
	"fast":        0.3,
	"favorite":    0.7,
	"fine":        0.3,
	"flawless":    0.9,
	"fresh":       0.4,
	"friendly":    0.5,
	"fun":         0.5,
	"glad":        0.5,
	"good":        0.7,
	"great":       0.8,
	"happy":       0.8,
	"helpful":     0.5,
	"impressive":  0.7,
	"incredible":  0.9,
	"innovative":  0.5,
	"interesting": 0.4,
	"like":        0.3,
	"love":        0.8,
	"loved":       0.8,
	"lovely":      0.7,
	"nice":        0.6,
	"outstanding": 0.9,
	"perfect":     1.0,
	"pleasant":    0.6,
	"pleased":     0.6,
	"powerful":    0.4,
	"recommend":   0.5,
	"reliable":    0.5,
	"remarkable":  0.7,
	"satisfied":   0.5,
	"smooth":      0.4,
	"solid":       0.4,
	"stunning":    0.8,
	"superb":      0.9,
	"superior":    0.6,
	"sweet":       0.5,
	"terrific":    0.8,
	"thrilled":    0.8,
	"useful":      0.4,
	"wonderful":   0.9,
	"worth":       0.3,
	"wow":         0.6,

	// negative
	"angry":          -0.6,
	"annoying":       -0.6,
	"awful":          -0.9,
	"bad":            -0.7,
	"boring":         -0.5,
	"broken":         -0.6,
	"buggy":          -0.6,
	"cheap":          -0.3,
	"crap":           -0.8,
	"defective":      -0.7,
	"disappointed":   -0.7,
	"disappointing":  -0.7,
	"disaster":       -0.8,
	"disgusting":     -0.9,
	"dreadful":       -0.8,
	"expensive":      -0.3,
	"fail":           -0.6,
	"failed":         -0.6,
	"failure":        -0.7,
	"faulty":         -0.6,
	"frustrated":     -0.6,
	"frustrating":    -0.6,
	"garbage":        -0.8,
	"hate":           -0.8,
	"hated":          -0.8,
	"horrible":       -0.9,
	"inferior":       -0.5,
	"mediocre":       -0.4,
	"mess":           -0.5,
	"miserable":      -0.8,
	"nasty":          -0.7,
	"overpriced":     -0.5,
	"overrated":      -0.5,
	"pathetic":       -0.8,
	"poor":           -0.6,
	"problem":        -0.4,
	"problems":       -0.4,
	"rubbish":        -0.7,
	"sad":            -0.5,
	"scam":           -0.8,
	"slow":           -0.3,
	"terrible":       -0.9,
	"trash":          -0.7,
	"ugly":           -0.6,
	"unacceptable":   -0.7,
	"uncomfortable":  -0.5,
	"unhappy":        -0.6,
	"unreliable":     -0.6,
	"unusable":       -0.7,
	"upset":          -0.5,
	"useless":        -0.7,
	"waste":          -0.6,
	"worst":          -1.0,
	"worthless":      -0.8,
	"wrong":          -0.4,
	"disappointment": -0.7,
}

// Modifier words scale the polarity of the word they precede.
var intensityModifiers = map[string]float64{
	"absolutely": 1.3,
	"completely": 1.2,
	"extremely":  1.3,
	"fairly":     0.8,
	"highly":     1.2,
	"incredibly": 1.3,
	"quite":      1.1,
	"really":     1.2,
	"slightly":   0.6,
	"so":         1.2,
	"somewhat":   0.7,
	"totally":    1.2,
	"truly":      1.2,
	"very":       1.25,
}

var negationWords = map[string]struct{}{
	"not":     {},
	"no":      {},
	"never":   {},
	"neither": {},
	"nobody":  {},
	"nothing": {},
	"don't":   {},
	"doesn't": {},
	"didn't":  {},
	"isn't":   {},
	"wasn't":  {},
	"aren't":  {},
	"won't":   {},
	"can't":   {},
	"cannot":  {},
	"couldn't": {},
	"shouldn't": {},
	"wouldn't":  {},
}
