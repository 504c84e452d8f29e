// Package sentiment provides a pure lexicon-based text sentiment scorer.
// Scoring is deterministic and needs no external service, which keeps review
// ingestion cheap and makes aggregate statistics reproducible.
//
// Labels use one canonical threshold pair: a polarity score above +0.05 is
// positive, below -0.05 is negative, anything in between is neutral. The
// thresholds are configurable per analyzer but default to this single set.
package sentiment

import (
	"strings"
	"unicode"

	"review-pulse/internal/domain/entity"
)

// Canonical polarity thresholds for labeling.
const (
	DefaultPositiveThreshold = 0.05
	DefaultNegativeThreshold = -0.05
)

// Analyzer scores free-form review text on a [-1, 1] polarity scale.
// The zero value is not usable; construct with NewAnalyzer.
type Analyzer struct {
	positive map[string]struct{}
	negative map[string]struct{}

	// PositiveThreshold and NegativeThreshold bound the neutral band.
	PositiveThreshold float64
	NegativeThreshold float64
}

// NewAnalyzer creates an Analyzer with the built-in lexicon and the canonical
// thresholds.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		positive:          toSet(positiveWords),
		negative:          toSet(negativeWords),
		PositiveThreshold: DefaultPositiveThreshold,
		NegativeThreshold: DefaultNegativeThreshold,
	}
}

// Score computes the polarity of text: the balance of positive and negative
// lexicon hits over all sentiment-bearing tokens. Text with no lexicon hits
// scores 0. A "not" or "never" directly before a sentiment word flips it.
func (a *Analyzer) Score(text string) float64 {
	tokens := tokenize(text)
	var pos, neg float64
	for i, tok := range tokens {
		negated := i > 0 && isNegation(tokens[i-1])
		switch {
		case a.isPositive(tok):
			if negated {
				neg++
			} else {
				pos++
			}
		case a.isNegative(tok):
			if negated {
				pos++
			} else {
				neg++
			}
		}
	}
	total := pos + neg
	if total == 0 {
		return 0
	}
	return (pos - neg) / total
}

// Label maps a polarity score onto a sentiment label using the analyzer's
// thresholds.
func (a *Analyzer) Label(score float64) string {
	switch {
	case score > a.PositiveThreshold:
		return entity.SentimentPositive
	case score < a.NegativeThreshold:
		return entity.SentimentNegative
	default:
		return entity.SentimentNeutral
	}
}

// Analyze scores text and returns both the polarity and its label.
func (a *Analyzer) Analyze(text string) (float64, string) {
	score := a.Score(text)
	return score, a.Label(score)
}

func (a *Analyzer) isPositive(tok string) bool {
	_, ok := a.positive[tok]
	return ok
}

func (a *Analyzer) isNegative(tok string) bool {
	_, ok := a.negative[tok]
	return ok
}

// tokenize lowercases text and splits it on anything that is not a letter,
// digit or apostrophe.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func isNegation(tok string) bool {
	switch tok {
	case "not", "never", "no", "don't", "doesn't", "didn't", "isn't", "wasn't", "won't", "can't":
		return true
	}
	return false
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
