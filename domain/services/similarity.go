package services

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// DefaultTemporalWindowHours is the default window for temporal proximity
const DefaultTemporalWindowHours = 24.0

// minLexicalTokenLength filters short tokens from similarity scoring;
// the length filter substitutes for a stop-word list
const minLexicalTokenLength = 4

// SimilarityEngine computes lexical (token-overlap) similarity and
// temporal-proximity scores between any two entities. Both scores are
// symmetric in their arguments.
type SimilarityEngine struct{}

// NewSimilarityEngine creates a new similarity engine
func NewSimilarityEngine() *SimilarityEngine {
	return &SimilarityEngine{}
}

// LexicalSimilarity returns the Jaccard coefficient over the sets of
// lowercase tokens longer than three characters extracted from each
// text. Returns 0 if either token set is empty.
func (e *SimilarityEngine) LexicalSimilarity(textA, textB string) float64 {
	setA := e.tokenSet(textA)
	setB := e.tokenSet(textB)

	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	union := len(setB)
	for token := range setA {
		if setB[token] {
			intersection++
		} else {
			union++
		}
	}

	return float64(intersection) / float64(union)
}

// TemporalProximity scores how close two creation times are. Outside the
// window the score is 0; inside it decays linearly from 1 with a floor
// of 0.1 so in-window pairs never vanish entirely.
func (e *SimilarityEngine) TemporalProximity(tsA, tsB time.Time, windowHours float64) float64 {
	if windowHours <= 0 {
		windowHours = DefaultTemporalWindowHours
	}

	hoursDiff := math.Abs(tsA.Sub(tsB).Hours())
	if hoursDiff > windowHours {
		return 0.0
	}

	return math.Max(0.1, 1.0-hoursDiff/windowHours)
}

// tokenSet breaks text into a set of unique lowercase tokens, keeping
// only tokens longer than three characters
func (e *SimilarityEngine) tokenSet(text string) map[string]bool {
	tokens := make(map[string]bool)
	text = strings.ToLower(text)

	var current strings.Builder
	flush := func() {
		if current.Len() >= minLexicalTokenLength {
			tokens[current.String()] = true
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			flush()
		}
	}
	flush()

	return tokens
}
