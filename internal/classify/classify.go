// Package classify implements the embedded lexicon classifier: term
// scoring with negation and intensifier handling, topic tagging, and
// the misinformation flag rule.
package classify

import (
	"math"
	"strings"
	"unicode"

	"github.com/mkamanzi/farepulse/internal/collector"
	"github.com/mkamanzi/farepulse/internal/model"
)

const (
	// negationScalar partially flips a term that follows a negator.
	negationScalar = -0.75
	// compoundAlpha normalizes the Kinyarwanda score sum into [-1, 1].
	compoundAlpha = 15.0
	// exclaimEmphasis is the per-exclamation-mark nudge, capped at
	// maxExclaim marks, applied in the direction the score already has.
	exclaimEmphasis = 0.1
	maxExclaim      = 4

	// polarityThreshold labels English and French mean-polarity scores.
	polarityThreshold = 0.2
	// compoundThreshold labels Kinyarwanda compound scores, which the
	// alpha normalization keeps much closer to zero.
	compoundThreshold = 0.05
)

// Config holds configuration for the lexicon classifier.
type Config struct {
	// FlagThreshold is the minimum confidence of a negative verdict
	// before the misinformation rule considers it. Zero means default.
	FlagThreshold float64
	// Watchlist lists the topics the misinformation rule watches.
	// Empty means the default watch-list.
	Watchlist []string
}

// Lexicon classifies records against the embedded term tables. It is a
// pure function of its input: the same record always yields the same
// verdict for a given Version.
type Lexicon struct {
	rule FlagRule
}

// New creates a lexicon classifier. Zero-value config fields fall back
// to the defaults.
func New(cfg Config) *Lexicon {
	return &Lexicon{rule: NewFlagRule(cfg.FlagThreshold, cfg.Watchlist)}
}

// ModelVersion identifies the lexicon build behind every verdict.
func (l *Lexicon) ModelVersion() string {
	return Version
}

// Classify scores one record. Unclassifiable input yields neutral with
// confidence 0, never an error. ClassifiedAt is left zero; persistence
// stamps it.
func (l *Lexicon) Classify(record model.Record) model.ClassifiedRecord {
	out := model.ClassifiedRecord{
		Record:       record,
		ModelVersion: Version,
		Sentiment:    model.SentimentNeutral,
	}
	if !record.IsClassifiable() {
		return out
	}

	lang := record.Language
	if lang == "" {
		lang = collector.DetectLanguage(record.RawText)
	}

	tokens, exclaims := tokenize(record.RawText)
	score := scoreTokens(tokens, lang, exclaims)

	out.Sentiment = label(score, lang)
	out.Confidence = math.Abs(score)
	out.Topics = ExtractTopics(tokens)
	out.Misinfo = l.rule.Evaluate(out.Sentiment, out.Confidence, out.Topics)
	return out
}

// tokenize lowercases and splits text into word tokens, keeping
// apostrophes so contractions like "don't" survive as negators. It also
// counts exclamation marks for the emphasis bump.
func tokenize(text string) ([]string, int) {
	lower := strings.ToLower(text)
	exclaims := strings.Count(lower, "!")

	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'"); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens, exclaims
}

// scoreTokens computes the sentiment score in [-1, 1]. English and
// French use the mean polarity of matched terms; Kinyarwanda uses the
// alpha-normalized sum. Boosters within two tokens before a term (or
// one after, for Kinyarwanda's trailing adverbs) amplify it; negators
// within three tokens before flip it partway.
func scoreTokens(tokens []string, lang model.Language, exclaims int) float64 {
	var sum float64
	hits := 0
	for i, tok := range tokens {
		base, ok := termScores[tok]
		if !ok {
			continue
		}
		hits++

		weight := 1.0
		for j := max(i-2, 0); j < i; j++ {
			if b, ok := boosters[tokens[j]]; ok {
				weight *= 1 + b
			}
		}
		if i+1 < len(tokens) {
			if b, ok := boosters[tokens[i+1]]; ok {
				weight *= 1 + b
			}
		}
		for j := max(i-3, 0); j < i; j++ {
			if negators[tokens[j]] {
				weight *= negationScalar
			}
		}
		sum += base * weight
	}
	if hits == 0 {
		return 0
	}

	var score float64
	if lang == model.LanguageKinyarwanda {
		score = sum / math.Sqrt(sum*sum+compoundAlpha)
	} else {
		score = sum / float64(hits)
	}

	if score != 0 && exclaims > 0 {
		if exclaims > maxExclaim {
			exclaims = maxExclaim
		}
		bump := float64(exclaims) * exclaimEmphasis
		if score > 0 {
			score += bump
		} else {
			score -= bump
		}
	}

	return clamp(score, -1, 1)
}

func label(score float64, lang model.Language) model.Sentiment {
	threshold := polarityThreshold
	if lang == model.LanguageKinyarwanda {
		threshold = compoundThreshold
	}
	switch {
	case score > threshold:
		return model.SentimentPositive
	case score < -threshold:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
