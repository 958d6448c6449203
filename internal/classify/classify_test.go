package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkamanzi/farepulse/internal/model"
)

func record(text string) model.Record {
	return model.Record{
		ID:        "rec-1",
		Source:    model.SourceSocial,
		AuthorID:  "author-1",
		RawText:   text,
		Timestamp: time.Date(2025, 8, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestLexicon_Classify(t *testing.T) {
	lex := New(Config{})

	tests := []struct {
		name          string
		text          string
		wantSentiment model.Sentiment
		wantFlag      bool
	}{
		{
			name:          "fare complaint is negative but not flagged",
			text:          "fares too expensive",
			wantSentiment: model.SentimentNegative,
			wantFlag:      false,
		},
		{
			name:          "approval is positive",
			text:          "I like the new system",
			wantSentiment: model.SentimentPositive,
			wantFlag:      false,
		},
		{
			name:          "scam claim is negative and flagged",
			text:          "scam!!",
			wantSentiment: model.SentimentNegative,
			wantFlag:      true,
		},
		{
			name:          "no signal is neutral",
			text:          "The bus left at nine",
			wantSentiment: model.SentimentNeutral,
			wantFlag:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lex.Classify(record(tt.text))

			assert.Equal(t, tt.wantSentiment, got.Sentiment)
			assert.Equal(t, tt.wantFlag, got.Misinfo)
			assert.Equal(t, Version, got.ModelVersion)
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestLexicon_Classify_ConfidenceAndTopics(t *testing.T) {
	lex := New(Config{})

	complaint := lex.Classify(record("fares too expensive"))
	assert.InDelta(t, 0.65, complaint.Confidence, 0.01)
	assert.Less(t, complaint.Confidence, DefaultFlagThreshold)
	assert.Equal(t, []string{"fares"}, complaint.Topics)

	scam := lex.Classify(record("scam!!"))
	assert.InDelta(t, 1.0, scam.Confidence, 0.001)
	assert.Equal(t, []string{"fraud"}, scam.Topics)

	neutral := lex.Classify(record("The bus left at nine"))
	assert.Zero(t, neutral.Confidence)
	assert.Equal(t, []string{"operators"}, neutral.Topics)
}

func TestLexicon_Classify_Deterministic(t *testing.T) {
	lex := New(Config{})
	rec := record("RURA fare scam!! Do not trust the new tariffs")

	first := lex.Classify(rec)
	second := lex.Classify(rec)

	require.Equal(t, first, second)
	assert.Equal(t, model.SentimentNegative, first.Sentiment)
	assert.Equal(t, []string{"fares", "fraud", "regulator"}, first.Topics)
	assert.True(t, first.Misinfo)
	assert.True(t, first.ClassifiedAt.IsZero(), "verdict timestamps belong to persistence")
}

func TestLexicon_Classify_Unclassifiable(t *testing.T) {
	lex := New(Config{})

	for _, text := range []string{"", "   ", "\n\t  "} {
		got := lex.Classify(record(text))

		assert.Equal(t, model.SentimentNeutral, got.Sentiment)
		assert.Zero(t, got.Confidence)
		assert.Empty(t, got.Topics)
		assert.False(t, got.Misinfo)
		assert.Equal(t, Version, got.ModelVersion)
	}
}

func TestLexicon_Classify_Negation(t *testing.T) {
	lex := New(Config{})

	tests := []struct {
		name string
		text string
		want model.Sentiment
	}{
		{"negated praise flips negative", "I don't like the new fares", model.SentimentNegative},
		{"negated complaint flips positive", "not bad at all", model.SentimentPositive},
		{"plain praise stays positive", "I like the new fares", model.SentimentPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lex.Classify(record(tt.text))
			assert.Equal(t, tt.want, got.Sentiment)
		})
	}
}

func TestLexicon_Classify_French(t *testing.T) {
	lex := New(Config{})

	angry := lex.Classify(record("Les tarifs sont trop chers"))
	assert.Equal(t, model.SentimentNegative, angry.Sentiment)
	assert.Contains(t, angry.Topics, "fares")

	happy := lex.Classify(record("Le service est excellent"))
	assert.Equal(t, model.SentimentPositive, happy.Sentiment)
}

func TestLexicon_Classify_Kinyarwanda(t *testing.T) {
	lex := New(Config{})

	// Kinyarwanda scores are alpha-normalized sums, so a single strong
	// term lands near ±0.26 and is judged against the ±0.05 threshold.
	pricey := lex.Classify(record("Birahenze cyane"))
	assert.Equal(t, model.SentimentNegative, pricey.Sentiment)
	assert.InDelta(t, 0.26, pricey.Confidence, 0.01)

	happy := lex.Classify(record("Ndishimye cyane"))
	assert.Equal(t, model.SentimentPositive, happy.Sentiment)
}

func TestLexicon_Classify_LanguageOverride(t *testing.T) {
	lex := New(Config{})

	// The caller's language wins over detection when set.
	rec := record("ntibyiza")
	rec.Language = model.LanguageKinyarwanda
	got := lex.Classify(rec)

	assert.Equal(t, model.SentimentNegative, got.Sentiment)
	assert.InDelta(t, 0.18, got.Confidence, 0.01)
}

func TestLexicon_CustomFlagRule(t *testing.T) {
	lex := New(Config{
		FlagThreshold: 0.5,
		Watchlist:     []string{"fares"},
	})

	got := lex.Classify(record("fares too expensive"))

	assert.Equal(t, model.SentimentNegative, got.Sentiment)
	assert.True(t, got.Misinfo)
}

func TestFlagRule_Evaluate(t *testing.T) {
	rule := NewFlagRule(0, nil)

	tests := []struct {
		name       string
		sentiment  model.Sentiment
		topics     []string
		confidence float64
		want       bool
	}{
		{"negative confident watched", model.SentimentNegative, []string{"fraud"}, 0.9, true},
		{"threshold is inclusive", model.SentimentNegative, []string{"safety"}, 0.75, true},
		{"below threshold", model.SentimentNegative, []string{"fraud"}, 0.74, false},
		{"positive never flagged", model.SentimentPositive, []string{"fraud"}, 0.99, false},
		{"neutral never flagged", model.SentimentNeutral, []string{"fraud"}, 0.99, false},
		{"unwatched topic", model.SentimentNegative, []string{"fares"}, 0.9, false},
		{"no topics", model.SentimentNegative, nil, 0.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rule.Evaluate(tt.sentiment, tt.confidence, tt.topics))
		})
	}
}

func TestExtractTopics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"fare words", "the fare is a ripoff", []string{"fares"}},
		{"several topics sorted", "RURA raised bus fares", []string{"fares", "operators", "regulator"}},
		{"kinyarwanda keyword", "ikarita yanjye", []string{"payment"}},
		{"nothing matches", "hello there", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, _ := tokenize(tt.text)
			assert.Equal(t, tt.want, ExtractTopics(tokens))
		})
	}
}

func TestTokenize(t *testing.T) {
	tokens, exclaims := tokenize("Don't trust RURA!! It's a scam.")

	assert.Equal(t, []string{"don't", "trust", "rura", "it's", "a", "scam"}, tokens)
	assert.Equal(t, 2, exclaims)
}
