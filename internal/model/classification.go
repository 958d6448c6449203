package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Sentiment is the label assigned to a record by the classifier.
type Sentiment string

const (
	// SentimentPositive indicates approving commentary.
	SentimentPositive Sentiment = "positive"
	// SentimentNegative indicates critical commentary.
	SentimentNegative Sentiment = "negative"
	// SentimentNeutral indicates commentary with no clear polarity,
	// including records the classifier skipped.
	SentimentNeutral Sentiment = "neutral"
)

// AllSentiments lists the sentiment labels in display order.
func AllSentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}
}

// ParseSentiment converts a string to a Sentiment, case-insensitively.
func ParseSentiment(s string) (Sentiment, error) {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive, nil
	case SentimentNegative:
		return SentimentNegative, nil
	case SentimentNeutral:
		return SentimentNeutral, nil
	default:
		return "", fmt.Errorf("unknown sentiment %q", s)
	}
}

// ClassifiedRecord is a record plus the classifier's verdict.
// It traces to exactly one Record and is never mutated after creation.
type ClassifiedRecord struct {
	ClassifiedAt time.Time
	Record       Record
	ModelVersion string
	Topics       []string
	Sentiment    Sentiment
	Confidence   float64
	Misinfo      bool
}

// HasTopic reports whether the record was tagged with the given topic.
func (c *ClassifiedRecord) HasTopic(topic string) bool {
	for _, t := range c.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// SortedTopics returns the topic set in stable alphabetical order.
func (c *ClassifiedRecord) SortedTopics() []string {
	out := make([]string, len(c.Topics))
	copy(out, c.Topics)
	sort.Strings(out)
	return out
}
