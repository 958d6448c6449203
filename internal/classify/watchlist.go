package classify

import "github.com/mkamanzi/farepulse/internal/model"

// DefaultFlagThreshold is the confidence a negative verdict needs
// before the misinformation rule looks at its topics.
const DefaultFlagThreshold = 0.75

// DefaultWatchlist returns the topics the misinformation rule watches
// out of the box: the rumor-prone ones. Everyday fare complaints stay
// off the list so the review queue holds suspect claims, not gripes.
func DefaultWatchlist() []string {
	return []string{"fraud", "safety", "regulator"}
}

// FlagRule decides whether a verdict gets the misinformation flag. It
// is a fixed predicate over the verdict, not a learned detector: the
// flag marks a record for human review, it does not judge truth.
type FlagRule struct {
	watchlist map[string]bool
	threshold float64
}

// NewFlagRule builds a rule from a confidence threshold and a topic
// watch-list. Zero threshold and empty watch-list select the defaults.
func NewFlagRule(threshold float64, watchlist []string) FlagRule {
	if threshold <= 0 {
		threshold = DefaultFlagThreshold
	}
	if len(watchlist) == 0 {
		watchlist = DefaultWatchlist()
	}
	set := make(map[string]bool, len(watchlist))
	for _, topic := range watchlist {
		set[topic] = true
	}
	return FlagRule{threshold: threshold, watchlist: set}
}

// Evaluate reports whether a verdict should carry the flag: negative,
// at or above the confidence threshold, and touching a watched topic.
func (r FlagRule) Evaluate(sentiment model.Sentiment, confidence float64, topics []string) bool {
	if sentiment != model.SentimentNegative || confidence < r.threshold {
		return false
	}
	for _, topic := range topics {
		if r.watchlist[topic] {
			return true
		}
	}
	return false
}
