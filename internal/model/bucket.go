package model

import "time"

// Window is the bucketing granularity for aggregation.
type Window string

const (
	// WindowHour buckets records per clock hour.
	WindowHour Window = "hour"
	// WindowDay buckets records per calendar day.
	WindowDay Window = "day"
	// WindowWeek buckets records per ISO week, anchored on Monday.
	WindowWeek Window = "week"
)

// ParseWindow converts a string to a Window.
func ParseWindow(s string) (Window, bool) {
	switch Window(s) {
	case WindowHour, WindowDay, WindowWeek:
		return Window(s), true
	default:
		return "", false
	}
}

// Duration returns the nominal length of one bucket.
func (w Window) Duration() time.Duration {
	switch w {
	case WindowHour:
		return time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Truncate maps a timestamp onto the start of its bucket.
func (w Window) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch w {
	case WindowHour:
		return t.Truncate(time.Hour)
	case WindowWeek:
		day := t.Truncate(24 * time.Hour)
		// time.Weekday counts from Sunday; shift so weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default:
		return t.Truncate(24 * time.Hour)
	}
}

// TopicCount pairs a topic with its occurrence count inside a bucket.
type TopicCount struct {
	Topic string
	Count int
}

// MetricBucket is a time-windowed aggregate of classified sentiment.
// Buckets are derived on demand from the ClassifiedRecord set and are
// never stored as authoritative state.
type MetricBucket struct {
	Start     time.Time
	End       time.Time
	Window    Window
	Counts    map[Sentiment]int
	TopTopics []TopicCount
	Total     int
	FlagCount int
}

// Count returns the number of records with the given sentiment.
func (b *MetricBucket) Count(s Sentiment) int {
	if b.Counts == nil {
		return 0
	}
	return b.Counts[s]
}
