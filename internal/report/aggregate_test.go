package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkamanzi/farepulse/internal/model"
)

func crec(ts time.Time, src model.Source, sentiment model.Sentiment, topics []string, flagged bool) model.ClassifiedRecord {
	return model.ClassifiedRecord{
		Record: model.Record{
			ID:        "rec-" + ts.Format("20060102150405"),
			Source:    src,
			Timestamp: ts,
			RawText:   "text",
		},
		Sentiment:    sentiment,
		Confidence:   0.8,
		Topics:       topics,
		Misinfo:      flagged,
		ModelVersion: "test/1",
	}
}

func TestAggregate_DayWindow(t *testing.T) {
	day1 := time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 8, 14, 16, 30, 0, 0, time.UTC)

	records := []model.ClassifiedRecord{
		crec(day1, model.SourceSocial, model.SentimentNegative, []string{"fares"}, false),
		crec(day1.Add(time.Hour), model.SourceNews, model.SentimentNegative, []string{"fares", "regulator"}, false),
		crec(day1.Add(2*time.Hour), model.SourceSocial, model.SentimentPositive, nil, false),
		crec(day2, model.SourceSurvey, model.SentimentNegative, []string{"fraud"}, true),
	}

	buckets := Aggregate(records, model.WindowDay, 0)

	require.Len(t, buckets, 2)

	first := buckets[0]
	assert.Equal(t, time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC), first.Start)
	assert.Equal(t, time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC), first.End)
	assert.Equal(t, model.WindowDay, first.Window)
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 2, first.Count(model.SentimentNegative))
	assert.Equal(t, 1, first.Count(model.SentimentPositive))
	assert.Equal(t, 0, first.Count(model.SentimentNeutral))
	assert.Equal(t, 0, first.FlagCount)
	// fares appears twice, regulator once.
	assert.Equal(t, []model.TopicCount{{Topic: "fares", Count: 2}, {Topic: "regulator", Count: 1}}, first.TopTopics)

	second := buckets[1]
	assert.Equal(t, time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC), second.Start)
	assert.Equal(t, 1, second.Total)
	assert.Equal(t, 1, second.FlagCount)
}

func TestAggregate_Idempotent(t *testing.T) {
	ts := time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC)
	records := []model.ClassifiedRecord{
		crec(ts, model.SourceSocial, model.SentimentNegative, []string{"fares"}, false),
		crec(ts.Add(26*time.Hour), model.SourceNews, model.SentimentNeutral, nil, false),
	}

	first := Aggregate(records, model.WindowDay, 0)
	second := Aggregate(records, model.WindowDay, 0)

	require.Equal(t, first, second)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, model.WindowDay, 0))
	assert.Empty(t, Aggregate([]model.ClassifiedRecord{}, model.WindowWeek, 0))
}

func TestAggregate_WeekSnapsToMonday(t *testing.T) {
	wednesday := time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC)
	thursday := time.Date(2025, 8, 14, 9, 0, 0, 0, time.UTC)
	previousSunday := time.Date(2025, 8, 10, 23, 0, 0, 0, time.UTC)

	records := []model.ClassifiedRecord{
		crec(wednesday, model.SourceSocial, model.SentimentNeutral, nil, false),
		crec(thursday, model.SourceSocial, model.SentimentNeutral, nil, false),
		crec(previousSunday, model.SourceNews, model.SentimentNeutral, nil, false),
	}

	buckets := Aggregate(records, model.WindowWeek, 0)

	require.Len(t, buckets, 2)
	assert.Equal(t, time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, 1, buckets[0].Total)
	assert.Equal(t, time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC), buckets[1].Start)
	assert.Equal(t, 2, buckets[1].Total)
}

func TestAggregate_HourWindow(t *testing.T) {
	base := time.Date(2025, 8, 13, 9, 10, 0, 0, time.UTC)

	records := []model.ClassifiedRecord{
		crec(base, model.SourceSocial, model.SentimentNeutral, nil, false),
		crec(base.Add(20*time.Minute), model.SourceSocial, model.SentimentNeutral, nil, false),
		crec(base.Add(time.Hour), model.SourceSocial, model.SentimentNeutral, nil, false),
	}

	buckets := Aggregate(records, model.WindowHour, 0)

	require.Len(t, buckets, 2)
	assert.Equal(t, time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, time.Date(2025, 8, 13, 10, 0, 0, 0, time.UTC), buckets[0].End)
	assert.Equal(t, 2, buckets[0].Total)
}

func TestAggregate_TopicCap(t *testing.T) {
	ts := time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC)
	records := []model.ClassifiedRecord{
		crec(ts, model.SourceSocial, model.SentimentNegative, []string{"fares", "routes", "payment", "operators"}, false),
		crec(ts.Add(time.Minute), model.SourceSocial, model.SentimentNegative, []string{"fares"}, false),
	}

	buckets := Aggregate(records, model.WindowDay, 2)

	require.Len(t, buckets, 1)
	require.Len(t, buckets[0].TopTopics, 2)
	assert.Equal(t, model.TopicCount{Topic: "fares", Count: 2}, buckets[0].TopTopics[0])
	// Ties resolve alphabetically.
	assert.Equal(t, model.TopicCount{Topic: "operators", Count: 1}, buckets[0].TopTopics[1])
}

func TestSummarize(t *testing.T) {
	day1 := time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 8, 14, 16, 0, 0, 0, time.UTC)

	records := []model.ClassifiedRecord{
		crec(day1, model.SourceSocial, model.SentimentNegative, []string{"fares"}, false),
		crec(day2, model.SourceNews, model.SentimentPositive, []string{"fares"}, false),
		crec(day1.Add(time.Hour), model.SourceSocial, model.SentimentNegative, []string{"fraud"}, true),
	}

	summary := Summarize(records, 0)

	assert.Equal(t, 3, summary.TotalRecords)
	assert.Equal(t, 1, summary.FlagCount)
	assert.Equal(t, day1, summary.DateRange.Start)
	assert.Equal(t, day2, summary.DateRange.End)
	assert.Equal(t, 2, summary.BySentiment[model.SentimentNegative])
	assert.Equal(t, 1, summary.BySentiment[model.SentimentPositive])
	assert.Equal(t, 2, summary.BySource[model.SourceSocial])
	assert.Equal(t, 1, summary.BySource[model.SourceNews])
	require.NotEmpty(t, summary.TopTopics)
	assert.Equal(t, model.TopicCount{Topic: "fares", Count: 2}, summary.TopTopics[0])
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil, 0)

	assert.Zero(t, summary.TotalRecords)
	assert.Zero(t, summary.FlagCount)
	assert.True(t, summary.DateRange.Start.IsZero())
	assert.Empty(t, summary.TopTopics)
}
