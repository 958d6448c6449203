// Package report turns classified records into windowed metrics and
// renders them as exports, charts and terminal summaries. Everything
// here is a pure function of the record set it is handed: buckets are
// recomputed on demand and never stored.
package report

import (
	"sort"
	"time"

	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
)

// DefaultTopTopics caps how many topics a bucket or summary reports.
const DefaultTopTopics = 8

type accumulator struct {
	counts map[model.Sentiment]int
	topics map[string]int
	total  int
	flags  int
}

func newAccumulator() *accumulator {
	counts := make(map[model.Sentiment]int, 3)
	for _, s := range model.AllSentiments() {
		counts[s] = 0
	}
	return &accumulator{counts: counts, topics: make(map[string]int)}
}

func (a *accumulator) add(rec *model.ClassifiedRecord) {
	a.total++
	a.counts[rec.Sentiment]++
	if rec.Misinfo {
		a.flags++
	}
	for _, topic := range rec.Topics {
		a.topics[topic]++
	}
}

// Aggregate buckets records by the window their timestamp falls into.
// Identical input always yields identical buckets; empty input yields
// an empty slice. Zero topN selects the default cap.
func Aggregate(records []model.ClassifiedRecord, window model.Window, topN int) []model.MetricBucket {
	if topN <= 0 {
		topN = DefaultTopTopics
	}

	byStart := make(map[time.Time]*accumulator)
	for i := range records {
		start := window.Truncate(records[i].Record.Timestamp)
		acc := byStart[start]
		if acc == nil {
			acc = newAccumulator()
			byStart[start] = acc
		}
		acc.add(&records[i])
	}

	starts := make([]time.Time, 0, len(byStart))
	for start := range byStart {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	buckets := make([]model.MetricBucket, 0, len(starts))
	for _, start := range starts {
		acc := byStart[start]
		buckets = append(buckets, model.MetricBucket{
			Start:     start,
			End:       start.Add(window.Duration()),
			Window:    window,
			Counts:    acc.counts,
			TopTopics: topTopics(acc.topics, topN),
			Total:     acc.total,
			FlagCount: acc.flags,
		})
	}
	return buckets
}

// Summarize rolls the whole record set into one report summary. Zero
// topN selects the default topic cap.
func Summarize(records []model.ClassifiedRecord, topN int) *service.ReportSummary {
	if topN <= 0 {
		topN = DefaultTopTopics
	}

	acc := newAccumulator()
	bySource := make(map[model.Source]int)
	var earliest, latest time.Time

	for i := range records {
		rec := &records[i]
		acc.add(rec)
		bySource[rec.Record.Source]++

		ts := rec.Record.Timestamp
		if earliest.IsZero() || ts.Before(earliest) {
			earliest = ts
		}
		if latest.IsZero() || ts.After(latest) {
			latest = ts
		}
	}

	return &service.ReportSummary{
		DateRange:    service.DateRange{Start: earliest, End: latest},
		BySentiment:  acc.counts,
		BySource:     bySource,
		TopTopics:    topTopics(acc.topics, topN),
		TotalRecords: acc.total,
		FlagCount:    acc.flags,
	}
}

// topTopics orders topics by count, ties alphabetically, capped at n.
func topTopics(counts map[string]int, n int) []model.TopicCount {
	out := make([]model.TopicCount, 0, len(counts))
	for topic, count := range counts {
		out = append(out, model.TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
