package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mkamanzi/farepulse/internal/classify"
	"github.com/mkamanzi/farepulse/internal/cli"
	"github.com/mkamanzi/farepulse/internal/model"
)

// RenderSummary returns a styled terminal summary of the record set:
// totals, sentiment split, sources, top topics and any volume spikes.
func RenderSummary(records []model.ClassifiedRecord) string {
	if len(records) == 0 {
		return cli.RenderBox("Sentiment Report",
			"No classified records yet.\nCollect and classify first: farepulse run")
	}

	summary := Summarize(records, 0)
	spikes := classify.DetectSpikes(records, 0)

	var b strings.Builder
	fmt.Fprintf(&b, "Period: %s to %s\n",
		summary.DateRange.Start.UTC().Format("2006-01-02"),
		summary.DateRange.End.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Records: %d", summary.TotalRecords)
	if summary.FlagCount > 0 {
		fmt.Fprintf(&b, "   %s %d flagged for review", cli.FlagIcon, summary.FlagCount)
	}
	b.WriteString("\n\n")

	for _, s := range model.AllSentiments() {
		count := summary.BySentiment[s]
		fmt.Fprintf(&b, "  • %s: %d (%d%%)\n",
			cli.StyleSentiment(s), count, percent(count, summary.TotalRecords))
	}

	sources := make([]model.Source, 0, len(summary.BySource))
	for src := range summary.BySource {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	parts := make([]string, 0, len(sources))
	for _, src := range sources {
		parts = append(parts, fmt.Sprintf("%s %d", src, summary.BySource[src]))
	}
	fmt.Fprintf(&b, "\nSources: %s\n", strings.Join(parts, ", "))

	if len(summary.TopTopics) > 0 {
		parts = parts[:0]
		for _, tc := range summary.TopTopics {
			parts = append(parts, fmt.Sprintf("%s (%d)", tc.Topic, tc.Count))
		}
		fmt.Fprintf(&b, "Top topics: %s\n", strings.Join(parts, ", "))
	}

	for _, spike := range spikes {
		fmt.Fprintf(&b, "\n%s Volume spike on %s: %d records (baseline %.1f/day)",
			cli.WarningIcon, spike.Day.Format("2006-01-02"), spike.Count, spike.Baseline)
	}

	return cli.RenderBox("Sentiment Report", strings.TrimRight(b.String(), "\n"))
}

func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return count * 100 / total
}
