package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mkamanzi/farepulse/internal/cli"
	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
)

// RenderHTML writes a static chart dashboard for the records: sentiment
// trend, source and sentiment distributions, sentiment by source, and a
// topic cloud. Stateless; callers pass whatever record set they want
// charted.
func RenderHTML(w io.Writer, records []model.ClassifiedRecord, window model.Window) error {
	buckets := Aggregate(records, window, 0)
	summary := Summarize(records, 0)

	page := components.NewPage()
	page.PageTitle = "farepulse sentiment report"
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		trendChart(buckets, window),
		sourceChart(summary),
		sentimentChart(summary),
		sourceSentimentChart(records),
		topicCloud(summary),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}

func chartColor(s model.Sentiment) string {
	return string(cli.SentimentColor(s))
}

func axisFormat(window model.Window) string {
	if window == model.WindowHour {
		return "2006-01-02 15:04"
	}
	return "2006-01-02"
}

func trendChart(buckets []model.MetricBucket, window model.Window) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Sentiment trend",
			Subtitle: fmt.Sprintf("records per %s", window),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	axis := make([]string, len(buckets))
	series := make(map[model.Sentiment][]opts.LineData)
	for i, b := range buckets {
		axis[i] = b.Start.Format(axisFormat(window))
		for _, s := range model.AllSentiments() {
			series[s] = append(series[s], opts.LineData{Value: b.Count(s)})
		}
	}

	line.SetXAxis(axis)
	for _, s := range model.AllSentiments() {
		line.AddSeries(string(s), series[s],
			charts.WithItemStyleOpts(opts.ItemStyle{Color: chartColor(s)}),
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)
	}
	return line
}

func sourceChart(summary *service.ReportSummary) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Records by source"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	sources := make([]model.Source, 0, len(summary.BySource))
	for src := range summary.BySource {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	data := make([]opts.PieData, 0, len(sources))
	for _, src := range sources {
		data = append(data, opts.PieData{Name: string(src), Value: summary.BySource[src]})
	}

	pie.AddSeries("sources", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
	)
	return pie
}

func sentimentChart(summary *service.ReportSummary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Sentiment distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	axis := make([]string, 0, 3)
	data := make([]opts.BarData, 0, 3)
	for _, s := range model.AllSentiments() {
		axis = append(axis, string(s))
		data = append(data, opts.BarData{
			Value:     summary.BySentiment[s],
			ItemStyle: &opts.ItemStyle{Color: chartColor(s)},
		})
	}

	bar.SetXAxis(axis)
	bar.AddSeries("records", data)
	return bar
}

func sourceSentimentChart(records []model.ClassifiedRecord) *charts.Bar {
	counts := make(map[model.Source]map[model.Sentiment]int)
	for i := range records {
		src := records[i].Record.Source
		if counts[src] == nil {
			counts[src] = make(map[model.Sentiment]int)
		}
		counts[src][records[i].Sentiment]++
	}

	sources := make([]model.Source, 0, len(counts))
	for src := range counts {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Sentiment by source"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	axis := make([]string, len(sources))
	for i, src := range sources {
		axis[i] = string(src)
	}
	bar.SetXAxis(axis)

	for _, s := range model.AllSentiments() {
		data := make([]opts.BarData, len(sources))
		for i, src := range sources {
			data[i] = opts.BarData{Value: counts[src][s]}
		}
		bar.AddSeries(string(s), data,
			charts.WithBarChartOpts(opts.BarChart{Stack: "total"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: chartColor(s)}),
		)
	}
	return bar
}

func topicCloud(summary *service.ReportSummary) *charts.WordCloud {
	cloud := charts.NewWordCloud()
	cloud.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Topics"}),
	)

	data := make([]opts.WordCloudData, 0, len(summary.TopTopics))
	for _, tc := range summary.TopTopics {
		data = append(data, opts.WordCloudData{Name: tc.Topic, Value: float32(tc.Count)})
	}

	cloud.AddSeries("topics", data)
	return cloud
}
