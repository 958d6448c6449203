package server

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/report"
	"github.com/mkamanzi/farepulse/internal/service"
)

const (
	defaultRecordLimit = 100
	maxRecordLimit     = 1000
)

type summaryResponse struct {
	From         time.Time               `json:"from"`
	To           time.Time               `json:"to"`
	BySentiment  map[model.Sentiment]int `json:"by_sentiment"`
	BySource     map[model.Source]int    `json:"by_source"`
	TopTopics    []topicCount            `json:"top_topics"`
	TotalRecords int                     `json:"total_records"`
	FlagCount    int                     `json:"flag_count"`
	Demo         bool                    `json:"demo"`
}

type topicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type bucketResponse struct {
	Start     time.Time               `json:"start"`
	End       time.Time               `json:"end"`
	Window    model.Window            `json:"window"`
	Counts    map[model.Sentiment]int `json:"counts"`
	TopTopics []topicCount            `json:"top_topics"`
	Total     int                     `json:"total"`
	FlagCount int                     `json:"flag_count"`
}

// loadRecords returns the record set the dashboard surfaces render. In
// demo mode, or when the store holds nothing yet, it falls back to the
// built-in samples so the page is never blank. Samples never touch the
// store.
func (s *Server) loadRecords(c *gin.Context) ([]model.ClassifiedRecord, bool, error) {
	if s.config.Demo {
		return SampleRecords(), true, nil
	}

	records, err := s.store.GetClassifiedRecords(c.Request.Context(), service.RecordFilter{})
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return SampleRecords(), true, nil
	}
	return records, false, nil
}

func (s *Server) handleDashboard(c *gin.Context) {
	records, _, err := s.loadRecords(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load records"})
		return
	}

	var buf bytes.Buffer
	if err := report.RenderHTML(&buf, records, s.config.Window); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render dashboard"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleHealthz(c *gin.Context) {
	if _, err := s.store.SchemaVersion(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "farepulse"})
}

func (s *Server) handleSummary(c *gin.Context) {
	records, demo, err := s.loadRecords(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load records"})
		return
	}

	summary := report.Summarize(records, report.DefaultTopTopics)
	c.JSON(http.StatusOK, summaryResponse{
		From:         summary.DateRange.Start,
		To:           summary.DateRange.End,
		BySentiment:  summary.BySentiment,
		BySource:     summary.BySource,
		TopTopics:    topicCounts(summary.TopTopics),
		TotalRecords: summary.TotalRecords,
		FlagCount:    summary.FlagCount,
		Demo:         demo,
	})
}

func (s *Server) handleBuckets(c *gin.Context) {
	window := s.config.Window
	if raw := c.Query("window"); raw != "" {
		parsed, ok := model.ParseWindow(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown window %q", raw)})
			return
		}
		window = parsed
	}

	records, _, err := s.loadRecords(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load records"})
		return
	}

	buckets := report.Aggregate(records, window, report.DefaultTopTopics)
	out := make([]bucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, bucketResponse{
			Start:     b.Start,
			End:       b.End,
			Window:    b.Window,
			Counts:    b.Counts,
			TopTopics: topicCounts(b.TopTopics),
			Total:     b.Total,
			FlagCount: b.FlagCount,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleRecords(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var records []model.ClassifiedRecord
	if s.config.Demo {
		records = filterRecords(SampleRecords(), filter)
	} else {
		records, err = s.store.GetClassifiedRecords(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load records"})
			return
		}
		if len(records) == 0 {
			count, countErr := s.store.CountClassifications(c.Request.Context())
			if countErr == nil && count == 0 {
				records = filterRecords(SampleRecords(), filter)
			}
		}
	}

	out := make([]report.ExportRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, report.NewExportRecord(rec))
	}
	c.JSON(http.StatusOK, out)
}

func parseRecordFilter(c *gin.Context) (service.RecordFilter, error) {
	filter := service.RecordFilter{Limit: defaultRecordLimit}

	if raw := c.Query("source"); raw != "" {
		source, err := model.ParseSource(raw)
		if err != nil {
			return filter, err
		}
		filter.Source = source
	}
	if raw := c.Query("sentiment"); raw != "" {
		sentiment, err := model.ParseSentiment(raw)
		if err != nil {
			return filter, err
		}
		filter.Sentiment = sentiment
	}
	if raw := c.Query("flagged"); raw != "" {
		flagged, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid flagged value %q", raw)
		}
		filter.FlaggedOnly = flagged
	}
	if raw := c.Query("since"); raw != "" {
		ts, err := parseTime(raw)
		if err != nil {
			return filter, err
		}
		filter.Since = &ts
	}
	if raw := c.Query("until"); raw != "" {
		ts, err := parseTime(raw)
		if err != nil {
			return filter, err
		}
		filter.Until = &ts
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid limit %q", raw)
		}
		if n > 0 {
			filter.Limit = min(n, maxRecordLimit)
		}
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid offset %q", raw)
		}
		filter.Offset = n
	}

	return filter, nil
}

func parseTime(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q, want RFC3339 or YYYY-MM-DD", raw)
}

// filterRecords applies a record filter in memory, mirroring the store's
// SQL semantics: since inclusive, until exclusive, newest first, offset
// only meaningful together with a limit. Sample data never touches the
// store, so it is filtered here.
func filterRecords(records []model.ClassifiedRecord, filter service.RecordFilter) []model.ClassifiedRecord {
	out := make([]model.ClassifiedRecord, 0, len(records))
	for _, rec := range records {
		if filter.Source != "" && rec.Record.Source != filter.Source {
			continue
		}
		if filter.Sentiment != "" && rec.Sentiment != filter.Sentiment {
			continue
		}
		if filter.FlaggedOnly && !rec.Misinfo {
			continue
		}
		if filter.Since != nil && rec.Record.Timestamp.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && !rec.Record.Timestamp.Before(*filter.Until) {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Record.Timestamp.After(out[j].Record.Timestamp)
	})

	if filter.Limit > 0 {
		if filter.Offset > 0 {
			if filter.Offset >= len(out) {
				return nil
			}
			out = out[filter.Offset:]
		}
		if len(out) > filter.Limit {
			out = out[:filter.Limit]
		}
	}
	return out
}

func topicCounts(in []model.TopicCount) []topicCount {
	out := make([]topicCount, 0, len(in))
	for _, tc := range in {
		out = append(out, topicCount{Topic: tc.Topic, Count: tc.Count})
	}
	return out
}
