package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/report"
	"github.com/mkamanzi/farepulse/internal/service"
	"github.com/mkamanzi/farepulse/internal/storage"
)

func testServer(t *testing.T, demo bool) (*Server, service.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	cfg := DefaultConfig()
	cfg.Demo = demo
	return New(store, cfg), store
}

func seedClassified(t *testing.T, store service.Store) []model.ClassifiedRecord {
	t.Helper()
	ctx := context.Background()

	day1 := time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 8, 14, 16, 0, 0, 0, time.UTC)

	classified := []model.ClassifiedRecord{
		{
			Record: model.Record{
				ID: "rec-101", Source: model.SourceSocial, AuthorID: "author-1",
				RawText: "Tap cards are a scam", Language: model.LanguageEnglish, Timestamp: day1,
			},
			Sentiment: model.SentimentNegative, Confidence: 0.9,
			Topics: []string{"fraud", "payment"}, Misinfo: true, ModelVersion: "test/1",
		},
		{
			Record: model.Record{
				ID: "rec-102", Source: model.SourceNews, AuthorID: "author-2",
				RawText: "Service has improved", Language: model.LanguageEnglish, Timestamp: day1.Add(time.Hour),
			},
			Sentiment: model.SentimentPositive, Confidence: 0.6,
			Topics: []string{"service-quality"}, ModelVersion: "test/1",
		},
		{
			Record: model.Record{
				ID: "rec-103", Source: model.SourceSurvey, AuthorID: "author-3",
				RawText: "The bus left at nine", Language: model.LanguageEnglish, Timestamp: day2,
			},
			Sentiment: model.SentimentNeutral, Confidence: 0, ModelVersion: "test/1",
		},
	}

	records := make([]model.Record, 0, len(classified))
	for i := range classified {
		classified[i].Record.Hash = classified[i].Record.GenerateHash()
		records = append(records, classified[i].Record)
	}

	saved, err := store.SaveRecords(ctx, records)
	require.NoError(t, err)
	require.Equal(t, len(records), saved)
	require.NoError(t, store.SaveClassifications(ctx, classified))

	return classified
}

func doRequest(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Healthz(t *testing.T) {
	srv, _ := testServer(t, false)

	w := doRequest(t, srv, "/healthz")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestServer_Summary(t *testing.T) {
	srv, store := testServer(t, false)
	seedClassified(t, store)

	w := doRequest(t, srv, "/api/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var summary summaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	assert.Equal(t, 3, summary.TotalRecords)
	assert.Equal(t, 1, summary.FlagCount)
	assert.False(t, summary.Demo)
	assert.Equal(t, 1, summary.BySentiment[model.SentimentNegative])
	assert.Equal(t, 1, summary.BySource[model.SourceSurvey])
	require.NotEmpty(t, summary.TopTopics)
	assert.Equal(t, "fraud", summary.TopTopics[0].Topic)
}

func TestServer_Summary_EmptyStoreFallsBackToSamples(t *testing.T) {
	srv, _ := testServer(t, false)

	w := doRequest(t, srv, "/api/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var summary summaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	assert.True(t, summary.Demo)
	assert.Equal(t, len(sampleRows), summary.TotalRecords)
	assert.Equal(t, 1, summary.FlagCount)
	assert.Equal(t, 7, summary.BySentiment[model.SentimentPositive])
	assert.Equal(t, 3, summary.BySentiment[model.SentimentNegative])
	assert.Equal(t, 4, summary.BySentiment[model.SentimentNeutral])
}

func TestServer_Buckets(t *testing.T) {
	srv, store := testServer(t, false)
	seedClassified(t, store)

	w := doRequest(t, srv, "/api/buckets?window=day")
	require.Equal(t, http.StatusOK, w.Code)

	var buckets []bucketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &buckets))

	require.Len(t, buckets, 2)
	assert.Equal(t, model.WindowDay, buckets[0].Window)
	assert.True(t, buckets[0].Start.Before(buckets[1].Start))
	assert.Equal(t, 2, buckets[0].Total)
	assert.Equal(t, 1, buckets[1].Total)
	assert.Equal(t, 1, buckets[0].FlagCount)
}

func TestServer_Buckets_UnknownWindow(t *testing.T) {
	srv, _ := testServer(t, false)

	w := doRequest(t, srv, "/api/buckets?window=fortnight")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown window")
}

func TestServer_Records(t *testing.T) {
	srv, store := testServer(t, false)
	seedClassified(t, store)

	w := doRequest(t, srv, "/api/records?sentiment=negative&flagged=true")
	require.Equal(t, http.StatusOK, w.Code)

	var records []report.ExportRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))

	require.Len(t, records, 1)
	assert.Equal(t, "rec-101", records[0].ID)
	assert.True(t, records[0].Misinfo)
}

func TestServer_Records_SourceAndLimit(t *testing.T) {
	srv, store := testServer(t, false)
	seedClassified(t, store)

	w := doRequest(t, srv, "/api/records?source=social")
	require.Equal(t, http.StatusOK, w.Code)

	var records []report.ExportRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "rec-101", records[0].ID)

	w = doRequest(t, srv, "/api/records?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	records = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 2)
	// Newest first
	assert.Equal(t, "rec-103", records[0].ID)
}

func TestServer_Records_BadFilter(t *testing.T) {
	srv, _ := testServer(t, false)

	for _, path := range []string{
		"/api/records?sentiment=sideways",
		"/api/records?source=telegraph",
		"/api/records?flagged=perhaps",
		"/api/records?since=not-a-date",
		"/api/records?limit=-3",
	} {
		w := doRequest(t, srv, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, "path %s", path)
	}
}

func TestServer_Records_DemoMode(t *testing.T) {
	srv, _ := testServer(t, true)

	w := doRequest(t, srv, "/api/records?flagged=true")
	require.Equal(t, http.StatusOK, w.Code)

	var records []report.ExportRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))

	require.Len(t, records, 1)
	assert.True(t, records[0].Misinfo)
	assert.Contains(t, records[0].RawText, "scam")
}

func TestServer_Dashboard(t *testing.T) {
	srv, store := testServer(t, false)
	seedClassified(t, store)

	w := doRequest(t, srv, "/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "farepulse sentiment report")
	assert.Contains(t, w.Body.String(), "Sentiment trend")
}

func TestServer_Metrics(t *testing.T) {
	srv, store := testServer(t, false)
	seedClassified(t, store)

	// Drive one request through the middleware first
	doRequest(t, srv, "/healthz")

	w := doRequest(t, srv, "/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "farepulse_http_requests_total")
	assert.Contains(t, body, "farepulse_records_stored 3")
	assert.Contains(t, body, "farepulse_records_classified 3")
	assert.Contains(t, body, "farepulse_flags_open 1")
}

func TestFilterRecords(t *testing.T) {
	records := SampleRecords()

	flagged := filterRecords(records, service.RecordFilter{FlaggedOnly: true})
	require.Len(t, flagged, 1)

	social := filterRecords(records, service.RecordFilter{Source: model.SourceSocial})
	for _, rec := range social {
		assert.Equal(t, model.SourceSocial, rec.Record.Source)
	}

	limited := filterRecords(records, service.RecordFilter{Limit: 5})
	require.Len(t, limited, 5)
	// Newest first
	assert.True(t, !limited[0].Record.Timestamp.Before(limited[4].Record.Timestamp))

	page := filterRecords(records, service.RecordFilter{Limit: 5, Offset: 12})
	assert.Len(t, page, 2)

	past := filterRecords(records, service.RecordFilter{Offset: 50, Limit: 5})
	assert.Empty(t, past)
}

func TestParseTime(t *testing.T) {
	ts, err := parseTime("2025-08-13T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC), ts)

	ts, err = parseTime("2025-08-13")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC), ts)

	_, err = parseTime("last tuesday")
	assert.Error(t, err)
}
