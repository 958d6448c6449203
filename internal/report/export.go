package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mkamanzi/farepulse/internal/model"
)

// ExportRecord is the stable flat schema shared by the CSV and JSON
// exports and the dashboard API. Field names are part of the contract;
// add columns at the end, never rename.
type ExportRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	ClassifiedAt time.Time `json:"classified_at"`
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Language     string    `json:"language"`
	AuthorID     string    `json:"author_id"`
	Sentiment    string    `json:"sentiment"`
	ModelVersion string    `json:"model_version"`
	Title        string    `json:"title,omitempty"`
	URL          string    `json:"url,omitempty"`
	RawText      string    `json:"text"`
	Topics       []string  `json:"topics"`
	Confidence   float64   `json:"confidence"`
	Misinfo      bool      `json:"misinformation_flag"`
}

// NewExportRecord flattens a classified record into the export schema.
func NewExportRecord(c model.ClassifiedRecord) ExportRecord {
	return ExportRecord{
		Timestamp:    c.Record.Timestamp,
		ClassifiedAt: c.ClassifiedAt,
		ID:           c.Record.ID,
		Source:       string(c.Record.Source),
		Language:     string(c.Record.Language),
		AuthorID:     c.Record.AuthorID,
		Sentiment:    string(c.Sentiment),
		ModelVersion: c.ModelVersion,
		Title:        c.Record.Title,
		URL:          c.Record.URL,
		RawText:      c.Record.RawText,
		Topics:       c.SortedTopics(),
		Confidence:   c.Confidence,
		Misinfo:      c.Misinfo,
	}
}

// csvHeader lists the export columns in order.
var csvHeader = []string{
	"id", "timestamp", "source", "language", "author_id", "sentiment",
	"confidence", "topics", "misinformation_flag", "model_version",
	"classified_at", "title", "url", "text",
}

// WriteCSV writes records in the export schema. Topics are joined with
// semicolons inside their cell.
func WriteCSV(w io.Writer, records []model.ClassifiedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range records {
		rec := NewExportRecord(records[i])
		row := []string{
			rec.ID,
			rec.Timestamp.UTC().Format(time.RFC3339),
			rec.Source,
			rec.Language,
			rec.AuthorID,
			rec.Sentiment,
			strconv.FormatFloat(rec.Confidence, 'f', 4, 64),
			strings.Join(rec.Topics, ";"),
			strconv.FormatBool(rec.Misinfo),
			rec.ModelVersion,
			rec.ClassifiedAt.UTC().Format(time.RFC3339),
			rec.Title,
			rec.URL,
			rec.RawText,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes records as an indented JSON array. Empty input
// yields an empty array, not null.
func WriteJSON(w io.Writer, records []model.ClassifiedRecord) error {
	out := make([]ExportRecord, 0, len(records))
	for i := range records {
		out = append(out, NewExportRecord(records[i]))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}
