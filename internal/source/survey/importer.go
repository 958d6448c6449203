// Package survey imports free-text answers from survey tool CSV exports.
// Exports land on disk out of band; the importer only reads them.
package survey

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkamanzi/farepulse/internal/common"
	"github.com/mkamanzi/farepulse/internal/model"
)

// Survey tools disagree on header names; the importer accepts the usual
// suspects, first match wins.
var (
	textColumns   = []string{"comment", "feedback", "response", "text", "opinion", "answer"}
	timeColumns   = []string{"timestamp", "date", "submitted_at", "submitted", "created_at"}
	authorColumns = []string{"respondent_id", "respondent", "participant", "author", "email"}
	langColumns   = []string{"language", "lang"}
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// Config names the export files to import.
type Config struct {
	// Paths are files, directories or glob patterns.
	Paths []string
}

// Importer reads survey CSV exports and normalizes rows into records.
type Importer struct {
	paths []string
}

// NewImporter creates a survey importer over the given paths.
func NewImporter(cfg Config) *Importer {
	return &Importer{paths: cfg.Paths}
}

// Source identifies this collector's records.
func (im *Importer) Source() model.Source {
	return model.SourceSurvey
}

// Fetch imports every configured export. Rows older than since are
// skipped; rows without a parseable date land at import time. A file
// that fails to parse is logged and skipped.
func (im *Importer) Fetch(ctx context.Context, since time.Time) ([]model.Record, error) {
	files, err := im.expandPaths()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no survey exports found under %v: %w", im.paths, common.ErrSourceUnavailable)
	}

	importedAt := time.Now().UTC()
	var records []model.Record
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		found, err := im.importFile(path, since, importedAt)
		if err != nil {
			slog.Warn("Survey export skipped", "file", filepath.Base(path), "error", err)
			continue
		}
		records = append(records, found...)
	}

	slog.Debug("Survey import complete", "files", len(files), "records", len(records))
	return records, nil
}

// expandPaths resolves globs and directories down to a flat file list.
func (im *Importer) expandPaths() ([]string, error) {
	var files []string
	for _, pattern := range im.paths {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				matches = []string{pattern}
			} else {
				slog.Warn("No survey exports match pattern", "pattern", pattern)
				continue
			}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if info.IsDir() {
				inDir, _ := filepath.Glob(filepath.Join(match, "*.csv"))
				files = append(files, inDir...)
				continue
			}
			files = append(files, match)
		}
	}
	return files, nil
}

func (im *Importer) importFile(path string, since, importedAt time.Time) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parseExport(f, since, importedAt)
}

func parseExport(r io.Reader, since, importedAt time.Time) ([]model.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := mapColumns(header)
	if cols.text < 0 {
		return nil, fmt.Errorf("no comment column found in header %v", header)
	}

	var records []model.Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				slog.Warn("Malformed survey row skipped", "line", line, "error", err)
				continue
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		text := strings.TrimSpace(field(row, cols.text))
		if text == "" {
			continue
		}

		timestamp := importedAt
		if raw := field(row, cols.time); raw != "" {
			if parsed, ok := parseTime(raw); ok {
				timestamp = parsed
			}
		}
		if timestamp.Before(since) {
			continue
		}

		rec := model.Record{
			Source:    model.SourceSurvey,
			AuthorID:  strings.TrimSpace(field(row, cols.author)),
			RawText:   text,
			Timestamp: timestamp,
		}
		if lang := strings.ToLower(strings.TrimSpace(field(row, cols.lang))); lang != "" {
			switch model.Language(lang) {
			case model.LanguageEnglish, model.LanguageFrench, model.LanguageKinyarwanda:
				rec.Language = model.Language(lang)
			}
		}

		records = append(records, rec)
	}

	return records, nil
}

type columnIndexes struct {
	text   int
	time   int
	author int
	lang   int
}

func mapColumns(header []string) columnIndexes {
	cols := columnIndexes{text: -1, time: -1, author: -1, lang: -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case cols.text < 0 && matchesAny(name, textColumns):
			cols.text = i
		case cols.time < 0 && matchesAny(name, timeColumns):
			cols.time = i
		case cols.author < 0 && matchesAny(name, authorColumns):
			cols.author = i
		case cols.lang < 0 && matchesAny(name, langColumns):
			cols.lang = i
		}
	}
	return cols
}

func matchesAny(name string, candidates []string) bool {
	for _, c := range candidates {
		if name == c {
			return true
		}
	}
	return false
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}
