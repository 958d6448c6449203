// Package engine drives batch classification of stored records.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mkamanzi/farepulse/internal/common"
	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
)

// Engine pulls unclassified records from the store, runs them through
// the classifier and persists the verdicts.
type Engine struct {
	store      service.Store
	classifier service.Classifier
	progress   io.Writer
	batchSize  int
}

// Config holds configuration options for the classification engine.
type Config struct {
	// ProgressWriter receives the progress bar; nil disables it.
	ProgressWriter io.Writer
	// BatchSize is how many verdicts are persisted per save.
	BatchSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{BatchSize: 200}
}

// New creates a classification engine with the default configuration.
func New(store service.Store, classifier service.Classifier) *Engine {
	return NewWithConfig(store, classifier, DefaultConfig())
}

// NewWithConfig creates a classification engine with custom configuration.
func NewWithConfig(store service.Store, classifier service.Classifier, cfg Config) *Engine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &Engine{
		store:      store,
		classifier: classifier,
		batchSize:  cfg.BatchSize,
		progress:   cfg.ProgressWriter,
	}
}

// ClassifyRecords processes every stored record that has no verdict yet
// and returns statistics. Individual records never fail: records with
// no usable text are persisted as neutral with confidence 0 so they do
// not come back on the next run.
func (e *Engine) ClassifyRecords(ctx context.Context) (service.CompletionStats, error) {
	start := time.Now()
	var stats service.CompletionStats

	records, err := e.store.GetRecordsToClassify(ctx, 0)
	if err != nil {
		return stats, fmt.Errorf("failed to load unclassified records: %w", err)
	}
	stats.TotalRecords = len(records)
	if len(records) == 0 {
		slog.Info("No records to classify")
		stats.Duration = time.Since(start)
		return stats, nil
	}

	slog.Info("Starting classification",
		"records", len(records),
		"model_version", e.classifier.ModelVersion())

	bar := e.newProgressBar(len(records))

	for offset := 0; offset < len(records); offset += e.batchSize {
		select {
		case <-ctx.Done():
			stats.Duration = time.Since(start)
			return stats, ctx.Err()
		default:
		}

		batch := records[offset:min(offset+e.batchSize, len(records))]
		verdicts := make([]model.ClassifiedRecord, 0, len(batch))
		for i := range batch {
			record := batch[i]
			if record.IsClassifiable() {
				stats.Classified++
			} else {
				stats.Skipped++
				slog.Debug("Record has no usable text",
					"record_id", record.ID,
					"reason", common.ErrClassificationSkipped)
			}

			verdict := e.classifier.Classify(record)
			if verdict.Misinfo {
				stats.Flagged++
			}
			verdicts = append(verdicts, verdict)
		}

		if err := e.store.SaveClassifications(ctx, verdicts); err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("failed to save classifications: %w", err)
		}
		if bar != nil {
			if err := bar.Add(len(batch)); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	stats.Duration = time.Since(start)
	slog.Info("Classification complete",
		"classified", stats.Classified,
		"skipped", stats.Skipped,
		"flagged", stats.Flagged,
		"duration", stats.Duration.Round(time.Millisecond))
	return stats, nil
}

func (e *Engine) newProgressBar(total int) *progressbar.ProgressBar {
	if e.progress == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(e.progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Classifying records...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(e.progress); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
