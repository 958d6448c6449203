// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/mkamanzi/farepulse/internal/model"
)

// RecordFilter defines filtering options for record queries.
type RecordFilter struct {
	Since       *time.Time
	Until       *time.Time
	Source      model.Source
	Sentiment   model.Sentiment
	FlaggedOnly bool
	Limit       int
	Offset      int
}

// Store defines the contract for the persistence layer.
type Store interface {
	// Record operations. SaveRecords deduplicates on the record hash and
	// reports how many rows were actually inserted.
	SaveRecords(ctx context.Context, records []model.Record) (int, error)
	GetRecordByID(ctx context.Context, id string) (*model.Record, error)
	GetRecordsToClassify(ctx context.Context, limit int) ([]model.Record, error)
	CountRecords(ctx context.Context) (int, error)

	// Classification operations.
	SaveClassifications(ctx context.Context, classifications []model.ClassifiedRecord) error
	GetClassifiedRecords(ctx context.Context, filter RecordFilter) ([]model.ClassifiedRecord, error)
	CountClassifications(ctx context.Context) (int, error)

	// Collection run bookkeeping.
	SaveCollectionRun(ctx context.Context, run *model.CollectionRun) error
	GetLatestCollectionRun(ctx context.Context) (*model.CollectionRun, error)

	// Misinformation flag review queue.
	GetFlagReview(ctx context.Context, recordID string) (*model.FlagReview, error)
	GetOpenFlagReviews(ctx context.Context) ([]model.FlagReview, error)
	ResolveFlagReview(ctx context.Context, recordID string, status model.ReviewStatus, notes string) error

	// Database management.
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}

// Collector fetches raw records from one external source.
type Collector interface {
	// Source identifies which tagged source variant this collector serves.
	Source() model.Source
	// Fetch returns records published at or after since. It fails with
	// common.ErrSourceUnavailable on network or auth trouble and with
	// common.ErrRateLimited when throttled.
	Fetch(ctx context.Context, since time.Time) ([]model.Record, error)
}

// Classifier assigns sentiment, topics and the misinformation flag.
// Implementations must be deterministic for a fixed model version and
// must degrade to neutral instead of returning errors.
type Classifier interface {
	Classify(record model.Record) model.ClassifiedRecord
	ModelVersion() string
}

// ReportWriter publishes a finished report somewhere external.
type ReportWriter interface {
	Write(ctx context.Context, records []model.ClassifiedRecord, summary *ReportSummary) error
}

// ReportSummary contains aggregate information for a report.
type ReportSummary struct {
	DateRange    DateRange
	BySentiment  map[model.Sentiment]int
	BySource     map[model.Source]int
	TopTopics    []model.TopicCount
	TotalRecords int
	FlagCount    int
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// CompletionStats shows the results of a classification run.
type CompletionStats struct {
	TotalRecords int
	Classified   int
	Skipped      int
	Flagged      int
	Duration     time.Duration
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
