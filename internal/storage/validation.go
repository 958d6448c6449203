package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkamanzi/farepulse/internal/model"
)

// Validation errors.
var (
	ErrNilContext            = errors.New("context cannot be nil")
	ErrEmptyString           = errors.New("string parameter cannot be empty")
	ErrNilParameter          = errors.New("parameter cannot be nil")
	ErrInvalidRecord         = errors.New("invalid record")
	ErrInvalidClassification = errors.New("invalid classification")
	ErrInvalidStatus         = errors.New("invalid review status")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecords validates a slice of records.
func validateRecords(records []model.Record) error {
	if records == nil {
		return fmt.Errorf("%w: records", ErrNilParameter)
	}

	for i, rec := range records {
		if err := validateRecord(&rec); err != nil {
			return fmt.Errorf("record at index %d: %w", i, err)
		}
	}
	return nil
}

// validateRecord validates a single record.
func validateRecord(rec *model.Record) error {
	if rec == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	if rec.Hash == "" {
		return fmt.Errorf("%w: missing hash", ErrInvalidRecord)
	}
	if rec.Source == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidRecord)
	}
	if rec.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidRecord)
	}
	return nil
}

// validateClassifications validates a slice of classified records.
func validateClassifications(classified []model.ClassifiedRecord) error {
	if classified == nil {
		return fmt.Errorf("%w: classifications", ErrNilParameter)
	}

	for i, c := range classified {
		if err := validateClassifiedRecord(&c); err != nil {
			return fmt.Errorf("classification at index %d: %w", i, err)
		}
	}
	return nil
}

// validateClassifiedRecord validates a single classified record.
func validateClassifiedRecord(c *model.ClassifiedRecord) error {
	if c == nil {
		return fmt.Errorf("%w: classification", ErrNilParameter)
	}
	if err := validateRecord(&c.Record); err != nil {
		return fmt.Errorf("classified record: %w", err)
	}
	if c.ModelVersion == "" {
		return fmt.Errorf("%w: missing model version", ErrInvalidClassification)
	}

	switch c.Sentiment {
	case model.SentimentPositive, model.SentimentNegative, model.SentimentNeutral:
		// Valid sentiment
	default:
		return fmt.Errorf("%w: unknown sentiment %q", ErrInvalidClassification, c.Sentiment)
	}

	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidClassification)
	}

	return nil
}

// validateReviewStatus validates a flag review status transition target.
func validateReviewStatus(status model.ReviewStatus) error {
	switch status {
	case model.ReviewPending, model.ReviewConfirmed, model.ReviewDismissed:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
}
