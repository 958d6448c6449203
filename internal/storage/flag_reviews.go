package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkamanzi/farepulse/internal/common"
	"github.com/mkamanzi/farepulse/internal/model"
)

// GetFlagReview retrieves the review entry for one flagged record.
func (s *SQLiteStore) GetFlagReview(ctx context.Context, recordID string) (*model.FlagReview, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(recordID, "recordID"); err != nil {
		return nil, err
	}

	var review model.FlagReview
	var status string
	var notes sql.NullString
	var reviewedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT record_id, status, notes, reviewed_at
		FROM flag_reviews
		WHERE record_id = ?
	`, recordID).Scan(
		&review.RecordID,
		&status,
		&notes,
		&reviewedAt,
	)

	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flag review: %w", err)
	}

	review.Status = model.ReviewStatus(status)
	if notes.Valid {
		review.Notes = notes.String
	}
	if reviewedAt.Valid {
		review.ReviewedAt = reviewedAt.Time
	}

	return &review, nil
}

// GetOpenFlagReviews retrieves all flag reviews still awaiting a decision,
// oldest record first.
func (s *SQLiteStore) GetOpenFlagReviews(ctx context.Context) ([]model.FlagReview, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.record_id, f.status, f.notes, f.reviewed_at
		FROM flag_reviews f
		JOIN records r ON f.record_id = r.id
		WHERE f.status = ?
		ORDER BY r.timestamp ASC
	`, string(model.ReviewPending))
	if err != nil {
		return nil, fmt.Errorf("failed to query flag reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reviews []model.FlagReview
	for rows.Next() {
		var review model.FlagReview
		var status string
		var notes sql.NullString
		var reviewedAt sql.NullTime

		if err := rows.Scan(&review.RecordID, &status, &notes, &reviewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan flag review: %w", err)
		}

		review.Status = model.ReviewStatus(status)
		if notes.Valid {
			review.Notes = notes.String
		}
		if reviewedAt.Valid {
			review.ReviewedAt = reviewedAt.Time
		}

		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

// ResolveFlagReview records a reviewer's decision on a flagged record.
func (s *SQLiteStore) ResolveFlagReview(ctx context.Context, recordID string, status model.ReviewStatus, notes string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(recordID, "recordID"); err != nil {
		return err
	}
	if err := validateReviewStatus(status); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE flag_reviews
		SET status = ?, notes = ?, reviewed_at = ?
		WHERE record_id = ?
	`, string(status), notes, time.Now(), recordID)
	if err != nil {
		return fmt.Errorf("failed to resolve flag review: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}
