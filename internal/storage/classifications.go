package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
)

// SaveClassifications saves classifier verdicts for a batch of records.
// Saving the same record twice overwrites the previous verdict, so
// reclassifying with a newer model version is safe. Flagged records get
// a pending review-queue entry; an existing review is never reopened.
func (s *SQLiteStore) SaveClassifications(ctx context.Context, classifications []model.ClassifiedRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClassifications(classifications); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range classifications {
		if err := s.saveClassificationTx(ctx, tx, &classifications[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) saveClassificationTx(ctx context.Context, tx *sql.Tx, c *model.ClassifiedRecord) error {
	// Set ClassifiedAt if not set
	if c.ClassifiedAt.IsZero() {
		c.ClassifiedAt = time.Now()
	}

	// Convert topics slice to a JSON string
	topicsJSON := ""
	if len(c.Topics) > 0 {
		topicsBytes, marshalErr := json.Marshal(c.SortedTopics())
		if marshalErr == nil {
			topicsJSON = string(topicsBytes)
		}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO classifications (
			record_id, sentiment, confidence, topics,
			misinfo_flag, model_version, classified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(record_id) DO UPDATE SET
			sentiment = excluded.sentiment,
			confidence = excluded.confidence,
			topics = excluded.topics,
			misinfo_flag = excluded.misinfo_flag,
			model_version = excluded.model_version,
			classified_at = excluded.classified_at
	`,
		c.Record.ID,
		string(c.Sentiment),
		c.Confidence,
		topicsJSON,
		c.Misinfo,
		c.ModelVersion,
		c.ClassifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save classification for record %s: %w", c.Record.ID, err)
	}

	// Queue flagged records for review. INSERT OR IGNORE keeps a dismissed
	// flag dismissed when the record is reclassified.
	if c.Misinfo {
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO flag_reviews (record_id, status, notes)
			VALUES (?, ?, '')
		`, c.Record.ID, string(model.ReviewPending))
		if err != nil {
			return fmt.Errorf("failed to queue flag review for record %s: %w", c.Record.ID, err)
		}
	}

	return nil
}

// GetClassifiedRecords retrieves classified records matching the filter,
// newest first.
func (s *SQLiteStore) GetClassifiedRecords(ctx context.Context, filter service.RecordFilter) ([]model.ClassifiedRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT r.id, r.hash, r.source, r.author_id, r.raw_text,
		       r.title, r.url, r.language, r.timestamp, r.collected_at,
		       c.sentiment, c.confidence, c.topics,
		       c.misinfo_flag, c.model_version, c.classified_at
		FROM classifications c
		JOIN records r ON c.record_id = r.id
		WHERE 1=1
	`

	args := []any{}
	if filter.Since != nil {
		query += " AND r.timestamp >= ?"
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		query += " AND r.timestamp < ?"
		args = append(args, *filter.Until)
	}
	if filter.Source != "" {
		query += " AND r.source = ?"
		args = append(args, string(filter.Source))
	}
	if filter.Sentiment != "" {
		query += " AND c.sentiment = ?"
		args = append(args, string(filter.Sentiment))
	}
	if filter.FlaggedOnly {
		query += " AND c.misinfo_flag = 1"
	}

	query += " ORDER BY r.timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query classified records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var classified []model.ClassifiedRecord
	for rows.Next() {
		var c model.ClassifiedRecord
		var source, language, sentiment string
		var title, url, topicsJSON sql.NullString

		err := rows.Scan(
			&c.Record.ID,
			&c.Record.Hash,
			&source,
			&c.Record.AuthorID,
			&c.Record.RawText,
			&title,
			&url,
			&language,
			&c.Record.Timestamp,
			&c.Record.CollectedAt,
			&sentiment,
			&c.Confidence,
			&topicsJSON,
			&c.Misinfo,
			&c.ModelVersion,
			&c.ClassifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan classified record: %w", err)
		}

		c.Record.Source = model.Source(source)
		c.Record.Language = model.Language(language)
		c.Sentiment = model.Sentiment(sentiment)
		if title.Valid {
			c.Record.Title = title.String
		}
		if url.Valid {
			c.Record.URL = url.String
		}

		// Parse topics JSON
		if topicsJSON.Valid && topicsJSON.String != "" {
			if err := json.Unmarshal([]byte(topicsJSON.String), &c.Topics); err != nil {
				// Log but don't fail on JSON parse error
				slog.Warn("Failed to parse topics JSON", "error", err, "json", topicsJSON.String)
			}
		}

		classified = append(classified, c)
	}

	return classified, rows.Err()
}

// CountClassifications returns the total number of classified records.
func (s *SQLiteStore) CountClassifications(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM classifications
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count classifications: %w", err)
	}

	return count, nil
}
