package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkamanzi/farepulse/internal/common"
	"github.com/mkamanzi/farepulse/internal/model"
)

// SaveRecords saves multiple records to the database, ignoring duplicates.
// Duplicate detection runs on the record hash, so a record fetched twice
// across overlapping polls is stored once. Returns the number of rows
// actually inserted.
func (s *SQLiteStore) SaveRecords(ctx context.Context, records []model.Record) (int, error) {
	// Validate inputs
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateRecords(records); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO records (
			id, hash, source, author_id, raw_text,
			title, url, language, timestamp, collected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, rec := range records {
		// Generate hash if not already set
		if rec.Hash == "" {
			rec.Hash = rec.GenerateHash()
		}

		result, err := stmt.ExecContext(ctx,
			rec.ID,
			rec.Hash,
			string(rec.Source),
			rec.AuthorID,
			rec.RawText,
			rec.Title,
			rec.URL,
			string(rec.Language),
			rec.Timestamp,
			rec.CollectedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert record %s: %w", rec.ID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read insert result for record %s: %w", rec.ID, err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit records: %w", err)
	}

	return inserted, nil
}

// GetRecordByID retrieves a single record by ID.
func (s *SQLiteStore) GetRecordByID(ctx context.Context, id string) (*model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, hash, source, author_id, raw_text,
		       title, url, language, timestamp, collected_at
		FROM records
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return rec, nil
}

// GetRecordsToClassify retrieves records that have no classification yet,
// oldest first. A limit of zero or less means no limit.
func (s *SQLiteStore) GetRecordsToClassify(ctx context.Context, limit int) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT r.id, r.hash, r.source, r.author_id, r.raw_text,
		       r.title, r.url, r.language, r.timestamp, r.collected_at
		FROM records r
		LEFT JOIN classifications c ON r.id = c.record_id
		WHERE c.record_id IS NULL
		ORDER BY r.timestamp ASC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

// CountRecords returns the total number of stored records.
func (s *SQLiteStore) CountRecords(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM records
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	return count, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one record row in the column order used by all record
// queries in this package.
func scanRecord(row rowScanner) (*model.Record, error) {
	var rec model.Record
	var source, language string
	var title, url sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.Hash,
		&source,
		&rec.AuthorID,
		&rec.RawText,
		&title,
		&url,
		&language,
		&rec.Timestamp,
		&rec.CollectedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Source = model.Source(source)
	rec.Language = model.Language(language)
	if title.Valid {
		rec.Title = title.String
	}
	if url.Valid {
		rec.URL = url.String
	}

	return &rec, nil
}
