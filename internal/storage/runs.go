package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mkamanzi/farepulse/internal/common"
	"github.com/mkamanzi/farepulse/internal/model"
)

// SaveCollectionRun persists the audit trail of one collector execution.
func (s *SQLiteStore) SaveCollectionRun(ctx context.Context, run *model.CollectionRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if err := validateString(run.ID, "run.ID"); err != nil {
		return err
	}

	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal run results: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collection_runs (id, started_at, finished_at, since, results)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			results = excluded.results
	`,
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		run.Since,
		string(resultsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save collection run: %w", err)
	}

	return nil
}

// GetLatestCollectionRun returns the most recently started run.
func (s *SQLiteStore) GetLatestCollectionRun(ctx context.Context) (*model.CollectionRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var run model.CollectionRun
	var resultsJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, since, results
		FROM collection_runs
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(
		&run.ID,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Since,
		&resultsJSON,
	)

	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest collection run: %w", err)
	}

	if resultsJSON != "" {
		if err := json.Unmarshal([]byte(resultsJSON), &run.Results); err != nil {
			return nil, fmt.Errorf("failed to parse run results: %w", err)
		}
	}

	return &run, nil
}
