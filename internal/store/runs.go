package store

import (
	"context"
	"fmt"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

// RecordRun archives a completed run. It implements engine.Recorder.
// Uses ON CONFLICT(run_id) DO NOTHING for idempotency - a run recorded twice
// is kept once.
func (s *Store) RecordRun(ctx context.Context, run model.RunSummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, player_name, role, mission_id, score, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`,
		run.RunID,
		run.PlayerName,
		string(run.Role),
		run.MissionID,
		run.Score,
		run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.RunID, err)
	}
	return nil
}

// Runs returns up to limit archived runs, most recent first.
// A limit of zero or less returns every run.
//
// Ordering: ORDER BY completed_at DESC, run_id ASC COLLATE BINARY so ties
// are stable.
func (s *Store) Runs(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, player_name, role, mission_id, score, completed_at
		FROM runs
		ORDER BY completed_at DESC, run_id ASC COLLATE BINARY
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []model.RunSummary{}
	for rows.Next() {
		var (
			run  model.RunSummary
			role string
		)
		if err := rows.Scan(&run.RunID, &run.PlayerName, &role, &run.MissionID, &run.Score, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Role = model.Role(role)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
