package storage

import (
	"context"
	"fmt"

	"github.com/Tiliavir/time-keeper/internal/model"
)

// RecordRoundingRun stores the audit row of one rounding pass.
func (s *Store) RecordRoundingRun(ctx context.Context, run model.RoundingRun) error {
	created := run.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO rounding_runs (id, user_id, date, applied, week_would_exceed, adjusted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.UserID, run.Date, boolInt(run.Applied), boolInt(run.WeekWouldExceed), run.Adjusted, formatTime(created))
	if err != nil {
		return fmt.Errorf("storage error recording rounding run: %w", err)
	}
	return nil
}

// ListRoundingRuns returns the user's most recent rounding runs, newest first.
func (s *Store) ListRoundingRuns(ctx context.Context, userID string, limit int) ([]model.RoundingRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, user_id, date, applied, week_would_exceed, adjusted, created_at
		 FROM rounding_runs WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("storage error listing rounding runs: %w", err)
	}
	defer rows.Close()

	var runs []model.RoundingRun
	for rows.Next() {
		var (
			r                 model.RoundingRun
			applied, exceeded int
			created           string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &applied, &exceeded, &r.Adjusted, &created); err != nil {
			return nil, fmt.Errorf("storage error scanning rounding run: %w", err)
		}
		r.Applied = applied == 1
		r.WeekWouldExceed = exceeded == 1
		if r.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage error listing rounding runs: %w", err)
	}
	return runs, nil
}
