package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/time-keeper/internal/model"
)

const entryColumns = `id, user_id, category_id, start_time, end_time, notes, rounded, created_at, updated_at`

// ListEntries returns the user's entries whose start time lies in [from, to]
// (or [from, to) with filter.Exclusive), oldest first.
func (s *Store) ListEntries(ctx context.Context, userID string, from, to time.Time, filter model.EntryFilter) ([]model.Entry, error) {
	var where strings.Builder
	args := []any{userID, formatTime(from), formatTime(to)}

	where.WriteString(`user_id = ? AND start_time >= ?`)
	if filter.Exclusive {
		where.WriteString(` AND start_time < ?`)
	} else {
		where.WriteString(` AND start_time <= ?`)
	}
	if filter.Completed {
		where.WriteString(` AND end_time IS NOT NULL`)
	}
	if filter.Rounded != nil {
		where.WriteString(` AND rounded = ?`)
		args = append(args, boolInt(*filter.Rounded))
	}

	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries WHERE `+where.String()+` ORDER BY start_time, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("storage error listing entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage error listing entries: %w", err)
	}
	return entries, nil
}

// GetEntry returns a single entry by ID.
func (s *Store) GetEntry(ctx context.Context, id int64) (model.Entry, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entry{}, fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return e, err
}

// ActiveEntry returns the user's running entry, or nil if no timer is running.
func (s *Store) ActiveEntry(ctx context.Context, userID string) (*model.Entry, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries WHERE user_id = ? AND end_time IS NULL
		 ORDER BY start_time DESC, id DESC LIMIT 1`, userID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEntry inserts e and fills in its ID and timestamps.
func (s *Store) CreateEntry(ctx context.Context, e *model.Entry) error {
	now := s.now()
	var end, notes any
	if e.EndTime != nil {
		end = formatTime(*e.EndTime)
	}
	if e.Notes != nil {
		notes = *e.Notes
	}

	res, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO time_entries (user_id, category_id, start_time, end_time, notes, rounded, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.CategoryID, formatTime(e.StartTime), end, notes, boolInt(e.Rounded), formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("storage error creating entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("storage error reading entry id: %w", err)
	}

	e.ID = id
	e.StartTime = e.StartTime.UTC().Truncate(time.Millisecond)
	if e.EndTime != nil {
		t := e.EndTime.UTC().Truncate(time.Millisecond)
		e.EndTime = &t
	}
	e.CreatedAt = now.UTC().Truncate(time.Millisecond)
	e.UpdatedAt = e.CreatedAt
	return nil
}

// UpdateEntry applies the non-nil fields of u to entry id.
func (s *Store) UpdateEntry(ctx context.Context, id int64, u model.EntryUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{s.stamp()}
	if u.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *u.CategoryID)
	}
	if u.StartTime != nil {
		sets = append(sets, "start_time = ?")
		args = append(args, formatTime(*u.StartTime))
	}
	if u.EndTime != nil {
		sets = append(sets, "end_time = ?")
		args = append(args, formatTime(*u.EndTime))
	}
	if u.Rounded != nil {
		sets = append(sets, "rounded = ?")
		args = append(args, boolInt(*u.Rounded))
	}
	if u.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *u.Notes)
	}
	args = append(args, id)

	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE time_entries SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("storage error updating entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage error updating entry %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteEntry removes entry id if it belongs to userID.
func (s *Store) DeleteEntry(ctx context.Context, userID string, id int64) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM time_entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("storage error deleting entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage error deleting entry %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (model.Entry, error) {
	var (
		e                       model.Entry
		start, created, updated string
		end, notes              sql.NullString
		rounded                 int
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.CategoryID, &start, &end, &notes, &rounded, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Entry{}, err
		}
		return model.Entry{}, fmt.Errorf("storage error scanning entry: %w", err)
	}

	var err error
	if e.StartTime, err = parseTime(start); err != nil {
		return model.Entry{}, err
	}
	if end.Valid {
		t, err := parseTime(end.String)
		if err != nil {
			return model.Entry{}, err
		}
		e.EndTime = &t
	}
	if notes.Valid {
		n := notes.String
		e.Notes = &n
	}
	e.Rounded = rounded == 1
	if e.CreatedAt, err = parseTime(created); err != nil {
		return model.Entry{}, err
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Entry{}, err
	}
	return e, nil
}
