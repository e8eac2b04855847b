// Package timer starts and stops the single running entry of a user.
package timer

import (
	"context"
	"log/slog"
	"time"

	"github.com/Tiliavir/time-keeper/internal/logging"
	"github.com/Tiliavir/time-keeper/internal/model"
	"github.com/Tiliavir/time-keeper/internal/storage"
	"github.com/Tiliavir/time-keeper/internal/timecalc"
)

// Repository is the storage the timer works on.
type Repository interface {
	ActiveEntry(ctx context.Context, userID string) (*model.Entry, error)
	CreateEntry(ctx context.Context, e *model.Entry) error
	UpdateEntry(ctx context.Context, id int64, u model.EntryUpdate) error
	EnsureCategory(ctx context.Context, userID, name string) (model.Category, error)
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Timer runs the start/stop workflow.
type Timer struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Timer)

func WithLogger(l *slog.Logger) Option { return func(t *Timer) { t.logger = l } }

func WithClock(now func() time.Time) Option { return func(t *Timer) { t.now = now } }

func New(repo Repository, opts ...Option) *Timer {
	t := &Timer{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t
}

// Stopped describes a closed timer. Segments holds every stored entry the
// run produced, the stopped entry first; runs crossing UTC midnight are
// split into one entry per day.
type Stopped struct {
	Segments []model.Entry
	Elapsed  time.Duration
}

// Started describes a new running entry and the timer it replaced, if any.
type Started struct {
	Entry    model.Entry
	Category model.Category
	Stopped  *Stopped
}

// Start opens a new entry for the named category, creating the category on
// first use. A running entry is stopped first.
func (t *Timer) Start(ctx context.Context, userID, category, notes string) (Started, error) {
	logger := logging.FromContext(ctx, t.logger).With("user", userID)
	now := t.now().UTC().Truncate(time.Millisecond)

	var out Started
	err := t.repo.InTx(ctx, func(ctx context.Context) error {
		active, err := t.repo.ActiveEntry(ctx, userID)
		if err != nil {
			return err
		}
		if active != nil {
			stopped, err := t.stop(ctx, *active, now, "")
			if err != nil {
				return err
			}
			out.Stopped = &stopped
		}

		cat, err := t.repo.EnsureCategory(ctx, userID, category)
		if err != nil {
			return err
		}
		e := model.Entry{UserID: userID, CategoryID: cat.ID, StartTime: now}
		if notes != "" {
			e.Notes = &notes
		}
		if err := t.repo.CreateEntry(ctx, &e); err != nil {
			return err
		}
		out.Entry, out.Category = e, cat
		return nil
	})
	if err != nil {
		return Started{}, err
	}

	if out.Stopped != nil {
		logger.Info("auto-stopped running timer", "entry_id", out.Stopped.Segments[0].ID)
	}
	logger.Info("timer started", "entry_id", out.Entry.ID, "category", out.Category.Name)
	return out, nil
}

// Stop closes the running entry, appending notes to any it already has.
// It returns storage.ErrNoActiveTimer when nothing is running.
func (t *Timer) Stop(ctx context.Context, userID, notes string) (Stopped, error) {
	now := t.now().UTC().Truncate(time.Millisecond)

	var out Stopped
	err := t.repo.InTx(ctx, func(ctx context.Context) error {
		active, err := t.repo.ActiveEntry(ctx, userID)
		if err != nil {
			return err
		}
		if active == nil {
			return storage.ErrNoActiveTimer
		}
		out, err = t.stop(ctx, *active, now, notes)
		return err
	})
	if err != nil {
		return Stopped{}, err
	}

	logging.FromContext(ctx, t.logger).Info("timer stopped",
		"user", userID,
		"entry_id", out.Segments[0].ID,
		"segments", len(out.Segments),
		"elapsed", out.Elapsed.String())
	return out, nil
}

func (t *Timer) stop(ctx context.Context, e model.Entry, at time.Time, notes string) (Stopped, error) {
	if at.Before(e.StartTime) {
		at = e.StartTime
	}
	merged := mergeNotes(e.Notes, notes)

	end := at
	if next := timecalc.Midnight(e.StartTime); next.Before(at) {
		end = next
	}
	if err := t.repo.UpdateEntry(ctx, e.ID, model.EntryUpdate{EndTime: &end, Notes: merged}); err != nil {
		return Stopped{}, err
	}
	e.EndTime, e.Notes = &end, merged
	out := Stopped{Segments: []model.Entry{e}, Elapsed: at.Sub(e.StartTime)}

	for cur := end; cur.Before(at); {
		segEnd := timecalc.Midnight(cur)
		if segEnd.After(at) {
			segEnd = at
		}
		seg := model.Entry{UserID: e.UserID, CategoryID: e.CategoryID, StartTime: cur, EndTime: &segEnd, Notes: merged}
		if err := t.repo.CreateEntry(ctx, &seg); err != nil {
			return Stopped{}, err
		}
		out.Segments = append(out.Segments, seg)
		cur = segEnd
	}
	return out, nil
}

func mergeNotes(existing *string, add string) *string {
	switch {
	case add == "":
		return existing
	case existing == nil || *existing == "":
		return &add
	default:
		merged := *existing + "\n" + add
		return &merged
	}
}
