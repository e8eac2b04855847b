// Package daemon runs the scheduled end-of-day rounding and serves its
// health and metrics endpoints.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Tiliavir/time-keeper/internal/model"
	"github.com/Tiliavir/time-keeper/internal/timecalc"
)

// Rounder applies rounding for one user and date.
type Rounder interface {
	ApplyRounding(ctx context.Context, userID string, date time.Time) (model.RoundingResult, error)
}

// Status is the daemon state reported by /health.
type Status struct {
	NextRun   time.Time `json:"next_run"`
	LastRun   time.Time `json:"last_run,omitzero"`
	LastDate  string    `json:"last_date,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Daemon rounds the previous UTC day for a fixed set of users once a day.
type Daemon struct {
	rounder Rounder
	users   []string
	roundAt time.Duration
	logger  *slog.Logger
	now     func() time.Time
	after   func(time.Duration) <-chan time.Time

	mu     sync.Mutex
	status Status
}

type Option func(*Daemon)

func WithLogger(l *slog.Logger) Option { return func(d *Daemon) { d.logger = l } }

// WithClock replaces time.Now and time.After.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(d *Daemon) {
		d.now, d.after = now, after
	}
}

// New returns a Daemon rounding users at roundAt past UTC midnight.
func New(rounder Rounder, users []string, roundAt time.Duration, opts ...Option) *Daemon {
	d := &Daemon{
		rounder: rounder,
		users:   users,
		roundAt: roundAt,
		now:     time.Now,
		after:   time.After,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// NextRun returns the first instant strictly after now that lies the offset
// at past a UTC midnight, e.g. 00:05 for at = 5m.
func NextRun(now time.Time, at time.Duration) time.Time {
	next := timecalc.StartOfDay(now).Add(at)
	if !next.After(now) {
		next = timecalc.StartOfDay(now).AddDate(0, 0, 1).Add(at)
	}
	return next
}

// Run waits for each scheduled time and rounds the previous day until ctx
// is cancelled. Rounding failures are logged and retried on the next run.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("daemon started", "users", d.users, "round_at", d.roundAt.String())
	for {
		now := d.now()
		next := NextRun(now, d.roundAt)
		d.setNext(next)
		d.logger.Debug("next rounding scheduled", "at", next)

		select {
		case <-ctx.Done():
			d.logger.Info("daemon stopped")
			return nil
		case <-d.after(next.Sub(now)):
		}
		if err := d.RoundPrevious(ctx); err != nil {
			d.logger.Error("scheduled rounding failed", "error", err)
		}
	}
}

// RoundPrevious rounds the UTC day before now for every user. One user's
// failure does not stop the others.
func (d *Daemon) RoundPrevious(ctx context.Context) error {
	now := d.now()
	date := timecalc.StartOfDay(now).AddDate(0, 0, -1)

	var errs []error
	for _, user := range d.users {
		res, err := d.rounder.ApplyRounding(ctx, user, date)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		d.logger.Debug("user rounded", "user", user, "date", res.Date, "applied", res.RoundingApplied)
	}
	err := errors.Join(errs...)

	d.mu.Lock()
	d.status.LastRun = now
	d.status.LastDate = timecalc.DateString(date)
	d.status.LastError = ""
	if err != nil {
		d.status.LastError = err.Error()
	}
	d.mu.Unlock()
	return err
}

// Status returns a snapshot of the schedule state.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Daemon) setNext(t time.Time) {
	d.mu.Lock()
	d.status.NextRun = t
	d.mu.Unlock()
}
