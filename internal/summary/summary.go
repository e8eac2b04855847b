// Package summary aggregates tracked entries into daily and weekly views and
// applies end-of-day rounding to stored entries.
package summary

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/Tiliavir/time-keeper/internal/metrics"
	"github.com/Tiliavir/time-keeper/internal/model"
	"github.com/Tiliavir/time-keeper/internal/timecalc"
)

// Repository is the storage the service reads and writes through.
type Repository interface {
	ListEntries(ctx context.Context, userID string, from, to time.Time, filter model.EntryFilter) ([]model.Entry, error)
	UpdateEntry(ctx context.Context, id int64, u model.EntryUpdate) error
	ListCategories(ctx context.Context, userID string) ([]model.Category, error)
	WeeklyGoalMinutes(ctx context.Context, userID string) (int, error)
	RoundingIncrement(ctx context.Context, userID string) (int, error)
	RecordRoundingRun(ctx context.Context, run model.RoundingRun) error
	// InTx runs fn atomically; repository calls made with fn's context join it.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serializes rounding per user.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Service computes summaries and applies rounding.
type Service struct {
	repo    Repository
	locker  Locker
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

func WithLocker(l Locker) Option { return func(s *Service) { s.locker = l } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithRunIDs replaces the generator of rounding run IDs.
func WithRunIDs(newID func() string) Option { return func(s *Service) { s.newID = newID } }

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, newID: newRunID}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// WeeklySummary builds the summary of an ISO week from completed entries.
// It always returns seven days, Monday first.
func (s *Service) WeeklySummary(ctx context.Context, userID string, week timecalc.Week) (model.WeeklySummary, error) {
	from, to := week.Range()
	entries, err := s.repo.ListEntries(ctx, userID, from, to, model.EntryFilter{Completed: true})
	if err != nil {
		return model.WeeklySummary{}, err
	}
	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return model.WeeklySummary{}, err
	}
	goal, err := s.repo.WeeklyGoalMinutes(ctx, userID)
	if err != nil {
		return model.WeeklySummary{}, err
	}

	byID := make(map[int64]model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	byDay := make(map[string][]model.Entry)
	for _, e := range entries {
		if _, ok := byID[e.CategoryID]; !ok {
			continue
		}
		day := timecalc.DateString(e.StartTime)
		byDay[day] = append(byDay[day], e)
	}

	dailyGoal := int(math.Round(float64(goal) / 5))
	out := model.WeeklySummary{Week: week.String(), GoalMinutes: goal, Days: make([]model.DaySummary, 0, 7)}
	for _, date := range week.Days() {
		day := timecalc.DateString(date)
		cats := categorySummaries(byDay[day], byID)

		total := 0
		for _, c := range cats {
			total += c.Minutes
		}
		out.Days = append(out.Days, model.DaySummary{
			Date:         day,
			TotalMinutes: total,
			GoalMinutes:  dailyGoal,
			Categories:   cats,
		})
		out.TotalMinutes += total
	}

	s.metrics.ObserveSummary()
	return out, nil
}

// categorySummaries sums minutes per category in order of first appearance.
func categorySummaries(entries []model.Entry, byID map[int64]model.Category) []model.CategorySummary {
	out := []model.CategorySummary{}
	index := make(map[int64]int)
	for _, e := range entries {
		i, ok := index[e.CategoryID]
		if !ok {
			c := byID[e.CategoryID]
			i = len(out)
			index[e.CategoryID] = i
			out = append(out, model.CategorySummary{
				CategoryID:  c.ID,
				Name:        c.Name,
				Color:       c.Color,
				WorkdayCode: c.WorkdayCode,
			})
		}
		out[i].Minutes += timecalc.Minutes(e.StartTime, *e.EndTime)
	}
	for i := range out {
		out[i].RoundedHours = math.Round(float64(out[i].Minutes)/60*10) / 10
	}
	return out
}

// WeekMinutesBefore sums completed minutes from the start of date's ISO week
// up to, but excluding, date 00:00 UTC.
func (s *Service) WeekMinutesBefore(ctx context.Context, userID string, date time.Time) (int, error) {
	day := timecalc.StartOfDay(date)
	weekStart, _ := timecalc.WeekOf(day).Bounds()

	entries, err := s.repo.ListEntries(ctx, userID, weekStart, day, model.EntryFilter{Completed: true, Exclusive: true})
	if err != nil {
		return 0, err
	}
	total := 0
	for _, e := range entries {
		total += timecalc.Minutes(e.StartTime, *e.EndTime)
	}
	return total, nil
}
