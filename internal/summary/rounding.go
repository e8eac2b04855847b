package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/time-keeper/internal/logging"
	"github.com/Tiliavir/time-keeper/internal/metrics"
	"github.com/Tiliavir/time-keeper/internal/model"
	"github.com/Tiliavir/time-keeper/internal/rounding"
	"github.com/Tiliavir/time-keeper/internal/timecalc"
)

func newRunID() string {
	return uuid.NewString()
}

// ApplyRounding rounds the user's completed, not yet rounded entries of the
// UTC date. Per category the whole delta goes onto the entry that started
// last; every consumed entry is latched as rounded, so calling it again for
// the same date changes nothing.
func (s *Service) ApplyRounding(ctx context.Context, userID string, date time.Time) (model.RoundingResult, error) {
	day := timecalc.StartOfDay(date)
	logger := logging.FromContext(ctx, s.logger).With("user", userID, "date", timecalc.DateString(day))
	started := s.now()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, userID)
		if err != nil {
			s.metrics.ObserveRounding(metrics.ResultError, 0, false, 0)
			return model.RoundingResult{}, fmt.Errorf("locking user %q for rounding: %w", userID, err)
		}
		defer unlock()
	}

	var (
		result dayRounding
		run    *model.RoundingRun
		capped bool
	)
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		var err error
		result, capped, err = s.roundDay(ctx, userID, day)
		if err != nil || result.entries == 0 {
			return err
		}
		run = &model.RoundingRun{
			ID:              s.newID(),
			UserID:          userID,
			Date:            result.Date,
			Applied:         result.RoundingApplied,
			WeekWouldExceed: result.WeekWouldExceed,
			Adjusted:        len(result.AdjustedEntries),
			CreatedAt:       s.now(),
		}
		return s.repo.RecordRoundingRun(ctx, *run)
	})
	elapsed := s.now().Sub(started).Seconds()
	if err != nil {
		s.metrics.ObserveRounding(metrics.ResultError, 0, false, elapsed)
		logger.Error("rounding failed", "error", err)
		return model.RoundingResult{}, err
	}

	if run == nil {
		s.metrics.ObserveRounding(metrics.ResultNoop, 0, false, elapsed)
		logger.Debug("nothing to round")
		return result.RoundingResult, nil
	}

	outcome := metrics.ResultNoop
	if result.RoundingApplied {
		outcome = metrics.ResultApplied
	}
	s.metrics.ObserveRounding(outcome, len(result.AdjustedEntries), capped, elapsed)
	logger.Info("rounding finished",
		"run_id", run.ID,
		"entries", result.entries,
		"adjusted", len(result.AdjustedEntries),
		"week_would_exceed", result.WeekWouldExceed,
		"capped", capped)
	return result.RoundingResult, nil
}

// dayRounding is a RoundingResult plus the number of entries it latched.
type dayRounding struct {
	model.RoundingResult
	entries int
}

func (s *Service) roundDay(ctx context.Context, userID string, day time.Time) (dayRounding, bool, error) {
	out := dayRounding{RoundingResult: model.RoundingResult{
		Date:            timecalc.DateString(day),
		AdjustedEntries: []model.AdjustedEntry{},
	}}

	unrounded := false
	from, to := timecalc.DayRange(day)
	entries, err := s.repo.ListEntries(ctx, userID, from, to, model.EntryFilter{Completed: true, Rounded: &unrounded})
	if err != nil {
		return out, false, err
	}
	if len(entries) == 0 {
		return out, false, nil
	}
	out.entries = len(entries)

	var order []int64
	byCat := make(map[int64][]model.Entry)
	for _, e := range entries {
		if _, ok := byCat[e.CategoryID]; !ok {
			order = append(order, e.CategoryID)
		}
		byCat[e.CategoryID] = append(byCat[e.CategoryID], e)
	}

	input := make([]model.CategoryRaw, len(order))
	for i, id := range order {
		minutes := 0
		for _, e := range byCat[id] {
			minutes += timecalc.Minutes(e.StartTime, *e.EndTime)
		}
		input[i] = model.CategoryRaw{CategoryID: id, Minutes: minutes}
	}

	soFar, err := s.WeekMinutesBefore(ctx, userID, day)
	if err != nil {
		return out, false, err
	}
	increment, err := s.repo.RoundingIncrement(ctx, userID)
	if err != nil {
		return out, false, err
	}

	// The cap is always the standard 40h week; a saved weekly goal only
	// changes the goals reported by WeeklySummary.
	res := rounding.Compute(input, soFar, rounding.WithIncrement(increment))
	out.WeekWouldExceed = res.WeekWouldExceed

	latched := true
	for i, id := range order {
		group := byCat[id]
		delta := res.Categories[i].RoundedMinutes - res.Categories[i].RawMinutes

		var shifted *model.Entry
		if delta != 0 {
			last := latestStarted(group)
			oldEnd := *last.EndTime
			newEnd := oldEnd.Add(time.Duration(delta) * time.Minute)
			if err := s.repo.UpdateEntry(ctx, last.ID, model.EntryUpdate{EndTime: &newEnd, Rounded: &latched}); err != nil {
				return out, false, err
			}
			out.AdjustedEntries = append(out.AdjustedEntries, model.AdjustedEntry{
				EntryID:    last.ID,
				OldMinutes: timecalc.Minutes(last.StartTime, oldEnd),
				NewMinutes: timecalc.Minutes(last.StartTime, newEnd),
			})
			shifted = &last
		}

		for _, e := range group {
			if shifted != nil && e.ID == shifted.ID {
				continue
			}
			if err := s.repo.UpdateEntry(ctx, e.ID, model.EntryUpdate{Rounded: &latched}); err != nil {
				return out, false, err
			}
		}
	}

	out.RoundingApplied = len(out.AdjustedEntries) > 0
	return out, res.Capped, nil
}

// latestStarted returns the entry with the latest start time. On equal start
// times the earlier entry in the list wins.
func latestStarted(entries []model.Entry) model.Entry {
	latest := entries[0]
	for _, e := range entries[1:] {
		if e.StartTime.After(latest.StartTime) {
			latest = e
		}
	}
	return latest
}
