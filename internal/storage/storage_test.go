package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Tiliavir/time-keeper/internal/model"
	"github.com/Tiliavir/time-keeper/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "tk.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func addEntry(t *testing.T, s *storage.Store, user string, cat int64, start time.Time, minutes int) model.Entry {
	t.Helper()
	e := model.Entry{UserID: user, CategoryID: cat, StartTime: start}
	if minutes >= 0 {
		end := start.Add(time.Duration(minutes) * time.Minute)
		e.EndTime = &end
	}
	if err := s.CreateEntry(context.Background(), &e); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	return e
}

func TestOpenIsReentrant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tk.db")
	s, err := storage.Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	s.Close()

	s, err = storage.Open(path)
	if err != nil {
		t.Fatalf("second Open (migrations already applied): %v", err)
	}
	s.Close()
}

func TestCreateAndGetEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cat, err := s.EnsureCategory(ctx, "alice", "ECM")
	if err != nil {
		t.Fatalf("EnsureCategory: %v", err)
	}

	start := time.Date(2026, 2, 27, 8, 30, 15, 123_456_789, time.UTC)
	e := model.Entry{UserID: "alice", CategoryID: cat.ID, StartTime: start, Notes: ptr("standup")}
	if err := s.CreateEntry(ctx, &e); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if e.ID == 0 {
		t.Fatal("CreateEntry did not assign an ID")
	}

	got, err := s.GetEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if !got.StartTime.Equal(start.Truncate(time.Millisecond)) {
		t.Errorf("StartTime = %v, want %v", got.StartTime, start.Truncate(time.Millisecond))
	}
	if !got.Running() {
		t.Error("entry without end time should be running")
	}
	if got.Notes == nil || *got.Notes != "standup" {
		t.Errorf("Notes = %v, want standup", got.Notes)
	}
	if got.Rounded {
		t.Error("new entry should not be rounded")
	}

	if _, err := s.GetEntry(ctx, 9999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetEntry(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cat, _ := s.EnsureCategory(ctx, "alice", "ECM")
	e := addEntry(t, s, "alice", cat.ID, time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC), -1)

	end := time.Date(2026, 2, 27, 10, 15, 0, 0, time.UTC)
	if err := s.UpdateEntry(ctx, e.ID, model.EntryUpdate{EndTime: &end, Rounded: ptr(true)}); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}

	got, err := s.GetEntry(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Errorf("EndTime = %v, want %v", got.EndTime, end)
	}
	if !got.Rounded {
		t.Error("Rounded = false, want true")
	}

	if err := s.UpdateEntry(ctx, 4242, model.EntryUpdate{Rounded: ptr(true)}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateEntry(missing) error = %v, want ErrNotFound", err)
	}
}

func TestEditAndDeleteEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ecm, _ := s.EnsureCategory(ctx, "alice", "ECM")
	ops, _ := s.EnsureCategory(ctx, "alice", "Ops")
	e := addEntry(t, s, "alice", ecm.ID, time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC), 30)

	start := time.Date(2026, 2, 27, 8, 30, 0, 0, time.UTC)
	if err := s.UpdateEntry(ctx, e.ID, model.EntryUpdate{CategoryID: &ops.ID, StartTime: &start}); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	got, _ := s.GetEntry(ctx, e.ID)
	if got.CategoryID != ops.ID || !got.StartTime.Equal(start) {
		t.Errorf("edited entry = %+v", got)
	}

	if err := s.DeleteEntry(ctx, "bob", e.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteEntry(other user) error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteEntry(ctx, "alice", e.ID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if _, err := s.GetEntry(ctx, e.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetEntry after delete error = %v, want ErrNotFound", err)
	}
}

func TestListEntriesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cat, _ := s.EnsureCategory(ctx, "alice", "ECM")
	other, _ := s.EnsureCategory(ctx, "bob", "ECM")

	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	a := addEntry(t, s, "alice", cat.ID, day.Add(9*time.Hour), 60)
	b := addEntry(t, s, "alice", cat.ID, day.Add(11*time.Hour), 30)
	addEntry(t, s, "alice", cat.ID, day.Add(13*time.Hour), -1) // running
	addEntry(t, s, "alice", cat.ID, day.AddDate(0, 0, 1), 15)  // next day, 00:00
	addEntry(t, s, "bob", other.ID, day.Add(9*time.Hour), 45)
	if err := s.UpdateEntry(ctx, b.ID, model.EntryUpdate{Rounded: ptr(true)}); err != nil {
		t.Fatal(err)
	}

	from, to := day, day.AddDate(0, 0, 1)

	all, err := s.ListEntries(ctx, "alice", from, to, model.EntryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("inclusive range returned %d entries, want 4", len(all))
	}

	strict, err := s.ListEntries(ctx, "alice", from, to, model.EntryFilter{Exclusive: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(strict) != 3 {
		t.Errorf("exclusive range returned %d entries, want 3", len(strict))
	}

	completed, err := s.ListEntries(ctx, "alice", from, to, model.EntryFilter{Completed: true, Exclusive: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 2 || completed[0].ID != a.ID || completed[1].ID != b.ID {
		t.Errorf("completed = %+v, want entries %d and %d in start order", completed, a.ID, b.ID)
	}

	unrounded, err := s.ListEntries(ctx, "alice", from, to, model.EntryFilter{Completed: true, Rounded: ptr(false), Exclusive: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(unrounded) != 1 || unrounded[0].ID != a.ID {
		t.Errorf("unrounded = %+v, want only entry %d", unrounded, a.ID)
	}
}

func TestActiveEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	active, err := s.ActiveEntry(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if active != nil {
		t.Fatal("expected no active entry on empty storage")
	}

	cat, _ := s.EnsureCategory(ctx, "alice", "Test")
	e := addEntry(t, s, "alice", cat.ID, time.Now().Add(-time.Hour), -1)

	active, err = s.ActiveEntry(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if active == nil || active.ID != e.ID {
		t.Fatalf("active = %+v, want entry %d", active, e.ID)
	}

	if active, _ := s.ActiveEntry(ctx, "bob"); active != nil {
		t.Error("active entries must be scoped per user")
	}
}

func TestInTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cat, _ := s.EnsureCategory(ctx, "alice", "ECM")
	e := addEntry(t, s, "alice", cat.ID, time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC), 30)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context) error {
		if err := s.UpdateEntry(ctx, e.ID, model.EntryUpdate{Rounded: ptr(true)}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v, want boom", err)
	}

	got, _ := s.GetEntry(ctx, e.ID)
	if got.Rounded {
		t.Error("update inside failed transaction was not rolled back")
	}
}

func TestCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	code := "WD-1"
	first := model.Category{UserID: "alice", Name: "  Development ", WorkdayCode: &code}
	if err := s.CreateCategory(ctx, &first); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if first.Name != "Development" || first.Color != storage.DefaultColor || first.SortOrder != 0 {
		t.Errorf("created category = %+v", first)
	}

	dup := model.Category{UserID: "alice", Name: "Development"}
	if err := s.CreateCategory(ctx, &dup); !errors.Is(err, storage.ErrCategoryExists) {
		t.Errorf("duplicate CreateCategory error = %v, want ErrCategoryExists", err)
	}

	second, err := s.EnsureCategory(ctx, "alice", "Meetings")
	if err != nil {
		t.Fatal(err)
	}
	if second.SortOrder != 1 {
		t.Errorf("second SortOrder = %d, want 1", second.SortOrder)
	}
	again, err := s.EnsureCategory(ctx, "alice", "Meetings")
	if err != nil || again.ID != second.ID {
		t.Errorf("EnsureCategory existing = %+v, %v", again, err)
	}

	list, err := s.ListCategories(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "Development" || list[1].Name != "Meetings" {
		t.Errorf("ListCategories = %+v", list)
	}
	if list[0].WorkdayCode == nil || *list[0].WorkdayCode != code {
		t.Errorf("WorkdayCode = %v, want %q", list[0].WorkdayCode, code)
	}
}

func TestSettingsDefaultsAndValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	goal, err := s.WeeklyGoalMinutes(ctx, "alice")
	if err != nil || goal != 2400 {
		t.Errorf("WeeklyGoalMinutes default = %d, %v; want 2400", goal, err)
	}
	inc, err := s.RoundingIncrement(ctx, "alice")
	if err != nil || inc != 60 {
		t.Errorf("RoundingIncrement default = %d, %v; want 60", inc, err)
	}

	if err := s.SaveSettings(ctx, model.Settings{UserID: "alice", WeeklyGoalHours: 20, RoundingIncrement: 30}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if err := s.SaveSettings(ctx, model.Settings{UserID: "alice", WeeklyGoalHours: 32, RoundingIncrement: 30}); err != nil {
		t.Fatalf("SaveSettings update: %v", err)
	}
	goal, _ = s.WeeklyGoalMinutes(ctx, "alice")
	inc, _ = s.RoundingIncrement(ctx, "alice")
	if goal != 32*60 || inc != 30 {
		t.Errorf("after save goal=%d inc=%d, want 1920/30", goal, inc)
	}

	for _, bad := range []model.Settings{
		{UserID: "alice", WeeklyGoalHours: 41, RoundingIncrement: 60},
		{UserID: "alice", WeeklyGoalHours: -1, RoundingIncrement: 60},
		{UserID: "alice", WeeklyGoalHours: 40, RoundingIncrement: 15},
	} {
		if err := s.SaveSettings(ctx, bad); !errors.Is(err, storage.ErrInvalidSettings) {
			t.Errorf("SaveSettings(%+v) error = %v, want ErrInvalidSettings", bad, err)
		}
	}
}

func TestRoundingRuns(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 5, 0, 0, time.UTC)
	s, err := storage.Open(filepath.Join(t.TempDir(), "tk.db"), storage.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	for i, id := range []string{"run-a", "run-b"} {
		run := model.RoundingRun{ID: id, UserID: "alice", Date: "2026-03-01", Applied: i == 1, Adjusted: i}
		if err := s.RecordRoundingRun(ctx, run); err != nil {
			t.Fatalf("RecordRoundingRun: %v", err)
		}
	}

	runs, err := s.ListRoundingRuns(ctx, "alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != "run-b" || !runs[0].Applied || runs[0].Adjusted != 1 {
		t.Errorf("ListRoundingRuns = %+v", runs)
	}
	if !runs[1].CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", runs[1].CreatedAt, now)
	}
}
