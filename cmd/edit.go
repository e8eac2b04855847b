package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/time-keeper/internal/model"
	"github.com/Tiliavir/time-keeper/internal/storage"
	"github.com/Tiliavir/time-keeper/internal/timecalc"
)

var (
	editCategory string
	editStart    string
	editEnd      string
	editNotes    string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an entry's category, times or notes",
	Long: `Change a stored entry. Times are UTC, given as RFC 3339 or
"2006-01-02T15:04". Use the ids shown by "tk export --format json".`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	editCmd.Flags().StringVar(&editCategory, "category", "", "Move the entry to this category")
	editCmd.Flags().StringVar(&editStart, "start", "", "New start time")
	editCmd.Flags().StringVar(&editEnd, "end", "", "New end time")
	editCmd.Flags().StringVar(&editNotes, "notes", "", "Replace the notes")
}

// parseClock parses a UTC timestamp flag.
func parseClock(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want RFC 3339 or 2006-01-02T15:04)", s)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	e, err := env.store.GetEntry(ctx, id)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && e.UserID != currentUser()) {
		fmt.Fprintf(os.Stderr, "Entry %d not found.\n", id)
		os.Exit(1)
	}
	if err != nil {
		exitStorage(err)
	}

	var u model.EntryUpdate
	flags := cmd.Flags()
	if flags.Changed("category") {
		cat, err := env.store.EnsureCategory(ctx, e.UserID, editCategory)
		if err != nil {
			exitStorage(err)
		}
		u.CategoryID = &cat.ID
	}
	if flags.Changed("start") {
		t, err := parseClock(editStart)
		if err != nil {
			return err
		}
		u.StartTime, e.StartTime = &t, t
	}
	if flags.Changed("end") {
		t, err := parseClock(editEnd)
		if err != nil {
			return err
		}
		u.EndTime, e.EndTime = &t, &t
	}
	if flags.Changed("notes") {
		u.Notes = &editNotes
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return fmt.Errorf("end %s is before start %s", e.EndTime.Format(time.RFC3339), e.StartTime.Format(time.RFC3339))
	}

	if err := env.store.UpdateEntry(ctx, id, u); err != nil {
		exitStorage(err)
	}
	if e.EndTime != nil {
		fmt.Printf("Updated entry %d (%s).\n", id, timecalc.FormatDuration(timecalc.Minutes(e.StartTime, *e.EndTime)))
	} else {
		fmt.Printf("Updated entry %d.\n", id)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	err = env.store.DeleteEntry(cmd.Context(), currentUser(), id)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "Entry %d not found.\n", id)
		os.Exit(1)
	}
	if err != nil {
		exitStorage(err)
	}
	fmt.Printf("Deleted entry %d.\n", id)
	return nil
}
