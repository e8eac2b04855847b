package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/time-keeper/internal/model"
	"github.com/Tiliavir/time-keeper/internal/timecalc"
)

var (
	exportWeek   string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a week's time entries to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportWeek, "week", "", "ISO week like 2026-W09 (default: this week)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
}

func runExport(cmd *cobra.Command, args []string) error {
	week, err := weekFlag(exportWeek)
	if err != nil {
		return err
	}

	from, to := week.Range()
	entries, names, err := loadEntries(cmd.Context(), from, to)
	if err != nil {
		exitStorage(err)
	}

	now := time.Now()
	switch exportFormat {
	case "json":
		return writeEntriesJSON(os.Stdout, entries, names)
	case "md":
		printList(os.Stdout, entries, names, now)
		return nil
	case "csv":
		return writeEntriesCSV(os.Stdout, entries, names)
	default:
		return fmt.Errorf("unknown format %q (want csv, json or md)", exportFormat)
	}
}

// exportedEntry is an entry with its category name resolved.
type exportedEntry struct {
	model.Entry
	Category string `json:"category"`
	Minutes  *int   `json:"minutes"`
}

func writeEntriesJSON(w io.Writer, entries []model.Entry, names map[int64]string) error {
	out := make([]exportedEntry, 0, len(entries))
	for _, e := range entries {
		x := exportedEntry{Entry: e, Category: names[e.CategoryID]}
		if e.EndTime != nil {
			m := timecalc.Minutes(e.StartTime, *e.EndTime)
			x.Minutes = &m
		}
		out = append(out, x)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeEntriesCSV(w io.Writer, entries []model.Entry, names map[int64]string) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"date", "category", "notes", "start", "end", "duration_minutes", "rounded"})
	for _, e := range entries {
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}
		end, minutes := "", ""
		if e.EndTime != nil {
			end = e.EndTime.UTC().Format(time.RFC3339)
			minutes = strconv.Itoa(timecalc.Minutes(e.StartTime, *e.EndTime))
		}
		_ = cw.Write([]string{
			timecalc.DateString(e.StartTime),
			names[e.CategoryID],
			notes,
			e.StartTime.UTC().Format(time.RFC3339),
			end,
			minutes,
			strconv.FormatBool(e.Rounded),
		})
	}
	cw.Flush()
	return cw.Error()
}
