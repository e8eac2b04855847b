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
	reportWeek   string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the weekly summary",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportWeek, "week", "", "ISO week like 2026-W09 (default: this week)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

// weekFlag parses an ISO week label, defaulting to the current week.
func weekFlag(s string) (timecalc.Week, error) {
	if s == "" {
		return timecalc.WeekOf(time.Now()), nil
	}
	return timecalc.ParseWeek(s)
}

func runReport(cmd *cobra.Command, args []string) error {
	week, err := weekFlag(reportWeek)
	if err != nil {
		return err
	}

	sum, err := newService().WeeklySummary(cmd.Context(), currentUser(), week)
	if err != nil {
		exitStorage(err)
	}
	return writeReport(os.Stdout, sum, reportFormat)
}

func writeReport(w io.Writer, sum model.WeeklySummary, format string) error {
	switch format {
	case "csv":
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"date", "category", "workday_code", "minutes", "rounded_hours"})
		for _, d := range sum.Days {
			for _, c := range d.Categories {
				code := ""
				if c.WorkdayCode != nil {
					code = *c.WorkdayCode
				}
				_ = cw.Write([]string{
					d.Date,
					c.Name,
					code,
					strconv.Itoa(c.Minutes),
					strconv.FormatFloat(c.RoundedHours, 'f', 1, 64),
				})
			}
		}
		cw.Flush()
		return cw.Error()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	case "md", "":
		fmt.Fprintf(w, "Week %s\n", sum.Week)
		fmt.Fprintln(w, "--------------------------------")
		for _, d := range sum.Days {
			fmt.Fprintf(w, "%-20s%s / %s\n", d.Date, timecalc.FormatDuration(d.TotalMinutes), timecalc.FormatDuration(d.GoalMinutes))
			for _, c := range d.Categories {
				fmt.Fprintf(w, "  %-18s%s\n", c.Name, timecalc.FormatDuration(c.Minutes))
			}
		}
		fmt.Fprintln(w, "--------------------------------")
		fmt.Fprintf(w, "%-20s%s / %s\n", "Total", timecalc.FormatDuration(sum.TotalMinutes), timecalc.FormatDuration(sum.GoalMinutes))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want md, csv or json)", format)
	}
}
