package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/time-keeper/internal/storage"
	"github.com/Tiliavir/time-keeper/internal/timecalc"
)

var stopNotes string

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the currently running timer",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopNotes, "notes", "", "Append notes to the entry")
}

func runStop(cmd *cobra.Command, args []string) error {
	stopped, err := newTimer().Stop(cmd.Context(), currentUser(), stopNotes)
	if errors.Is(err, storage.ErrNoActiveTimer) {
		fmt.Fprintln(os.Stderr, "No active timer to stop.")
		os.Exit(1)
	}
	if err != nil {
		exitStorage(err)
	}

	fmt.Printf("Stopped timer. Elapsed: %s\n", timecalc.FormatElapsed(int64(stopped.Elapsed.Seconds())))
	if n := len(stopped.Segments); n > 1 {
		fmt.Printf("Entry crossed midnight and was split into %d entries.\n", n)
	}
	return nil
}
