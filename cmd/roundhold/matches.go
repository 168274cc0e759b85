package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roundhold/roundhold/internal/storage"
)

var flagMatchLimit int

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Show recent match results",
	RunE:  runMatches,
}

func init() {
	matchesCmd.Flags().IntVar(&flagMatchLimit, "limit", 10, "Number of matches to show")
}

func runMatches(_ *cobra.Command, _ []string) error {
	dbPath := flagDBPath
	if env := os.Getenv("ROUNDHOLD_DB"); dbPath == "" && env != "" {
		dbPath = env
	}
	if dbPath == "" {
		return fmt.Errorf("no database configured: pass --db or set ROUNDHOLD_DB")
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.RecentMatches(flagMatchLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No matches recorded yet.")
		return nil
	}

	for _, e := range entries {
		winner := e.Winner
		if winner == "" {
			winner = "-"
		}
		fmt.Printf("%s  %s vs %s  winner=%s  rounds=%d  %ds  (%s)\n",
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.PlayerA, e.PlayerB, winner, e.Rounds, e.DurationSecs, e.EndReason)
	}
	return nil
}
