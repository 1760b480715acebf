package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/odash/internal/cli"
	"github.com/theirongolddev/odash/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Recent fetch outcomes from the snapshot cache",
	RunE:  runHistory,
}

var flagHistoryLimit int

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of fetches to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	if flagNoCache {
		return errors.New("history needs the snapshot cache")
	}

	cache, err := store.Open(store.CachePath())
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() { _ = cache.Close() }()

	records, err := cache.RecentFetches(flagHistoryLimit)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(records)
	}

	if len(records) == 0 {
		fmt.Println("\n  No fetches recorded yet.")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		result := "ok"
		if !r.OK {
			result = "failed: " + r.Error
		}
		rows = append(rows, []string{
			string(r.Lane),
			cli.FormatAge(r.At, now),
			fmt.Sprintf("%dms", r.Duration.Milliseconds()),
			result,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Recent Fetches",
		Headers: []string{"Lane", "When", "Took", "Result"},
		Rows:    rows,
	}))
	if n, err := cache.SnapshotCount(); err == nil {
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  %d lane snapshots cached at %s", n, store.CachePath())))
	}
	fmt.Println()
	return nil
}
