package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devflow/chronicle-go/internal/session"
	"github.com/devflow/chronicle-go/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List persisted analysis runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "number of runs to show")
	historyCmd.Flags().String("id", "", "show one run in detail")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetString("id")

	runs, err := store.Open(cfg.Store.RunDBPath)
	if err != nil {
		return fmt.Errorf("no run history yet, run an analysis first: %w", err)
	}
	defer runs.Close()

	if runID != "" {
		return showRun(runs, runID)
	}

	bundles, err := runs.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(bundles) == 0 {
		fmt.Println("No analysis runs recorded yet.")
		return nil
	}

	total, _ := runs.Count()
	fmt.Printf("📜 Showing %d of %d run(s)\n\n", len(bundles), total)
	for _, b := range bundles {
		fmt.Printf("  %s  %s\n", b.GeneratedAt.Format("2006-01-02 15:04"), b.RepoPath)
		fmt.Printf("          %d commits, %s, avg quality %.2f  (id %s)\n",
			b.Session.CommitCount, session.FormatDuration(b.Session.Duration),
			b.Quality.AverageScore, b.RunID)
	}
	return nil
}

func showRun(runs *store.RunStore, id string) error {
	b, err := runs.GetRun(id)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", b.RunID)
	fmt.Printf("  Repository: %s\n", b.RepoPath)
	fmt.Printf("  Generated:  %s\n", b.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Session:    %d commits over %s (+%d/-%d lines)\n",
		b.Session.CommitCount, session.FormatDuration(b.Session.Duration),
		b.Session.TotalInsertions, b.Session.TotalDeletions)
	fmt.Printf("  Quality:    %.2f average, %d high / %d medium / %d low\n",
		b.Quality.AverageScore, b.Quality.HighQuality, b.Quality.MediumQuality, b.Quality.LowQuality)
	if b.Temporal.TotalCommits > 0 {
		fmt.Printf("  Peak:       %s around %d:00\n", b.Temporal.PeakDay, b.Temporal.PeakHour)
	}
	for _, c := range b.Session.Commits {
		fmt.Printf("    %s  %s\n", c.Hash, c.ShortMessage())
	}
	return nil
}
