package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devflow/chronicle-go/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over previously analyzed commits",
	Long: `Searches the commit index built during analysis runs. Matches commit
messages, authors, and touched file paths.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 10, "maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	limit, _ := cmd.Flags().GetInt("limit")

	idx, err := search.OpenIndex(cfg.Store.SearchIndexPath)
	if err != nil {
		return fmt.Errorf("no search index yet, run an analysis first: %w", err)
	}
	defer idx.Close()

	hits, err := idx.Search(query, limit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Printf("No commits matching %q\n", query)
		return nil
	}

	fmt.Printf("🔎 %d result(s) for %q\n\n", len(hits), query)
	for _, hit := range hits {
		fmt.Printf("  %s  %s\n", hit.Hash, hit.Message)
		fmt.Printf("          %s, %s (score %.2f)\n",
			hit.Author, hit.Timestamp.Format("2006-01-02 15:04"), hit.Score)
	}
	return nil
}
