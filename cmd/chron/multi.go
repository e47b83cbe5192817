package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var multiCmd = &cobra.Command{
	Use:   "multi <repo> <repo> [repo...]",
	Short: "Analyze several repositories and compare work across them",
	Long: `Runs commit analysis for each repository concurrently, then asks the
LLM to compare focus, themes, and work balance across them. Writes a
markdown dashboard to the output directory.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMulti,
}

func runMulti(cmd *cobra.Command, args []string) error {
	paths := make([]string, len(args))
	for i, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		paths[i] = abs
	}

	a, err := buildApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	if !a.hasAnalyzer {
		return fmt.Errorf("multi-repo comparison needs an API key (run: chron configure)")
	}

	fmt.Printf("🔍 Analyzing %d repositories...\n", len(paths))

	cmp, err := a.coordinator.RunMulti(context.Background(), paths)
	if err != nil {
		return err
	}

	fmt.Printf("\n✅ Comparison complete\n")
	if cmp.MainFocusProject != "" {
		fmt.Printf("   Main focus: %s\n", cmp.MainFocusProject)
	}
	if cmp.WorkBalance != "" {
		fmt.Printf("   Balance: %s\n", cmp.WorkBalance)
	}
	fmt.Printf("   Dashboard written to %s\n", cfg.Output.Directory)

	printCacheStats(a)
	return nil
}
