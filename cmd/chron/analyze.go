package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devflow/chronicle-go/internal/cherr"
	"github.com/devflow/chronicle-go/internal/config"
	"github.com/devflow/chronicle-go/internal/git"
	"github.com/devflow/chronicle-go/internal/llm"
	"github.com/devflow/chronicle-go/internal/pipeline"
	"github.com/devflow/chronicle-go/internal/session"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze recent commits and generate reports",
	Long: `Analyzes the most recent commits of a repository (default: current
directory), segments them into work sessions, scores commit quality,
profiles productivity patterns, and writes markdown reports for each
configured format.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("no-cache", false, "bypass the LLM response cache")
	analyzeCmd.Flags().StringSlice("formats", nil, "report formats to generate (standup, technical, weekly, insights)")
	analyzeCmd.Flags().String("preset", "", "named preset from presets.yaml")
	analyzeCmd.Flags().Int("limit", 0, "number of commits to analyze (overrides config)")
	analyzeCmd.Flags().String("github", "", "analyze a remote repository instead (owner/repo)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	remote, _ := cmd.Flags().GetString("github")

	repoPath := "."
	if len(args) > 0 {
		repoPath = args[0]
	}
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return err
	}

	if preset, _ := cmd.Flags().GetString("preset"); preset != "" {
		p, err := config.LoadPreset(presetPath(), preset)
		if err != nil {
			return err
		}
		cfg.ApplyPreset(p)
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		cfg.Analysis.CommitLimit = limit
	}
	formats, _ := cmd.Flags().GetStringSlice("formats")
	for _, f := range formats {
		if !slices.Contains(llm.NarrativeFormats, f) {
			return fmt.Errorf("unknown format %q (choose from: %s)", f, strings.Join(llm.NarrativeFormats, ", "))
		}
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	a, err := buildApp(noCache)
	if err != nil {
		return err
	}
	defer a.close()

	var src pipeline.Source
	target := absPath
	if remote != "" {
		// "origin" resolves the clone's own remote.
		if remote == "origin" {
			url, err := git.RemoteURL(context.Background(), absPath)
			if err != nil {
				return err
			}
			remote = url
		}
		src, err = remoteSource(remote)
		target = remote
	} else {
		src, err = localSource(absPath)
		if branch, berr := git.CurrentBranch(context.Background(), absPath); berr == nil {
			logger.WithField("branch", branch).Debug("Analyzing local repository")
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("🔍 Analyzing %s (last %d commits)...\n", target, cfg.Analysis.CommitLimit)

	bundle, err := a.coordinator.Run(context.Background(), src, target, formats)
	if errors.Is(err, cherr.ErrNoCommits) {
		fmt.Println("No commits found. Nothing to analyze.")
		return nil
	}
	if err != nil {
		return err
	}

	s := bundle.Session
	fmt.Printf("\n✅ Analysis complete\n")
	fmt.Printf("   Session: %d commits over %s\n", s.CommitCount, session.FormatDuration(s.Duration))
	fmt.Printf("   Quality: %.2f average across %d scored commits\n", bundle.Quality.AverageScore, bundle.Quality.Total)
	if bundle.Temporal.TotalCommits > 0 {
		fmt.Printf("   Peak productivity: %s around %d:00\n", bundle.Temporal.PeakDay, bundle.Temporal.PeakHour)
	}
	if len(bundle.Narratives) > 0 {
		names := make([]string, 0, len(bundle.Narratives))
		for f := range bundle.Narratives {
			names = append(names, f)
		}
		fmt.Printf("   Reports: %s -> %s\n", strings.Join(names, ", "), cfg.Output.Directory)
	}

	printCacheStats(a)
	return nil
}

func presetPath() string {
	for _, p := range []string{"presets.yaml", ".chronicle/presets.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".chronicle", "presets.yaml")
}
