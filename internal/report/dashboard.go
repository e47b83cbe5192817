package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devflow/chronicle-go/internal/models"
)

// RenderDashboard builds the cross-repository dashboard document.
func RenderDashboard(cmp *models.Comparison) string {
	var sb strings.Builder

	totalCommits := 0
	for _, r := range cmp.Repositories {
		totalCommits += r.Commits
	}

	sb.WriteString("# Multi-Repository Dashboard\n\n## Overview\n\n")
	fmt.Fprintf(&sb, "**Total Repositories:** %d\n", len(cmp.Repositories))
	fmt.Fprintf(&sb, "**Total Commits Analyzed:** %d\n\n", totalCommits)

	sb.WriteString("## Repository Breakdown\n\n")
	sb.WriteString("| Repository | Commits | % of Total |\n|------------|---------|------------|\n")
	for _, r := range cmp.Repositories {
		pct := 0.0
		if totalCommits > 0 {
			pct = float64(r.Commits) / float64(totalCommits) * 100
		}
		fmt.Fprintf(&sb, "| %s | %d | %.1f%% |\n", r.Name, r.Commits, pct)
	}

	focus := cmp.MainFocusProject
	if focus == "" {
		focus = "N/A"
	}
	fmt.Fprintf(&sb, "\n**Main Focus:** %s\n", focus)

	if cmp.WorkBalance != "" {
		fmt.Fprintf(&sb, "\n**Work Balance:** %s\n", cmp.WorkBalance)
	}

	if len(cmp.CommonThemes) > 0 {
		sb.WriteString("\n## Common Themes\n\n")
		for _, theme := range cmp.CommonThemes {
			fmt.Fprintf(&sb, "- %s\n", theme)
		}
	}

	if len(cmp.Recommendations) > 0 {
		sb.WriteString("\n## Recommendations\n\n")
		for _, rec := range cmp.Recommendations {
			fmt.Fprintf(&sb, "- %s\n", rec)
		}
	}

	return sb.String()
}

// WriteDashboard renders the dashboard into the renderer's output
// directory and returns the written path.
func (r *Renderer) WriteDashboard(cmp *models.Comparison) (string, error) {
	path := filepath.Join(r.outputDir, fmt.Sprintf("chronicle_dashboard_%s.md", r.now().Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(RenderDashboard(cmp)), 0644); err != nil {
		return "", fmt.Errorf("writing dashboard: %w", err)
	}
	return path, nil
}
