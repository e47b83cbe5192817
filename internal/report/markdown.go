// Package report renders analytics bundles into markdown documents.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devflow/chronicle-go/internal/models"
	"github.com/devflow/chronicle-go/internal/session"
)

// Renderer writes markdown reports into an output directory, one file per
// narrative format, each with a stable *_latest.md alias.
type Renderer struct {
	outputDir string
	logger    *logrus.Logger
	now       func() time.Time
}

// NewRenderer creates a renderer rooted at outputDir.
func NewRenderer(outputDir string, logger *logrus.Logger) (*Renderer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Renderer{outputDir: outputDir, logger: logger, now: time.Now}, nil
}

// WriteReports renders one document per narrative in the bundle and
// returns format -> written path. The latest alias is best effort:
// filesystems without symlink support just skip it.
func (r *Renderer) WriteReports(bundle *models.Bundle) (map[string]string, error) {
	stamp := r.now().Format("20060102_150405")
	written := make(map[string]string, len(bundle.Narratives))

	formats := make([]string, 0, len(bundle.Narratives))
	for format := range bundle.Narratives {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	for _, format := range formats {
		filename := fmt.Sprintf("chronicle_%s_%s.md", format, stamp)
		path := filepath.Join(r.outputDir, filename)

		content := r.Render(format, bundle.Narratives[format], bundle)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return written, fmt.Errorf("writing %s report: %w", format, err)
		}
		written[format] = path

		latest := filepath.Join(r.outputDir, fmt.Sprintf("chronicle_%s_latest.md", format))
		os.Remove(latest)
		if err := os.Symlink(filename, latest); err != nil {
			r.logger.WithError(err).Debug("Could not update latest alias")
		}
	}

	return written, nil
}

// Render builds the full markdown document for one format.
func (r *Renderer) Render(format, narrative string, bundle *models.Bundle) string {
	var sb strings.Builder

	r.writeHeader(&sb, format, bundle)

	fmt.Fprintf(&sb, "\n## %s Report\n\n%s\n\n---\n\n", titleCase(format), narrative)

	if len(bundle.Scored) > 0 {
		writeCategoryBreakdown(&sb, bundle.Scored)
	}
	if bundle.Quality.Total > 0 {
		writeQualitySection(&sb, bundle.Quality, bundle.QualityNotes)
	}
	if bundle.Temporal.TotalCommits > 0 {
		writeTemporalSection(&sb, bundle.Temporal, bundle.TemporalNotes)
	}
	if bundle.Analysis != nil {
		writeAnalysisSection(&sb, bundle.Analysis)
	}
	writeCommitDetails(&sb, bundle.Session)
	writeFooter(&sb)

	return sb.String()
}

func (r *Renderer) writeHeader(sb *strings.Builder, format string, bundle *models.Bundle) {
	s := bundle.Session
	fmt.Fprintf(sb, "# DevFlow Chronicle - %s Report\n\n", titleCase(format))
	fmt.Fprintf(sb, "**Generated:** %s\n\n---\n\n", r.now().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("## Session Overview\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(sb, "| **Duration** | %s |\n", session.FormatDuration(s.Duration))
	fmt.Fprintf(sb, "| **Time Period** | %s to %s |\n",
		s.StartTime.Format("Jan 2, 3:04 PM"), s.EndTime.Format("Jan 2, 3:04 PM"))
	fmt.Fprintf(sb, "| **Commits** | %d |\n", s.CommitCount)
	fmt.Fprintf(sb, "| **Files Changed** | %d |\n", s.TotalFilesChanged())
	fmt.Fprintf(sb, "| **Lines Added** | +%d |\n", s.TotalInsertions)
	fmt.Fprintf(sb, "| **Lines Removed** | -%d |\n", s.TotalDeletions)
	fmt.Fprintf(sb, "| **Net Change** | %+d |\n\n---\n", s.TotalInsertions-s.TotalDeletions)
}

func writeCategoryBreakdown(sb *strings.Builder, scored []models.ScoredCommit) {
	type catStat struct {
		count      int
		insertions int
		deletions  int
	}
	stats := make(map[string]*catStat)
	for _, c := range scored {
		category := c.Category
		if category == "" {
			category = "unknown"
		}
		st, ok := stats[category]
		if !ok {
			st = &catStat{}
			stats[category] = st
		}
		st.count++
		st.insertions += c.Insertions
		st.deletions += c.Deletions
	}

	categories := make([]string, 0, len(stats))
	for cat := range stats {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		if stats[categories[i]].count != stats[categories[j]].count {
			return stats[categories[i]].count > stats[categories[j]].count
		}
		return categories[i] < categories[j]
	})

	sb.WriteString("## Work Breakdown\n\n| Category | Commits | % | Lines |\n|----------|---------|---|-------|\n")
	for _, cat := range categories {
		st := stats[cat]
		pct := float64(st.count) / float64(len(scored)) * 100
		fmt.Fprintf(sb, "| %s | %d | %.0f%% | +%d/-%d |\n",
			titleCase(cat), st.count, pct, st.insertions, st.deletions)
	}
	sb.WriteString("\n---\n\n")
}

func writeQualitySection(sb *strings.Builder, q models.QualitySummary, notes string) {
	sb.WriteString("## Quality Analysis\n\n")
	fmt.Fprintf(sb, "**Average Score:** %.2f/1.00\n\n", q.AverageScore)
	sb.WriteString("| Quality Level | Count |\n|---------------|-------|\n")
	fmt.Fprintf(sb, "| High (>=0.8) | %d commits |\n", q.HighQuality)
	fmt.Fprintf(sb, "| Medium (0.6-0.8) | %d commits |\n", q.MediumQuality)
	fmt.Fprintf(sb, "| Needs Work (<0.6) | %d commits |\n", q.LowQuality)
	if notes != "" {
		fmt.Fprintf(sb, "\n%s\n", notes)
	}
	sb.WriteString("\n---\n\n")
}

func writeTemporalSection(sb *strings.Builder, t models.TemporalProfile, notes string) {
	sb.WriteString("## Productivity Patterns\n\n")
	fmt.Fprintf(sb, "**Peak Productivity:** %s at %d:00\n\n", t.PeakDay, t.PeakHour)
	sb.WriteString("**Time Distribution:**\n")
	fmt.Fprintf(sb, "- Morning (6am-12pm): %d commits\n", t.MorningCommits)
	fmt.Fprintf(sb, "- Afternoon (12pm-6pm): %d commits\n", t.AfternoonCommits)
	fmt.Fprintf(sb, "- Evening (6pm-12am): %d commits\n", t.EveningCommits)
	fmt.Fprintf(sb, "- Night (12am-6am): %d commits\n\n", t.NightCommits)
	fmt.Fprintf(sb, "**Productivity Rate:** %.1f commits/day across %d active days\n",
		t.ProductivityRate, t.ActiveDays)
	if notes != "" {
		fmt.Fprintf(sb, "\n%s\n", notes)
	}
	sb.WriteString("\n---\n\n")
}

func writeAnalysisSection(sb *strings.Builder, a *models.Insights) {
	sb.WriteString("## AI Analysis\n\n")
	writeList(sb, "Work Types", a.WorkTypes)
	writeList(sb, "Focus Areas", a.FocusAreas)
	writeList(sb, "Technical Insights", a.TechnicalInsights)
	if a.Summary != "" {
		fmt.Fprintf(sb, "%s\n\n", a.Summary)
	}
	sb.WriteString("---\n\n")
}

func writeCommitDetails(sb *strings.Builder, s models.SessionSummary) {
	sb.WriteString("## Commit Details\n\n")

	shown := s.Commits
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, c := range shown {
		msg := c.ShortMessage()
		if len(msg) > 60 {
			msg = msg[:60]
		}
		fmt.Fprintf(sb, "### `%s` %s\n", c.Hash, msg)
		fmt.Fprintf(sb, "*%s* | %d files | +%d/-%d\n\n",
			c.Timestamp.Format("Jan 2, 3:04 PM"), c.FilesChanged, c.Insertions, c.Deletions)
	}
	if rest := len(s.Commits) - len(shown); rest > 0 {
		fmt.Fprintf(sb, "*...and %d more commits*\n\n", rest)
	}
}

func writeFooter(sb *strings.Builder) {
	sb.WriteString("---\n\n*Generated by **DevFlow Chronicle***\n")
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "**%s:**\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
