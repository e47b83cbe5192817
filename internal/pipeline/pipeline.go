// Package pipeline sequences commit fetching, segmentation, scoring, LLM
// analysis, and report rendering into a single analysis run.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devflow/chronicle-go/internal/cherr"
	"github.com/devflow/chronicle-go/internal/config"
	"github.com/devflow/chronicle-go/internal/llm"
	"github.com/devflow/chronicle-go/internal/models"
	"github.com/devflow/chronicle-go/internal/quality"
	"github.com/devflow/chronicle-go/internal/report"
	"github.com/devflow/chronicle-go/internal/search"
	"github.com/devflow/chronicle-go/internal/session"
	"github.com/devflow/chronicle-go/internal/store"
	"github.com/devflow/chronicle-go/internal/temporal"
)

// Source delivers recent commit history. Local git and the GitHub API both
// satisfy it through small adapters.
type Source interface {
	RecentCommits(ctx context.Context, limit int) ([]models.Commit, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, limit int) ([]models.Commit, error)

func (f SourceFunc) RecentCommits(ctx context.Context, limit int) ([]models.Commit, error) {
	return f(ctx, limit)
}

// Coordinator runs the full analysis pipeline. Analyzer, run store, and
// search index are optional; a nil component skips its stage.
type Coordinator struct {
	cfg      *config.Config
	logger   *logrus.Logger
	scorer   *quality.Scorer
	analyzer *llm.Analyzer
	renderer *report.Renderer
	runs     *store.RunStore
	index    *search.Index
}

// Option configures optional coordinator collaborators.
type Option func(*Coordinator)

// WithAnalyzer enables LLM analysis, categorization, and narratives.
func WithAnalyzer(a *llm.Analyzer) Option {
	return func(c *Coordinator) { c.analyzer = a }
}

// WithRunStore enables run persistence.
func WithRunStore(rs *store.RunStore) Option {
	return func(c *Coordinator) { c.runs = rs }
}

// WithSearchIndex enables commit indexing after each run.
func WithSearchIndex(idx *search.Index) Option {
	return func(c *Coordinator) { c.index = idx }
}

// New creates a coordinator. The renderer is required; everything optional
// arrives through options.
func New(cfg *config.Config, renderer *report.Renderer, logger *logrus.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:    cfg,
		logger: logger,
		scorer: quality.NewScorer(quality.Thresholds{
			High:       cfg.Quality.HighThreshold,
			Low:        cfg.Quality.LowThreshold,
			SizeSmall:  cfg.Quality.SizeSmall,
			SizeMedium: cfg.Quality.SizeMedium,
			SizeLarge:  cfg.Quality.SizeLarge,
		}),
		renderer: renderer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one analysis: fetch, segment, profile, score, analyze,
// render, persist. Formats defaults to the configured list when nil.
// An empty commit history returns ErrNoCommits.
func (c *Coordinator) Run(ctx context.Context, src Source, repoPath string, formats []string) (*models.Bundle, error) {
	if len(formats) == 0 {
		formats = c.cfg.Analysis.Formats
	}

	commits, err := src.RecentCommits(ctx, c.cfg.Analysis.CommitLimit)
	if err != nil {
		return nil, err
	}
	commits = c.validated(commits)
	if len(commits) == 0 {
		return nil, cherr.ErrNoCommits
	}
	c.logger.WithFields(logrus.Fields{
		"repo":    repoPath,
		"commits": len(commits),
	}).Info("Fetched commit history")

	sessions := session.Segment(commits, c.cfg.SessionGap())
	active := sessions[0]
	summary := session.Summarize(active)
	c.logger.WithFields(logrus.Fields{
		"sessions":       len(sessions),
		"active_commits": summary.CommitCount,
	}).Debug("Segmented work sessions")

	scored := c.scorer.ScoreAll(active.Commits)
	if c.analyzer != nil {
		if err := c.analyzer.Categorize(ctx, scored); err != nil {
			c.logger.WithError(err).Warn("Commit categorization failed, categories omitted")
		}
	}

	bundle := &models.Bundle{
		RepoPath:    repoPath,
		GeneratedAt: time.Now(),
		Session:     summary,
		Temporal:    temporal.BuildProfile(commits),
		Patterns:    temporal.FilePatterns(commits),
		Authors:     temporal.AuthorStats(commits),
		Scored:      scored,
		Quality:     c.scorer.Aggregate(scored),
	}

	if c.analyzer != nil {
		c.enrich(ctx, bundle, formats)
	} else {
		// Statistics-only reports still get written without an API key.
		bundle.Narratives = make(map[string]string, len(formats))
		for _, format := range formats {
			bundle.Narratives[format] = "*AI narrative unavailable: no API key configured.*"
		}
	}

	if _, err := c.renderer.WriteReports(bundle); err != nil {
		return nil, err
	}

	if c.runs != nil {
		if err := c.runs.SaveRun(bundle); err != nil {
			c.logger.WithError(err).Warn("Failed to persist run")
		}
	}
	if c.index != nil {
		if err := c.index.IndexCommits(commits); err != nil {
			c.logger.WithError(err).Warn("Failed to index commits")
		}
	}

	return bundle, nil
}

// validated drops records that violate source invariants instead of letting
// them poison downstream aggregation.
func (c *Coordinator) validated(commits []models.Commit) []models.Commit {
	valid := commits[:0:len(commits)]
	for _, commit := range commits {
		if err := commit.Validate(); err != nil {
			c.logger.WithError(err).Warn("Dropping malformed commit")
			continue
		}
		valid = append(valid, commit)
	}
	return valid
}

// enrich runs the LLM stages. Each stage failure is logged and skipped;
// narratives fail per format so one bad call never sinks the run.
func (c *Coordinator) enrich(ctx context.Context, bundle *models.Bundle, formats []string) {
	analysis, err := c.analyzer.AnalyzeCommits(ctx, bundle.Session.Commits)
	if err != nil {
		c.logger.WithError(err).Warn("Commit analysis failed")
	} else {
		bundle.Analysis = analysis
	}

	style, err := c.analyzer.AnalyzeWritingStyle(ctx, bundle.Session.Commits)
	if err != nil {
		c.logger.WithError(err).Debug("Writing style analysis failed")
	} else {
		bundle.Style = style
	}

	if notes, err := c.analyzer.TemporalInsights(ctx, bundle.Temporal); err != nil {
		c.logger.WithError(err).Debug("Temporal insights failed")
	} else {
		bundle.TemporalNotes = notes
	}
	if notes, err := c.analyzer.QualityInsights(ctx, bundle.Quality); err != nil {
		c.logger.WithError(err).Debug("Quality insights failed")
	} else {
		bundle.QualityNotes = notes
	}

	narratives := make(map[string]string, len(formats))
	sorted := append([]string(nil), formats...)
	sort.Strings(sorted)
	for _, format := range sorted {
		text, err := c.analyzer.GenerateNarrative(ctx, bundle.Session, bundle.Analysis, format, bundle.Style)
		if err != nil {
			c.logger.WithError(err).WithField("format", format).Warn("Narrative generation failed, skipping format")
			continue
		}
		narratives[format] = text
	}
	if len(narratives) > 0 {
		bundle.Narratives = narratives
	}
}
