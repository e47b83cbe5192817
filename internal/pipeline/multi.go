package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/devflow/chronicle-go/internal/git"
	"github.com/devflow/chronicle-go/internal/models"
)

// multiRepoWorkers caps concurrent per-repo analyses.
const multiRepoWorkers = 3

// RunMulti analyzes several repositories concurrently and synthesizes a
// cross-repo comparison. Repos with no commits are reported with zero
// counts rather than failing the run. Requires an analyzer.
func (c *Coordinator) RunMulti(ctx context.Context, paths []string) (*models.Comparison, error) {
	if c.analyzer == nil {
		return nil, fmt.Errorf("multi-repo comparison requires LLM analysis")
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no repositories given")
	}

	results := make([]models.RepoAnalysis, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(multiRepoWorkers)
	for i, path := range paths {
		g.Go(func() error {
			analysis, err := c.analyzeRepo(gctx, path)
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", path, err)
			}
			results[i] = *analysis
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cmp, err := c.analyzer.Compare(ctx, results)
	if err != nil {
		c.logger.WithError(err).Warn("Cross-repo comparison failed, returning per-repo results only")
		cmp = &models.Comparison{Repositories: results}
	}

	if _, err := c.renderer.WriteDashboard(cmp); err != nil {
		return nil, err
	}
	return cmp, nil
}

func (c *Coordinator) analyzeRepo(ctx context.Context, path string) (*models.RepoAnalysis, error) {
	result := &models.RepoAnalysis{
		Path: path,
		Name: filepath.Base(path),
	}

	src, err := git.NewSource(path, c.logger)
	if err != nil {
		return nil, err
	}
	commits, err := src.RecentCommits(ctx, c.cfg.Analysis.CommitLimit, "")
	if err != nil {
		return nil, err
	}
	commits = c.validated(commits)
	result.Commits = len(commits)
	if len(commits) == 0 {
		return result, nil
	}

	analysis, err := c.analyzer.AnalyzeCommits(ctx, commits)
	if err != nil {
		c.logger.WithError(err).WithField("repo", result.Name).Warn("Repo analysis failed")
		return result, nil
	}
	result.Analysis = analysis
	return result, nil
}
