package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devflow/chronicle-go/internal/cache"
	"github.com/devflow/chronicle-go/internal/config"
	"github.com/devflow/chronicle-go/internal/git"
	"github.com/devflow/chronicle-go/internal/github"
	"github.com/devflow/chronicle-go/internal/llm"
	"github.com/devflow/chronicle-go/internal/models"
	"github.com/devflow/chronicle-go/internal/pipeline"
	"github.com/devflow/chronicle-go/internal/report"
	"github.com/devflow/chronicle-go/internal/search"
	"github.com/devflow/chronicle-go/internal/store"
)

// app bundles the wired collaborators for one command invocation.
type app struct {
	coordinator *pipeline.Coordinator
	cache       *cache.Store
	runs        *store.RunStore
	index       *search.Index
	hasAnalyzer bool
}

func (a *app) close() {
	if a.runs != nil {
		a.runs.Close()
	}
	if a.index != nil {
		a.index.Close()
	}
}

// buildApp wires the pipeline from the loaded configuration. Persistence
// and search are optional and failures there only log; a missing API key
// downgrades to statistics-only reports.
func buildApp(noCache bool) (*app, error) {
	a := &app{}

	cacheEnabled := cfg.Cache.Enabled && !noCache
	a.cache = cache.NewStore(cfg.Cache.Directory, cacheEnabled, logger)

	renderer, err := report.NewRenderer(cfg.Output.Directory, logger)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{}

	if cfg.API.Key != "" {
		client, err := llm.NewClient(llm.Options{
			APIKey:            cfg.API.Key,
			Model:             cfg.API.Model,
			CacheTTL:          cfg.CacheMaxAge(),
			RequestTimeout:    time.Duration(cfg.API.RequestTimeoutSec) * time.Second,
			RequestsPerMinute: cfg.API.RequestsPerMinute,
		}, a.cache, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithAnalyzer(llm.NewAnalyzer(client, logger)))
		a.hasAnalyzer = true
	} else {
		logger.Warn("No API key configured, AI narratives disabled")
	}

	if runs, err := store.Open(cfg.Store.RunDBPath); err != nil {
		logger.WithError(err).Warn("Run history unavailable")
	} else {
		a.runs = runs
		opts = append(opts, pipeline.WithRunStore(runs))
	}

	if idx, err := search.OpenIndex(cfg.Store.SearchIndexPath); err != nil {
		logger.WithError(err).Warn("Search index unavailable")
	} else {
		a.index = idx
		opts = append(opts, pipeline.WithSearchIndex(idx))
	}

	a.coordinator = pipeline.New(cfg, renderer, logger, opts...)
	return a, nil
}

// localSource adapts a git working copy to the pipeline source interface.
func localSource(path string) (pipeline.Source, error) {
	src, err := git.NewSource(path, logger)
	if err != nil {
		return nil, err
	}
	return pipeline.SourceFunc(func(ctx context.Context, limit int) ([]models.Commit, error) {
		return src.RecentCommits(ctx, limit, "")
	}), nil
}

// remoteSource adapts the GitHub API to the pipeline source interface.
// spec is "owner/repo" or a clone URL.
func remoteSource(spec string) (pipeline.Source, error) {
	var owner, name string
	if strings.Contains(spec, "://") || strings.HasPrefix(spec, "git@") {
		var err error
		owner, name, err = git.ParseRepoURL(spec)
		if err != nil {
			return nil, err
		}
	} else {
		var ok bool
		owner, name, ok = strings.Cut(spec, "/")
		if !ok || owner == "" || name == "" {
			return nil, fmt.Errorf("expected owner/repo, got %q", spec)
		}
	}

	token := cfg.GitHub.Token
	if token == "" {
		if keychainToken, err := config.NewKeyringManager().GetGitHubToken(); err == nil {
			token = keychainToken
		}
	}
	if token == "" {
		logger.Warn("No GitHub token configured, using unauthenticated rate limits")
	}

	client := github.NewClient(token, cfg.GitHub.RateLimit)
	if repo, err := client.FetchRepository(context.Background(), owner, name); err == nil {
		fmt.Printf("📦 %s (%s, ★%d)\n", repo.FullName, repo.Language, repo.StarCount)
	}

	return pipeline.SourceFunc(func(ctx context.Context, limit int) ([]models.Commit, error) {
		return client.RecentCommits(ctx, owner, name, limit)
	}), nil
}

// printCacheStats shows the cache afterword the way the analyze flow ends.
func printCacheStats(a *app) {
	if !a.cache.Enabled() {
		return
	}
	stats := a.cache.Stats()
	fmt.Printf("\n💾 Cache: %d hits, %d misses (%.0f%% hit rate), %d entries\n",
		stats.Hits, stats.Misses, stats.HitRate*100, stats.Entries)
}
