package github

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/devflow/chronicle-go/internal/models"
)

// Client wraps the GitHub API with rate limiting so remote repositories can
// feed the same pipeline as local clones.
type Client struct {
	client      *github.Client
	rateLimiter *rate.Limiter
	maxWorkers  int
}

// Repository holds the metadata shown in multi-repo dashboards.
type Repository struct {
	Owner         string
	Name          string
	FullName      string
	URL           string
	DefaultBranch string
	Language      string
	StarCount     int
	UpdatedAt     time.Time
}

// NewClient creates a GitHub client. rateLimit is requests per second.
func NewClient(token string, rateLimit int) *Client {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		maxWorkers:  10,
	}
}

// FetchRepository gets repository metadata.
func (c *Client) FetchRepository(ctx context.Context, owner, name string) (*Repository, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	repo, _, err := c.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("fetch repository: %w", err)
	}

	return &Repository{
		Owner:         owner,
		Name:          name,
		FullName:      repo.GetFullName(),
		URL:           repo.GetHTMLURL(),
		DefaultBranch: repo.GetDefaultBranch(),
		Language:      repo.GetLanguage(),
		StarCount:     repo.GetStargazersCount(),
		UpdatedAt:     repo.GetUpdatedAt().Time,
	}, nil
}

// RecentCommits retrieves up to limit commits from the default branch, most
// recent first. The list endpoint does not include file stats, so each
// commit is hydrated with a detail request, fanned out across workers under
// the shared rate limit.
func (c *Client) RecentCommits(ctx context.Context, owner, name string, limit int) ([]models.Commit, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: min(limit, 100)},
	}

	var shas []string
	for len(shas) < limit {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		page, resp, err := c.client.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			return nil, fmt.Errorf("list commits: %w", err)
		}

		for _, commit := range page {
			shas = append(shas, commit.GetSHA())
			if len(shas) == limit {
				break
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	commits := make([]models.Commit, len(shas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxWorkers)
	for i, sha := range shas {
		g.Go(func() error {
			if err := c.rateLimiter.Wait(gctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
			detail, _, err := c.client.Repositories.GetCommit(gctx, owner, name, sha, nil)
			if err != nil {
				return fmt.Errorf("fetch commit %s: %w", sha, err)
			}
			commits[i] = convertCommit(detail)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return commits, nil
}

// convertCommit maps an API commit with stats onto the pipeline record.
func convertCommit(rc *github.RepositoryCommit) models.Commit {
	sha := rc.GetSHA()
	short := sha
	if len(short) > 7 {
		short = short[:7]
	}

	c := models.Commit{
		Hash:        short,
		FullHash:    sha,
		Message:     rc.GetCommit().GetMessage(),
		Author:      rc.GetCommit().GetAuthor().GetName(),
		AuthorEmail: rc.GetCommit().GetAuthor().GetEmail(),
		Timestamp:   rc.GetCommit().GetAuthor().GetDate().Time,
		Insertions:  rc.GetStats().GetAdditions(),
		Deletions:   rc.GetStats().GetDeletions(),
	}
	if c.Author == "" {
		c.Author = rc.GetAuthor().GetLogin()
	}

	for _, f := range rc.Files {
		c.Files = append(c.Files, f.GetFilename())
	}
	sort.Strings(c.Files)
	c.FilesChanged = len(c.Files)

	return c
}
