package github

import (
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
)

func TestConvertCommit(t *testing.T) {
	sha := "abc1234def5678abc1234def5678abc1234def56"
	date := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	rc := &github.RepositoryCommit{
		SHA: github.String(sha),
		Commit: &github.Commit{
			Message: github.String("Add webhook endpoint"),
			Author: &github.CommitAuthor{
				Name:  github.String("Alice"),
				Email: github.String("alice@example.com"),
				Date:  &github.Timestamp{Time: date},
			},
		},
		Stats: &github.CommitStats{
			Additions: github.Int(12),
			Deletions: github.Int(3),
		},
		Files: []*github.CommitFile{
			{Filename: github.String("internal/server/webhook.go")},
			{Filename: github.String("cmd/chron/serve.go")},
		},
	}

	c := convertCommit(rc)

	assert.Equal(t, "abc1234", c.Hash)
	assert.Equal(t, sha, c.FullHash)
	assert.Equal(t, "Add webhook endpoint", c.Message)
	assert.Equal(t, "Alice", c.Author)
	assert.Equal(t, "alice@example.com", c.AuthorEmail)
	assert.Equal(t, date, c.Timestamp)
	assert.Equal(t, 12, c.Insertions)
	assert.Equal(t, 3, c.Deletions)
	assert.Equal(t, 2, c.FilesChanged)
	assert.Equal(t, []string{
		"cmd/chron/serve.go",
		"internal/server/webhook.go",
	}, c.Files)
}

func TestConvertCommit_FallbackAuthorLogin(t *testing.T) {
	rc := &github.RepositoryCommit{
		SHA:    github.String("abc1234"),
		Commit: &github.Commit{},
		Author: &github.User{Login: github.String("octocat")},
	}

	c := convertCommit(rc)
	assert.Equal(t, "octocat", c.Author)
	assert.Equal(t, "abc1234", c.Hash)
}
