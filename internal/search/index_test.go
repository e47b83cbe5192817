package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devflow/chronicle-go/internal/models"
)

func testCommits() []models.Commit {
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	return []models.Commit{
		{Hash: "abc1234", FullHash: "abc1234" + "0000000000000000000000000000000000",
			Message: "Add retry logic for flaky network calls", Author: "Alice",
			Timestamp: base, Files: []string{"internal/net/retry.go"}},
		{Hash: "def5678", FullHash: "def5678" + "0000000000000000000000000000000000",
			Message: "Refactor cache expiry handling", Author: "Bob",
			Timestamp: base.Add(time.Hour), Files: []string{"internal/cache/store.go"}},
		{Hash: "aaa9999", FullHash: "aaa9999" + "0000000000000000000000000000000000",
			Message: "Update documentation for webhook server", Author: "Alice",
			Timestamp: base.Add(2 * time.Hour), Files: []string{"docs/webhooks.md"}},
	}
}

func TestIndexAndSearch(t *testing.T) {
	idx, err := NewMemIndex()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.IndexCommits(testCommits()))

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	hits, err := idx.Search("retry network", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "abc1234", hits[0].Hash)
	assert.Equal(t, "Alice", hits[0].Author)
	assert.Greater(t, hits[0].Score, 0.0)
}

func TestSearch_NoMatches(t *testing.T) {
	idx, err := NewMemIndex()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.IndexCommits(testCommits()))

	hits, err := idx.Search("kubernetes operator", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexCommits_Idempotent(t *testing.T) {
	idx, err := NewMemIndex()
	require.NoError(t, err)
	defer idx.Close()

	commits := testCommits()
	require.NoError(t, idx.IndexCommits(commits))
	require.NoError(t, idx.IndexCommits(commits))

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}
