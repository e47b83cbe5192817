package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devflow/chronicle-go/internal/models"
)

func commitAt(hash string, ts time.Time) models.Commit {
	return models.Commit{
		Hash:      hash,
		FullHash:  hash + "0000000000000000000000000000000000",
		Message:   "Add " + hash,
		Author:    "Alice",
		Timestamp: ts,
	}
}

func TestSegment_Empty(t *testing.T) {
	assert.Nil(t, Segment(nil, 3*time.Hour))
	assert.Nil(t, Segment([]models.Commit{}, 3*time.Hour))
}

func TestSegment_SingleCommit(t *testing.T) {
	sessions := Segment([]models.Commit{commitAt("a", time.Now())}, 3*time.Hour)
	require.Len(t, sessions, 1)
	assert.Len(t, sessions[0].Commits, 1)
}

func TestSegment_GapSplitsSessions(t *testing.T) {
	// Commits at 09:00, 09:30, 13:00 with a 3h threshold: the 3h30m gap
	// between 09:30 and 13:00 starts a new session.
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	commits := []models.Commit{
		commitAt("a", base),
		commitAt("b", base.Add(30*time.Minute)),
		commitAt("c", base.Add(4*time.Hour)),
	}

	sessions := Segment(commits, 3*time.Hour)
	require.Len(t, sessions, 2)

	// Most recent session first.
	assert.Equal(t, "c", sessions[0].Commits[0].Hash)
	require.Len(t, sessions[1].Commits, 2)
	assert.Equal(t, "a", sessions[1].Commits[0].Hash)
	assert.Equal(t, "b", sessions[1].Commits[1].Hash)
}

func TestSegment_GapEqualToThresholdStaysJoined(t *testing.T) {
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	commits := []models.Commit{
		commitAt("a", base),
		commitAt("b", base.Add(3*time.Hour)), // exactly the threshold
	}

	sessions := Segment(commits, 3*time.Hour)
	require.Len(t, sessions, 1)
	assert.Len(t, sessions[0].Commits, 2)
}

func TestSegment_UnsortedInput(t *testing.T) {
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	commits := []models.Commit{
		commitAt("c", base.Add(5*time.Hour)),
		commitAt("a", base),
		commitAt("b", base.Add(20*time.Minute)),
	}

	sessions := Segment(commits, time.Hour)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[1].Commits[0].Hash)
	assert.Equal(t, "b", sessions[1].Commits[1].Hash)
	assert.Equal(t, "c", sessions[0].Commits[0].Hash)
}

func TestSegment_Partition(t *testing.T) {
	// Every input commit lands in exactly one session, and no session
	// contains an internal gap over the threshold.
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	gaps := []time.Duration{
		0, 10 * time.Minute, 4 * time.Hour, 5 * time.Minute,
		3 * time.Hour, 3*time.Hour + time.Second, 30 * time.Minute,
		48 * time.Hour, time.Minute,
	}

	var commits []models.Commit
	ts := base
	for i, g := range gaps {
		ts = ts.Add(g)
		commits = append(commits, commitAt(string(rune('a'+i)), ts))
	}

	threshold := 3 * time.Hour
	sessions := Segment(commits, threshold)

	seen := make(map[string]int)
	for _, s := range sessions {
		require.NotEmpty(t, s.Commits)
		for i, c := range s.Commits {
			seen[c.Hash]++
			if i > 0 {
				gap := c.Timestamp.Sub(s.Commits[i-1].Timestamp)
				assert.LessOrEqual(t, gap, threshold,
					"internal gap must not exceed threshold")
			}
		}
	}

	require.Len(t, seen, len(commits))
	for _, count := range seen {
		assert.Equal(t, 1, count, "each commit belongs to exactly one session")
	}

	// Adjacent sessions (remember: most-recent-first) are separated by more
	// than the threshold.
	for i := 0; i < len(sessions)-1; i++ {
		later, earlier := sessions[i], sessions[i+1]
		assert.Greater(t, later.Start().Sub(earlier.End()), threshold)
	}
}

func TestSummarize(t *testing.T) {
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	a := commitAt("a", base)
	a.Files = []string{"internal/app/main.go", "README.md"}
	a.Insertions = 10
	a.Deletions = 2

	b := commitAt("b", base.Add(time.Hour))
	b.Author = "Bob"
	b.Files = []string{"internal/app/main.go"}
	b.Insertions = 5
	b.Deletions = 1

	sum := Summarize(Session{Commits: []models.Commit{a, b}})

	assert.Equal(t, base, sum.StartTime)
	assert.Equal(t, base.Add(time.Hour), sum.EndTime)
	assert.Equal(t, time.Hour, sum.Duration)
	assert.Equal(t, 2, sum.CommitCount)
	assert.Equal(t, 2, sum.TotalFilesChanged())
	assert.Equal(t, 15, sum.TotalInsertions)
	assert.Equal(t, 3, sum.TotalDeletions)
	assert.Equal(t, []string{"Alice", "Bob"}, sum.Authors)
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(Session{})
	assert.Zero(t, sum.CommitCount)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "Less than a minute"},
		{time.Minute, "1 minute"},
		{45 * time.Minute, "45 minutes"},
		{time.Hour, "1 hour"},
		{2*time.Hour + 15*time.Minute, "2 hours 15 minutes"},
		{3 * time.Hour, "3 hours"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d))
	}
}
