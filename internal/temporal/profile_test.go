package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devflow/chronicle-go/internal/models"
)

func commitAt(ts time.Time) models.Commit {
	return models.Commit{
		Hash:      "abc1234",
		Message:   "Add feature",
		Author:    "Alice",
		Timestamp: ts,
	}
}

func TestBuildProfile_Empty(t *testing.T) {
	profile := BuildProfile(nil)

	assert.Zero(t, profile.TotalCommits)
	assert.Zero(t, profile.ActiveDays)
	assert.Zero(t, profile.ProductivityRate)
	assert.Empty(t, profile.ByDay)
}

func TestBuildProfile_Histograms(t *testing.T) {
	// Monday March 10 2025.
	monday := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	commits := []models.Commit{
		commitAt(monday),                     // 09:00 morning
		commitAt(monday.Add(1 * time.Hour)),  // 10:00 morning
		commitAt(monday.Add(5 * time.Hour)),  // 14:00 afternoon
		commitAt(monday.Add(10 * time.Hour)), // 19:00 evening
		commitAt(monday.Add(18 * time.Hour)), // Tue 03:00 night
		commitAt(monday.Add(24 * time.Hour)), // Tue 09:00 morning
	}

	profile := BuildProfile(commits)

	assert.Equal(t, 6, profile.TotalCommits)
	assert.Equal(t, 3, profile.ByHour[9])
	assert.Equal(t, 4, profile.ByDay["Monday"])
	assert.Equal(t, 2, profile.ByDay["Tuesday"])
	assert.Equal(t, 6, profile.ByMonth["March 2025"])
	assert.Equal(t, 3, profile.MorningCommits)
	assert.Equal(t, 1, profile.AfternoonCommits)
	assert.Equal(t, 1, profile.EveningCommits)
	assert.Equal(t, 1, profile.NightCommits)
	assert.Equal(t, 2, profile.ActiveDays)
	assert.InDelta(t, 3.0, profile.ProductivityRate, 1e-9)
	assert.Equal(t, 9, profile.PeakHour)
	assert.Equal(t, "Monday", profile.PeakDay)
}

func TestBuildProfile_BucketBoundaries(t *testing.T) {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		hour   int
		bucket string
	}{
		{0, "night"},
		{5, "night"},
		{6, "morning"},
		{11, "morning"},
		{12, "afternoon"},
		{17, "afternoon"},
		{18, "evening"},
		{23, "evening"},
	}

	for _, tt := range tests {
		profile := BuildProfile([]models.Commit{
			commitAt(day.Add(time.Duration(tt.hour) * time.Hour)),
		})

		got := map[string]int{
			"morning":   profile.MorningCommits,
			"afternoon": profile.AfternoonCommits,
			"evening":   profile.EveningCommits,
			"night":     profile.NightCommits,
		}
		assert.Equal(t, 1, got[tt.bucket], "hour %d should land in %s", tt.hour, tt.bucket)
	}
}

func TestBuildProfile_PeakTieBreak(t *testing.T) {
	// One commit at 14:00 and one at 09:00 on the same day: tie on count,
	// the lower hour wins.
	day := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC) // Wednesday
	commits := []models.Commit{
		commitAt(day.Add(14 * time.Hour)),
		commitAt(day.Add(9 * time.Hour)),
	}

	profile := BuildProfile(commits)
	assert.Equal(t, 9, profile.PeakHour)

	// Tie between Wednesday and Friday: Wednesday comes first in the fixed
	// Sunday-first ordering.
	friday := day.Add(48 * time.Hour)
	profile = BuildProfile([]models.Commit{commitAt(day), commitAt(friday)})
	assert.Equal(t, "Wednesday", profile.PeakDay)
}

func TestFilePatterns(t *testing.T) {
	commits := []models.Commit{
		{Hash: "a", Author: "Alice", Timestamp: time.Now(),
			Files: []string{"internal/app/main.go", "internal/app/util.go"}},
		{Hash: "b", Author: "Alice", Timestamp: time.Now(),
			Files: []string{"internal/app/main.go", "docs/guide.md"}},
	}

	patterns := FilePatterns(commits)

	require.NotEmpty(t, patterns.TopFiles)
	assert.Equal(t, "internal/app/main.go", patterns.TopFiles[0].Path)
	assert.Equal(t, 2, patterns.TopFiles[0].Count)
	assert.Equal(t, 3, patterns.TotalUniqueFiles)
	assert.Equal(t, "internal/app", patterns.TopDirectories[0].Path)
	assert.Equal(t, 3, patterns.TopDirectories[0].Count)
}

func TestAuthorStats(t *testing.T) {
	commits := []models.Commit{
		{Hash: "a", Author: "Alice", Timestamp: time.Now(), FilesChanged: 2, Insertions: 10, Deletions: 1},
		{Hash: "b", Author: "Bob", Timestamp: time.Now(), FilesChanged: 1, Insertions: 5, Deletions: 5},
		{Hash: "c", Author: "Alice", Timestamp: time.Now(), FilesChanged: 1, Insertions: 3, Deletions: 0},
	}

	stats := AuthorStats(commits)

	require.Len(t, stats, 2)
	assert.Equal(t, "Alice", stats[0].Author)
	assert.Equal(t, 2, stats[0].Commits)
	assert.Equal(t, 13, stats[0].Insertions)
	assert.Equal(t, "Bob", stats[1].Author)
}
