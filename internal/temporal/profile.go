package temporal

import (
	"sort"
	"strings"

	"github.com/devflow/chronicle-go/internal/models"
)

// weekdays in the fixed order used for deterministic peak-day selection.
var weekdays = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// BuildProfile aggregates a commit set into hour/day/month histograms and
// derived productivity metrics. An empty commit set yields a zero profile.
//
// Peak selection is deterministic: ties are broken by the candidate that
// comes first in ascending natural order (hour 0-23, weekday Sunday first).
func BuildProfile(commits []models.Commit) models.TemporalProfile {
	profile := models.TemporalProfile{
		ByDay:   make(map[string]int),
		ByMonth: make(map[string]int),
	}
	if len(commits) == 0 {
		return profile
	}

	activeDates := make(map[string]struct{})
	for _, c := range commits {
		ts := c.Timestamp
		profile.ByHour[ts.Hour()]++
		profile.ByDay[ts.Weekday().String()]++
		profile.ByMonth[ts.Format("January 2006")]++
		activeDates[ts.Format("2006-01-02")] = struct{}{}

		switch h := ts.Hour(); {
		case h < 6:
			profile.NightCommits++
		case h < 12:
			profile.MorningCommits++
		case h < 18:
			profile.AfternoonCommits++
		default:
			profile.EveningCommits++
		}
	}

	peakHour, peakCount := 0, 0
	for h := 0; h < 24; h++ {
		if profile.ByHour[h] > peakCount {
			peakHour, peakCount = h, profile.ByHour[h]
		}
	}
	profile.PeakHour = peakHour

	peakDay, peakCount := "", 0
	for _, day := range weekdays {
		if profile.ByDay[day] > peakCount {
			peakDay, peakCount = day, profile.ByDay[day]
		}
	}
	profile.PeakDay = peakDay

	profile.ActiveDays = len(activeDates)
	profile.TotalCommits = len(commits)
	if profile.ActiveDays > 0 {
		profile.ProductivityRate = float64(len(commits)) / float64(profile.ActiveDays)
	}

	return profile
}

// FilePatterns reports which files and directories change most often across
// the commit set. Top lists are capped at ten entries, ordered by count
// descending with path as the tie-break.
func FilePatterns(commits []models.Commit) models.FilePatterns {
	fileCounts := make(map[string]int)
	dirCounts := make(map[string]int)

	for _, c := range commits {
		for _, f := range c.Files {
			fileCounts[f]++
			if idx := strings.LastIndex(f, "/"); idx > 0 {
				dirCounts[f[:idx]]++
			}
		}
	}

	return models.FilePatterns{
		TopFiles:         topCounts(fileCounts, 10),
		TopDirectories:   topCounts(dirCounts, 10),
		TotalUniqueFiles: len(fileCounts),
		TotalDirectories: len(dirCounts),
	}
}

func topCounts(counts map[string]int, limit int) []models.FileCount {
	out := make([]models.FileCount, 0, len(counts))
	for path, count := range counts {
		out = append(out, models.FileCount{Path: path, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Path < out[j].Path
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// AuthorStats aggregates per-author contribution totals, ordered by commit
// count descending with author name as the tie-break.
func AuthorStats(commits []models.Commit) []models.AuthorStat {
	byAuthor := make(map[string]*models.AuthorStat)

	for _, c := range commits {
		stat, ok := byAuthor[c.Author]
		if !ok {
			stat = &models.AuthorStat{Author: c.Author}
			byAuthor[c.Author] = stat
		}
		stat.Commits++
		stat.FilesChanged += c.FilesChanged
		stat.Insertions += c.Insertions
		stat.Deletions += c.Deletions
	}

	out := make([]models.AuthorStat, 0, len(byAuthor))
	for _, stat := range byAuthor {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commits != out[j].Commits {
			return out[i].Commits > out[j].Commits
		}
		return out[i].Author < out[j].Author
	})

	return out
}
